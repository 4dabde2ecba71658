package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	up, down int
	version  uint
	dirty    bool
	ok       bool
	err      error
}

func (f *fakeMigrator) Up() error {
	f.up++
	return f.err
}

func (f *fakeMigrator) Down() error {
	f.down++
	return f.err
}

func (f *fakeMigrator) Version() (uint, bool, bool, error) {
	return f.version, f.dirty, f.ok, f.err
}

func execute(t *testing.T, m *fakeMigrator, openErr error, args ...string) (string, bool, error) {
	t.Helper()
	closed := false
	open := func() (schemaMigrator, func() error, error) {
		if openErr != nil {
			return nil, nil, openErr
		}
		return m, func() error { closed = true; return nil }, nil
	}

	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), closed, err
}

func TestUp(t *testing.T) {
	m := &fakeMigrator{}
	out, closed, err := execute(t, m, nil, "up")

	require.NoError(t, err)
	assert.Equal(t, 1, m.up)
	assert.True(t, closed)
	assert.Contains(t, out, "migrations applied")
}

func TestDown(t *testing.T) {
	m := &fakeMigrator{}
	_, _, err := execute(t, m, nil, "down")

	require.NoError(t, err)
	assert.Equal(t, 1, m.down)
	assert.Equal(t, 0, m.up)
}

func TestVersion(t *testing.T) {
	tests := []struct {
		name string
		m    *fakeMigrator
		want string
	}{
		{"empty database", &fakeMigrator{}, "no migrations applied"},
		{"clean", &fakeMigrator{version: 2, ok: true}, "version 2"},
		{"dirty", &fakeMigrator{version: 1, dirty: true, ok: true}, "version 1 (dirty)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, tt.m, nil, "version")
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestErrors(t *testing.T) {
	t.Run("open failure", func(t *testing.T) {
		_, _, err := execute(t, &fakeMigrator{}, errors.New("DB_HOST is not set"), "up")
		assert.EqualError(t, err, "DB_HOST is not set")
	})

	t.Run("migration failure still closes", func(t *testing.T) {
		m := &fakeMigrator{err: errors.New("run migrations: boom")}
		_, closed, err := execute(t, m, nil, "up")
		assert.Error(t, err)
		assert.True(t, closed)
	})

	t.Run("unexpected argument", func(t *testing.T) {
		_, _, err := execute(t, &fakeMigrator{}, nil, "up", "extra")
		assert.Error(t, err)
	})
}

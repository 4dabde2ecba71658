package main

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"agrishop-be/internal/config"
	"agrishop-be/internal/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AppPort:       "8080",
		AppEnv:        "test",
		JWTSecret:     "test-secret",
		AdminUsername: "admin",
		CORSOrigin:    "*",
	}
}

func TestNewServer(t *testing.T) {
	db, err := sql.Open("server_test_nop", "")
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router, err := newServer(ctx, testConfig(), db, metrics.New(), optional{})
	require.NoError(t, err)
	require.NotNil(t, router)

	t.Run("Health Check", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "OK")
	})

	t.Run("Metrics", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("Admin routes are guarded", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("GraphQL is mounted", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/graphql", nil))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestNewServerRequiresJWTSecret(t *testing.T) {
	db, err := sql.Open("server_test_nop", "")
	require.NoError(t, err)
	defer db.Close()

	cfg := testConfig()
	cfg.JWTSecret = ""

	_, err = newServer(context.Background(), cfg, db, metrics.New(), optional{})
	assert.Error(t, err)
}

func TestConnectOptionalSkipsUnconfigured(t *testing.T) {
	deps := connectOptional(context.Background(), testConfig(), metrics.New())

	assert.Nil(t, deps.cache)
	assert.Nil(t, deps.publisher)
	assert.Empty(t, deps.closers)
	assert.NotPanics(t, deps.close)
}

// nopDriver hands out connections that are never queried.
type nopDriver struct{}

type nopConn struct{}

func (nopDriver) Open(string) (driver.Conn, error) { return nopConn{}, nil }

func (nopConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }

func (nopConn) Close() error { return nil }

func (nopConn) Begin() (driver.Tx, error) { return nil, errors.New("not supported") }

func init() {
	sql.Register("server_test_nop", nopDriver{})
}

func TestRun(t *testing.T) {
	origInitDB := initDBFunc
	defer func() { initDBFunc = origInitDB }()
	initDBFunc = func(cfg *config.Config) *sql.DB {
		db, _ := sql.Open("server_test_nop", "")
		return db
	}

	origStartServer := startServerFunc
	defer func() { startServerFunc = origStartServer }()
	var gotAddr string
	startServerFunc = func(ctx context.Context, addr string, handler http.Handler) error {
		gotAddr = addr
		return nil
	}

	t.Setenv("APP_PORT", "8080")
	t.Setenv("APP_ENV", "test")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "5432")
	t.Setenv("DB_USER", "user")
	t.Setenv("DB_PASSWORD", "pass")
	t.Setenv("DB_NAME", "db")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("RABBITMQ_URL", "")

	assert.NoError(t, run())
	assert.Equal(t, ":8080", gotAddr)
}

func TestStartServerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := startServer(ctx, "127.0.0.1:0", http.NotFoundHandler())
	assert.NoError(t, err)
}

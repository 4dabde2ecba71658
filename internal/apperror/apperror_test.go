package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvalid(t *testing.T) {
	err := Invalid("quantity for line %d must be at least 1", 2)

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "quantity for line 2 must be at least 1", err.Error())
}

func TestNotFound(t *testing.T) {
	err := NotFound("product", "ghost")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, `product "ghost" not found`, err.Error())
}

func TestUnauthorized(t *testing.T) {
	err := Unauthorized("invalid or expired token")

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
	assert.Equal(t, "invalid or expired token", PublicMessage(err))
}

func TestInfra(t *testing.T) {
	cause := errors.New("connection refused")

	t.Run("Wraps cause", func(t *testing.T) {
		err := Infra("insert order", cause)
		assert.ErrorIs(t, err, ErrInfrastructure)
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "insert order: connection refused", err.Error())
	})

	t.Run("Nil stays nil", func(t *testing.T) {
		assert.NoError(t, Infra("noop", nil))
	})

	t.Run("Not double wrapped", func(t *testing.T) {
		first := Infra("commit", cause)
		assert.Same(t, first, Infra("place order", first))
	})
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"invalid", Invalid("bad"), http.StatusBadRequest},
		{"unauthorized", fmt.Errorf("%w: bad token", ErrUnauthorized), http.StatusUnauthorized},
		{"not found", NotFound("order", "1"), http.StatusNotFound},
		{"stock", fmt.Errorf("%w: p1", ErrInsufficientStock), http.StatusConflict},
		{"transition", fmt.Errorf("%w: completed -> pending", ErrInvalidTransition), http.StatusConflict},
		{"infra", Infra("query", errors.New("timeout")), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "name is required", PublicMessage(Invalid("name is required")))
	assert.Equal(t, RetryMessage, PublicMessage(Infra("query", errors.New("pq: password authentication failed"))))
	assert.Equal(t, RetryMessage, PublicMessage(errors.New("boom")))
}

// Package apperror holds the error kinds shared by every layer. Domain
// packages wrap these sentinels with context; the HTTP edge maps them to
// status codes with HTTPStatus and PublicMessage.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInfrastructure    = errors.New("infrastructure error")
)

// RetryMessage is shown instead of infrastructure error details.
const RetryMessage = "temporarily unavailable, please try again"

// Invalid builds an ErrInvalidInput carrying a user-facing message.
func Invalid(format string, args ...any) error {
	return &wrapped{kind: ErrInvalidInput, msg: fmt.Sprintf(format, args...)}
}

// NotFound builds an ErrNotFound for the named entity.
func NotFound(entity, id string) error {
	return &wrapped{kind: ErrNotFound, msg: fmt.Sprintf("%s %q not found", entity, id)}
}

// Unauthorized builds an ErrUnauthorized with a user-facing message.
func Unauthorized(msg string) error {
	return &wrapped{kind: ErrUnauthorized, msg: msg}
}

// Infra marks err as an infrastructure failure. The cause stays reachable
// through errors.Unwrap for logging but is never shown to clients.
func Infra(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrInfrastructure) {
		return err
	}
	return &infraError{op: op, cause: err}
}

type wrapped struct {
	kind error
	msg  string
}

func (e *wrapped) Error() string { return e.msg }
func (e *wrapped) Unwrap() error { return e.kind }

type infraError struct {
	op    string
	cause error
}

func (e *infraError) Error() string { return e.op + ": " + e.cause.Error() }

func (e *infraError) Unwrap() []error { return []error{ErrInfrastructure, e.cause} }

// HTTPStatus maps an error to the response status code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, ErrInfrastructure):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text safe to return in an error body.
func PublicMessage(err error) string {
	switch HTTPStatus(err) {
	case http.StatusServiceUnavailable, http.StatusInternalServerError:
		return RetryMessage
	default:
		return err.Error()
	}
}

package order

import (
	"fmt"

	"agrishop-be/internal/apperror"
)

func notFound(id string) error {
	return apperror.NotFound("order", id)
}

// TransitionError reports a status change the state machine forbids.
type TransitionError struct {
	OrderID string
	From    Status
	To      Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %q cannot move from %s to %s", e.OrderID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error { return apperror.ErrInvalidTransition }

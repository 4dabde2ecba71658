package product

import (
	"strings"

	"agrishop-be/internal/apperror"
)

// Validate checks the fields an admin may set. Messages are shown to the
// admin verbatim.
func (in Input) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return apperror.Invalid("name is required")
	}
	if in.Price.IsNegative() {
		return apperror.Invalid("price cannot be negative")
	}
	if !in.Price.Equal(in.Price.Round(2)) {
		return apperror.Invalid("price cannot have more than 2 decimal places")
	}
	if in.Stock < 0 {
		return apperror.Invalid("stock cannot be negative")
	}
	return nil
}

func notFound(id string) error {
	return apperror.NotFound("product", id)
}

package checkout

import (
	"fmt"
	"math"
	"net/mail"
	"sort"
	"strings"

	"agrishop-be/internal/apperror"
	"agrishop-be/internal/order"
)

// Line is one cart entry. There is no price field: prices always come from
// the catalog.
type Line struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// Request is the checkout payload.
type Request struct {
	order.Customer
	Items []Line `json:"items"`
}

// validate trims the customer fields in place and checks the cart.
func (r *Request) validate() error {
	r.Customer.Name = strings.TrimSpace(r.Customer.Name)
	r.Customer.Email = strings.TrimSpace(r.Customer.Email)
	r.Customer.Phone = strings.TrimSpace(r.Customer.Phone)

	switch {
	case r.Customer.Name == "":
		return apperror.Invalid("customer name is required")
	case r.Customer.Email == "":
		return apperror.Invalid("customer email is required")
	case r.Customer.Phone == "":
		return apperror.Invalid("customer phone is required")
	}
	if addr, err := mail.ParseAddress(r.Customer.Email); err != nil || addr.Address != r.Customer.Email {
		return apperror.Invalid("customer email %q is not a valid address", r.Customer.Email)
	}

	if len(r.Items) == 0 {
		return apperror.Invalid("cart is empty")
	}
	for i := range r.Items {
		r.Items[i].ProductID = strings.TrimSpace(r.Items[i].ProductID)
		if r.Items[i].ProductID == "" {
			return apperror.Invalid("item %d: product_id is required", i+1)
		}
		if r.Items[i].Quantity < 1 {
			return apperror.Invalid("item %d: quantity must be at least 1", i+1)
		}
	}
	return nil
}

// demand sums the requested quantity per product. The same product may
// appear on several cart lines.
type demand map[string]int

func aggregate(lines []Line) (demand, error) {
	d := make(demand, len(lines))
	for _, l := range lines {
		if d[l.ProductID] > math.MaxInt32-l.Quantity {
			return nil, apperror.Invalid("quantity for product %q is too large", l.ProductID)
		}
		d[l.ProductID] += l.Quantity
	}
	return d, nil
}

// sortedIDs fixes the order in which rows are locked and decremented.
func (d demand) sortedIDs() []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StockError is returned when a product cannot cover the requested
// quantity. It matches apperror.ErrInsufficientStock.
type StockError struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

func (e *StockError) Error() string {
	if e.Available <= 0 {
		return fmt.Sprintf("%q is out of stock", e.ProductName)
	}
	return fmt.Sprintf("only %d left in stock for %q", e.Available, e.ProductName)
}

func (e *StockError) Unwrap() error { return apperror.ErrInsufficientStock }

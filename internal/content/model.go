// Package content manages the editable marketing pages. Each kind has its
// own Go type and fixed table; there is no table-name dispatch.
package content

import (
	"strings"
	"time"

	"agrishop-be/internal/apperror"
)

// Meta is shared by every content kind.
type Meta struct {
	ID         string    `json:"id"`
	OrderIndex int       `json:"order_index"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (m *Meta) meta() *Meta { return m }

// Entry is implemented by pointers to the content kinds.
type Entry interface {
	meta() *Meta
	// fields returns pointers to the editable columns, in Schema.Columns
	// order. The same pointers serve as scan targets and insert args.
	fields() []any
	Validate() error
}

type AboutUs struct {
	Meta
	Section string `json:"section"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (a *AboutUs) fields() []any { return []any{&a.Section, &a.Title, &a.Content} }

func (a *AboutUs) Validate() error {
	return validate(a.OrderIndex,
		required{"section", &a.Section},
		required{"title", &a.Title},
		required{"content", &a.Content},
	)
}

// ConsultingService is an offered consulting service.
type ConsultingService struct {
	Meta
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (s *ConsultingService) fields() []any { return []any{&s.Title, &s.Description, &s.Category} }

func (s *ConsultingService) Validate() error {
	s.Category = strings.TrimSpace(s.Category)
	return validate(s.OrderIndex,
		required{"title", &s.Title},
		required{"description", &s.Description},
	)
}

type Project struct {
	Meta
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (p *Project) fields() []any { return []any{&p.Name, &p.Description} }

func (p *Project) Validate() error {
	return validate(p.OrderIndex,
		required{"name", &p.Name},
		required{"description", &p.Description},
	)
}

type required struct {
	name  string
	value *string
}

// validate trims the required fields in place.
func validate(orderIndex int, fields ...required) error {
	for _, f := range fields {
		*f.value = strings.TrimSpace(*f.value)
		if *f.value == "" {
			return apperror.Invalid("%s is required", f.name)
		}
	}
	if orderIndex < 0 {
		return apperror.Invalid("order_index cannot be negative")
	}
	return nil
}

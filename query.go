package taskq

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Pagination defaults and bounds for list queries.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var validate = validator.New()

// Filter is the closed set of predicates a list query may apply on top of the
// owner scope. Empty fields match everything.
type Filter struct {
	Status   Status   `json:"status,omitempty" validate:"omitempty,oneof=pending in_progress completed"`
	Priority Priority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
}

// Matches reports whether t satisfies the filter.
func (f Filter) Matches(t Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	return true
}

// Query is a fully specified list request.
type Query struct {
	OwnerID  string `validate:"required"`
	Filter   Filter
	Page     int `validate:"gte=1"`
	PageSize int `validate:"gte=1,lte=100"`
}

// NewQuery builds a Query, substituting DefaultPage and DefaultPageSize for
// zero values, and validates it.
func NewQuery(ownerID string, f Filter, page, pageSize int) (Query, error) {
	if page == 0 {
		page = DefaultPage
	}
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	q := Query{OwnerID: ownerID, Filter: f, Page: page, PageSize: pageSize}
	return q, q.Validate()
}

// Validate checks the query against its field constraints. Failures wrap ErrInvalidQuery.
func (q Query) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	return nil
}

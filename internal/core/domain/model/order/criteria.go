package order

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/pkg/errs"
)

// SearchCriteria filters orders. Zero values disable their filter; active
// filters are combined with AND. Number is a case-insensitive substring match,
// From and To bound the order date inclusively.
type SearchCriteria struct {
	Number     string
	CustomerID int64
	Status     Status
	Priority   Priority
	From       kernel.Date
	To         kernel.Date
}

// Validate rejects inverted date ranges and out-of-range enum filters.
func (c SearchCriteria) Validate() error {
	if c.CustomerID < 0 {
		return errs.NewValueIsInvalidErrorWithCause("customer id is invalid", fmt.Errorf("%d is negative", c.CustomerID))
	}
	if c.Status != Unknown {
		if err := c.Status.Validate(); err != nil {
			return err
		}
	}
	if c.Priority != UnknownPriority {
		if err := c.Priority.Validate(); err != nil {
			return err
		}
	}
	if !c.From.IsZero() && !c.To.IsZero() && c.To.Before(c.From) {
		return errs.NewValueIsInvalidErrorWithCause("date range is invalid",
			fmt.Errorf("%s is before %s", c.To, c.From))
	}
	return nil
}

// Matches applies the criteria in memory, with the same semantics as the
// repository query.
func (c SearchCriteria) Matches(o *Order) bool {
	number := strings.TrimSpace(c.Number)
	if number != "" && !strings.Contains(strings.ToUpper(o.Number()), strings.ToUpper(number)) {
		return false
	}
	if c.CustomerID > 0 && o.CustomerID() != c.CustomerID {
		return false
	}
	if c.Status != Unknown && o.Status() != c.Status {
		return false
	}
	if c.Priority != UnknownPriority && o.Priority() != c.Priority {
		return false
	}
	if !c.From.IsZero() && o.OrderedAt().Before(c.From) {
		return false
	}
	if !c.To.IsZero() && o.OrderedAt().After(c.To) {
		return false
	}
	return true
}

// SortField names a sortable order attribute.
type SortField string

const (
	SortByNumber    SortField = "number"
	SortByOrderedAt SortField = "ordered_at"
	SortByStatus    SortField = "status"
	SortByPriority  SortField = "priority"
	SortByPrice     SortField = "price"
	SortByCustomer  SortField = "customer"
)

// ParseSortField accepts a field name case-insensitively and falls back to SortByOrderedAt.
func ParseSortField(s string) SortField {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortByNumber, SortByStatus, SortByPriority, SortByPrice, SortByCustomer:
		return f
	default:
		return SortByOrderedAt
	}
}

// Sort returns a sorted copy of list; ties keep their input order. Status and
// priority sort by workflow and urgency rank.
func Sort(list []*Order, field SortField, ascending bool) []*Order {
	sorted := slices.Clone(list)
	compare := comparator(field)
	slices.SortStableFunc(sorted, func(a, b *Order) int {
		if ascending {
			return compare(a, b)
		}
		return compare(b, a)
	})
	return sorted
}

func comparator(field SortField) func(a, b *Order) int {
	switch field {
	case SortByNumber:
		return func(a, b *Order) int {
			return cmp.Compare(strings.ToLower(a.Number()), strings.ToLower(b.Number()))
		}
	case SortByStatus:
		return func(a, b *Order) int { return cmp.Compare(a.Status(), b.Status()) }
	case SortByPriority:
		return func(a, b *Order) int { return cmp.Compare(a.Priority(), b.Priority()) }
	case SortByPrice:
		return func(a, b *Order) int { return a.PriceTotal().Cmp(b.PriceTotal()) }
	case SortByCustomer:
		return func(a, b *Order) int { return cmp.Compare(a.CustomerID(), b.CustomerID()) }
	default:
		return func(a, b *Order) int { return a.OrderedAt().Compare(b.OrderedAt()) }
	}
}

package customer

import (
	"cmp"
	"slices"
	"strings"
)

// SearchCriteria filters customers. Empty strings and the Unknown status
// disable their filter; active filters are combined with AND. Text filters
// are case-insensitive substring matches.
type SearchCriteria struct {
	Name    string
	Surname string
	City    string
	Status  Status
}

// IsEmpty reports whether no filter is active.
func (c SearchCriteria) IsEmpty() bool {
	return strings.TrimSpace(c.Name) == "" &&
		strings.TrimSpace(c.Surname) == "" &&
		strings.TrimSpace(c.City) == "" &&
		c.Status == Unknown
}

// Matches applies the criteria in memory, with the same semantics as the
// repository query.
func (c SearchCriteria) Matches(cu *Customer) bool {
	return containsFold(cu.Name(), c.Name) &&
		containsFold(cu.Surname(), c.Surname) &&
		containsFold(cu.City(), c.City) &&
		(c.Status == Unknown || cu.Status() == c.Status)
}

func containsFold(value, filter string) bool {
	filter = strings.TrimSpace(filter)
	return filter == "" || strings.Contains(strings.ToUpper(value), strings.ToUpper(filter))
}

// SortField names a sortable customer attribute.
type SortField string

const (
	SortByName      SortField = "name"
	SortBySurname   SortField = "surname"
	SortByCity      SortField = "city"
	SortByCreatedAt SortField = "created_at"
	SortByEmail     SortField = "email"
)

// ParseSortField accepts a field name case-insensitively and falls back to SortByName.
func ParseSortField(s string) SortField {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortBySurname, SortByCity, SortByCreatedAt, SortByEmail:
		return f
	default:
		return SortByName
	}
}

// Sort returns a sorted copy of list. Text fields compare case-insensitively;
// ties keep their input order.
func Sort(list []*Customer, field SortField, ascending bool) []*Customer {
	sorted := slices.Clone(list)
	compare := comparator(field)
	slices.SortStableFunc(sorted, func(a, b *Customer) int {
		if ascending {
			return compare(a, b)
		}
		return compare(b, a)
	})
	return sorted
}

func comparator(field SortField) func(a, b *Customer) int {
	fold := func(get func(*Customer) string) func(a, b *Customer) int {
		return func(a, b *Customer) int {
			return cmp.Compare(strings.ToLower(get(a)), strings.ToLower(get(b)))
		}
	}

	switch field {
	case SortBySurname:
		return fold((*Customer).Surname)
	case SortByCity:
		return fold((*Customer).City)
	case SortByCreatedAt:
		return func(a, b *Customer) int { return a.CreatedAt().Compare(b.CreatedAt()) }
	case SortByEmail:
		return fold((*Customer).Email)
	default:
		return fold((*Customer).Name)
	}
}

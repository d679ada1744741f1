package customer_test

import (
	"testing"
	"time"

	"logistics/internal/core/domain/model/customer"
	"logistics/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restore(t *testing.T, id int64, name, surname, city, email string, day int, status customer.Status) *customer.Customer {
	t.Helper()
	c, err := customer.RestoreCustomer(id, customer.Contact{
		Name:       name,
		Surname:    surname,
		Email:      email,
		Phone:      "0123456789",
		Address:    "1 Place Bellecour",
		City:       city,
		PostalCode: "69001",
	}, kernel.NewDate(2025, time.January, day), status)
	require.NoError(t, err)
	return c
}

func ids(list []*customer.Customer) []int64 {
	out := make([]int64, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID())
	}
	return out
}

func TestSearchCriteria(t *testing.T) {
	dupont := restore(t, 1, "Dupont", "Jean", "Paris", "jean@x.com", 1, customer.Active)
	moreau := restore(t, 2, "Moreau", "Paul", "Nice", "paul@x.com", 2, customer.Inactive)

	tests := []struct {
		name     string
		criteria customer.SearchCriteria
		dupont   bool
		moreau   bool
	}{
		{name: "empty matches all", criteria: customer.SearchCriteria{}, dupont: true, moreau: true},
		{name: "name substring ignores case", criteria: customer.SearchCriteria{Name: "upo"}, dupont: true},
		{name: "city", criteria: customer.SearchCriteria{City: "NICE"}, moreau: true},
		{name: "status", criteria: customer.SearchCriteria{Status: customer.Inactive}, moreau: true},
		{name: "filters are combined", criteria: customer.SearchCriteria{Name: "dupont", City: "Nice"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.dupont, tt.criteria.Matches(dupont))
			assert.Equal(t, tt.moreau, tt.criteria.Matches(moreau))
		})
	}

	assert.True(t, customer.SearchCriteria{Name: "  "}.IsEmpty())
	assert.False(t, customer.SearchCriteria{Status: customer.Active}.IsEmpty())
}

func TestParseSortField(t *testing.T) {
	assert.Equal(t, customer.SortByCity, customer.ParseSortField(" City "))
	assert.Equal(t, customer.SortByCreatedAt, customer.ParseSortField("created_at"))
	assert.Equal(t, customer.SortByName, customer.ParseSortField("unknown"))
}

func TestSort(t *testing.T) {
	a := restore(t, 1, "bernard", "Pierre", "Marseille", "b@x.com", 3, customer.Active)
	b := restore(t, 2, "Dubois", "Sophie", "Toulouse", "a@x.com", 1, customer.Active)
	c := restore(t, 3, "Martin", "Marie", "lyon", "c@x.com", 2, customer.Active)
	list := []*customer.Customer{c, a, b}

	t.Run("by name ascending ignores case", func(t *testing.T) {
		assert.Equal(t, []int64{1, 2, 3}, ids(customer.Sort(list, customer.SortByName, true)))
	})

	t.Run("by city descending", func(t *testing.T) {
		assert.Equal(t, []int64{2, 1, 3}, ids(customer.Sort(list, customer.SortByCity, false)))
	})

	t.Run("by creation date", func(t *testing.T) {
		assert.Equal(t, []int64{2, 3, 1}, ids(customer.Sort(list, customer.SortByCreatedAt, true)))
	})

	t.Run("by email", func(t *testing.T) {
		assert.Equal(t, []int64{2, 1, 3}, ids(customer.Sort(list, customer.SortByEmail, true)))
	})

	t.Run("input is not reordered", func(t *testing.T) {
		customer.Sort(list, customer.SortBySurname, true)
		assert.Equal(t, []int64{3, 1, 2}, ids(list))
	})
}

func TestStatus(t *testing.T) {
	for _, s := range customer.Statuses() {
		require.NoError(t, s.Validate())
		parsed, err := customer.ParseStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	require.Error(t, customer.Unknown.Validate())
	assert.Equal(t, "UNKNOWN", customer.Status(9).String())
	_, err := customer.ParseStatus("ARCHIVED")
	require.Error(t, err)
}

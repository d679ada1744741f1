package controllers_test

import (
	"testing"

	"logistics/internal/core/application/controllers"
	"logistics/internal/core/application/events"
	"logistics/internal/core/domain/model/customer"
	"logistics/internal/core/domain/model/order"
	"logistics/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCustomerController(t *testing.T) {
	_, err := controllers.NewCustomerController(nil, &MockPublisher{}, nil, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestCustomerController_CreateCustomer(t *testing.T) {
	t.Run("should store a new customer with a lowercased email", func(t *testing.T) {
		f := newFixture(t)

		created, err := f.customers.CreateCustomer(t.Context(), dupont())

		require.NoError(t, err)
		assert.True(t, created.IsSaved())
		assert.Equal(t, "jean.dupont@x.com", created.Email())
		assert.Equal(t, customer.Active, created.Status())
		assert.Equal(t, f.today(), created.CreatedAt())

		stored, err := f.customers.GetCustomer(t.Context(), created.ID())
		require.NoError(t, err)
		assert.Equal(t, "123 Rue X", stored.Address())
		assert.Equal(t, []events.Kind{events.CustomerCreated}, f.events.kinds())
		assert.Equal(t, created.ID(), f.events.last().EntityID)
	})

	t.Run("should reject an email already in use in any case", func(t *testing.T) {
		f := newFixture(t)
		f.createCustomer(t, dupont())

		second := martin()
		second.Email = "Jean.Dupont@X.com"
		_, err := f.customers.CreateCustomer(t.Context(), second)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrConstraintViolation)
		assert.Contains(t, err.Error(), "already used")

		total, err := f.customers.TotalCustomers(t.Context())
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, events.Error, f.events.last().Kind)
		assert.Contains(t, f.events.last().Message, "CreateCustomer")
	})

	t.Run("should list every violation of invalid input", func(t *testing.T) {
		f := newFixture(t)
		contact := dupont()
		contact.Email = "not-an-email"
		contact.PostalCode = "1"

		_, err := f.customers.CreateCustomer(t.Context(), contact)

		require.Error(t, err)
		var validationErr *errs.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Len(t, validationErr.Violations, 2)
		assert.Contains(t, validationErr.Violations[0], "field 'email'")
		assert.Contains(t, validationErr.Violations[1], "field 'postal code'")
	})
}

func TestCustomerController_UpdateCustomer(t *testing.T) {
	f := newFixture(t)
	jean := f.createCustomer(t, dupont())
	claire := f.createCustomer(t, martin())

	t.Run("should store new contact details", func(t *testing.T) {
		require.NoError(t, jean.SetCity("Marseille"))

		require.NoError(t, f.customers.UpdateCustomer(t.Context(), jean))

		stored, err := f.customers.GetCustomer(t.Context(), jean.ID())
		require.NoError(t, err)
		assert.Equal(t, "Marseille", stored.City())
		assert.Equal(t, events.CustomerUpdated, f.events.last().Kind)
	})

	t.Run("should keep its own email", func(t *testing.T) {
		require.NoError(t, f.customers.UpdateCustomer(t.Context(), jean))
	})

	t.Run("should reject the email of another customer", func(t *testing.T) {
		require.NoError(t, claire.SetEmail("JEAN.DUPONT@x.com"))

		err := f.customers.UpdateCustomer(t.Context(), claire)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrConstraintViolation)
	})

	t.Run("should run the field rules before storing", func(t *testing.T) {
		edited, err := f.customers.GetCustomer(t.Context(), claire.ID())
		require.NoError(t, err)
		require.NoError(t, edited.SetName("X"))
		require.NoError(t, edited.SetCity("12345"))
		require.NoError(t, edited.SetPostalCode("!!!!"))

		err = f.customers.UpdateCustomer(t.Context(), edited)

		var validationErr *errs.ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Len(t, validationErr.Violations, 3)
		assert.Contains(t, validationErr.Violations[0], "field 'name'")
		assert.Contains(t, validationErr.Violations[1], "field 'city'")
		assert.Contains(t, validationErr.Violations[2], "field 'postal code'")

		stored, err := f.customers.GetCustomer(t.Context(), claire.ID())
		require.NoError(t, err)
		assert.Equal(t, martin().Name, stored.Name())
		assert.Equal(t, martin().PostalCode, stored.PostalCode())
	})

	t.Run("should reject a customer that was never saved", func(t *testing.T) {
		unsaved, err := customer.NewCustomer(dupont(), f.today())
		require.NoError(t, err)

		err = f.customers.UpdateCustomer(t.Context(), unsaved)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestCustomerController_DeleteCustomer(t *testing.T) {
	t.Run("should refuse while an order is in progress", func(t *testing.T) {
		f := newFixture(t)
		jean := f.createCustomer(t, dupont())
		f.createOrder(t, jean.ID(), details("42.00", order.Normal))

		canDelete, err := f.customers.CanDeleteCustomer(t.Context(), jean.ID())
		require.NoError(t, err)
		assert.False(t, canDelete)

		err = f.customers.DeleteCustomer(t.Context(), jean.ID())

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrOperationNotAllowed)
		_, err = f.customers.GetCustomer(t.Context(), jean.ID())
		assert.NoError(t, err)
	})

	t.Run("should delete a customer with closed orders and their orders", func(t *testing.T) {
		f := newFixture(t)
		jean := f.createCustomer(t, dupont())
		placed := f.createOrder(t, jean.ID(), details("42.00", order.Normal))
		_, err := f.orders.CancelOrder(t.Context(), placed.ID(), "customer left")
		require.NoError(t, err)

		all, err := f.orders.GetAllOrders(t.Context())
		require.NoError(t, err)
		require.Len(t, all, 1)

		require.NoError(t, f.customers.DeleteCustomer(t.Context(), jean.ID()))

		_, err = f.customers.GetCustomer(t.Context(), jean.ID())
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
		all, err = f.orders.GetAllOrders(t.Context())
		require.NoError(t, err)
		assert.Empty(t, all, "cached orders of the deleted customer must be dropped")
		assert.Equal(t, events.CustomerDeleted, f.events.last().Kind)
	})

	t.Run("should report an unknown customer", func(t *testing.T) {
		f := newFixture(t)

		err := f.customers.DeleteCustomer(t.Context(), 404)

		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestCustomerController_GetAllCustomers(t *testing.T) {
	f := newFixture(t)
	f.createCustomer(t, dupont())

	first, err := f.customers.GetAllCustomers(t.Context())
	require.NoError(t, err)
	require.Len(t, first, 1)

	require.NoError(t, first[0].SetCity("Nantes"))
	second, err := f.customers.GetAllCustomers(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "Paris", second[0].City(), "callers must receive copies")

	f.createCustomer(t, martin())
	third, err := f.customers.GetAllCustomers(t.Context())
	require.NoError(t, err)
	assert.Len(t, third, 2, "writes must invalidate the cache")
}

func TestCustomerController_Search(t *testing.T) {
	f := newFixture(t)
	f.createCustomer(t, dupont())
	f.createCustomer(t, martin())

	found, err := f.customers.SearchCustomers(t.Context(), customer.SearchCriteria{City: "lyo"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Martin", found[0].Name())

	sorted, err := f.customers.SearchAndSortCustomers(t.Context(), customer.SearchCriteria{}, customer.SortByCity, false)
	require.NoError(t, err)
	require.Len(t, sorted, 2)
	assert.Equal(t, "Paris", sorted[0].City())
	assert.Equal(t, "Lyon", f.customers.SortCustomers(sorted, customer.SortByCity, true)[0].City())

	_, err = f.customers.SearchCustomers(t.Context(), customer.SearchCriteria{Status: customer.Status(9)})
	assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestCustomerController_Status(t *testing.T) {
	f := newFixture(t)
	jean := f.createCustomer(t, dupont())
	f.events.reset()

	require.NoError(t, f.customers.SuspendCustomer(t.Context(), jean.ID(), "unpaid invoices"))
	assert.Equal(t, events.CustomerUpdated, f.events.last().Kind)
	assert.Equal(t, "SUSPENDED", f.events.last().Status)
	assert.Equal(t, "unpaid invoices", f.events.last().Message)

	require.NoError(t, f.customers.SetCustomerActive(t.Context(), jean.ID(), false))
	stored, err := f.customers.GetCustomer(t.Context(), jean.ID())
	require.NoError(t, err)
	assert.Equal(t, customer.Inactive, stored.Status())

	require.NoError(t, f.customers.SetCustomerActive(t.Context(), jean.ID(), false))
	assert.Len(t, f.events.kinds(), 2, "unchanged status must not be published")
}

func TestCustomerController_Statistics(t *testing.T) {
	f := newFixture(t)
	jean := f.createCustomer(t, dupont())
	f.advance(10)
	claire := f.createCustomer(t, martin())
	require.NoError(t, f.customers.SetCustomerActive(t.Context(), claire.ID(), false))
	f.createOrder(t, jean.ID(), details("10.00", order.Low))
	f.createOrder(t, jean.ID(), details("20.00", order.Low))

	total, err := f.customers.TotalCustomers(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	byStatus, err := f.customers.CustomersByStatus(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 1, byStatus[customer.Active])
	assert.EqualValues(t, 1, byStatus[customer.Inactive])
	assert.EqualValues(t, 0, byStatus[customer.Suspended])

	byCity, err := f.customers.CustomersByCity(t.Context())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Paris": 1, "Lyon": 1}, byCity)

	recent, err := f.customers.RecentCustomers(t.Context(), 7)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, claire.ID(), recent[0].ID())

	_, err = f.customers.RecentCustomers(t.Context(), -1)
	assert.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	count, err := f.customers.CustomerOrdersCount(t.Context(), jean.ID())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	inUse, err := f.customers.IsEmailInUse(t.Context(), "JEAN.dupont@x.com", customer.UnsavedID)
	require.NoError(t, err)
	assert.True(t, inUse)
	inUse, err = f.customers.IsEmailInUse(t.Context(), "jean.dupont@x.com", jean.ID())
	require.NoError(t, err)
	assert.False(t, inUse)
}

package orderrepo_test

import (
	"testing"
	"time"

	"logistics/internal/adapters/out/storage/storagetest"
	"logistics/internal/core/domain/model/customer"
	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/order"
	"logistics/internal/core/ports"
	"logistics/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var today = kernel.NewDate(2025, time.June, 2)

type fixture struct {
	orders    ports.OrderRepository
	customers ports.CustomerRepository
	alice     int64
	bob       int64
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	uow, err := storagetest.NewSQLite(t).UnitOfWork()
	require.NoError(t, err)

	f := fixture{orders: uow.OrderRepository(), customers: uow.CustomerRepository()}
	for i, email := range []string{"alice@x.com", "bob@x.com"} {
		c, err := customer.NewCustomer(customer.Contact{
			Name: "Client", Surname: "Test", Email: email, Phone: "0123456789",
			Address: "123 Rue X", City: "Paris", PostalCode: "75001",
		}, today)
		require.NoError(t, err)
		require.NoError(t, f.customers.Save(t.Context(), c))
		if i == 0 {
			f.alice = c.ID()
		} else {
			f.bob = c.ID()
		}
	}
	return f
}

func (f fixture) save(t *testing.T, customerID int64, orderedDaysAgo, requestIn int, p order.Priority, price string) *order.Order {
	t.Helper()
	orderedAt := today.AddDays(-orderedDaysAgo)
	o, err := order.NewOrder(customerID, orderedAt, order.Details{
		RequestedDeliveryAt: orderedAt.AddDays(requestIn),
		DeliveryAddress:     "123 Rue de la Paix",
		DeliveryCity:        "Paris",
		DeliveryPostalCode:  "75001",
		Priority:            p,
		WeightTotal:         2.5,
		VolumeTotal:         0.1,
		PriceTotal:          decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	require.NoError(t, f.orders.Save(t.Context(), o))
	return o
}

func TestRepository_SaveAndGet(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	t.Run("should generate the number on insert", func(t *testing.T) {
		first := f.save(t, f.alice, 0, 3, order.Normal, "89.99")
		second := f.save(t, f.alice, 0, 3, order.Normal, "10")

		assert.True(t, first.IsSaved())
		assert.Equal(t, "CMD000001", first.Number())
		assert.Equal(t, "CMD000002", second.Number())

		loaded, err := f.orders.Get(ctx, first.ID())
		require.NoError(t, err)
		assert.Equal(t, first.RequestedDeliveryAt(), loaded.RequestedDeliveryAt())
		assert.Equal(t, first.DeliveryAddress(), loaded.DeliveryAddress())
		assert.Equal(t, first.Priority(), loaded.Priority())
		assert.Equal(t, 2.5, loaded.WeightTotal())
		assert.True(t, first.PriceTotal().Equal(loaded.PriceTotal()), "price %s", loaded.PriceTotal())
		assert.Equal(t, first.OrderedAt(), loaded.OrderedAt())
		assert.Equal(t, order.Pending, loaded.Status())

		byNumber, err := f.orders.FindByNumber(ctx, "CMD000002")
		require.NoError(t, err)
		assert.Equal(t, second.ID(), byNumber.ID())
	})

	t.Run("should update status and delivery date but not the number", func(t *testing.T) {
		o := f.save(t, f.bob, 1, 1, order.High, "45.50")
		number := o.Number()

		require.NoError(t, o.ChangeStatus(order.Delivered, today))
		require.NoError(t, f.orders.Save(ctx, o))

		loaded, err := f.orders.Get(ctx, o.ID())
		require.NoError(t, err)
		assert.Equal(t, number, loaded.Number())
		assert.Equal(t, order.Delivered, loaded.Status())
		assert.Equal(t, today, loaded.DeliveredAt())
	})

	t.Run("should reject an unknown customer", func(t *testing.T) {
		o, err := order.NewOrder(424242, today, order.Details{
			DeliveryAddress: "1 Rue", DeliveryCity: "Paris", DeliveryPostalCode: "75001",
		})
		require.NoError(t, err)

		err = f.orders.Save(ctx, o)

		assert.ErrorIs(t, err, errs.ErrConstraintViolation)
		assert.False(t, o.IsSaved())
	})

	t.Run("should report a missing order", func(t *testing.T) {
		_, err := f.orders.Get(ctx, 9999)
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)

		_, err = f.orders.FindByNumber(ctx, "CMD999999")
		assert.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestRepository_FallbackNumbersSkipTakenValues(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	first := f.save(t, f.alice, 0, 1, order.Normal, "1")
	f.save(t, f.alice, 0, 1, order.Normal, "1")
	require.NoError(t, f.orders.Remove(ctx, first))

	// One row left, so count+1 = 2 is taken by the survivor.
	third := f.save(t, f.alice, 0, 1, order.Normal, "1")

	assert.Equal(t, "CMD000003", third.Number())
}

func TestRepository_RemoveCascadesFromCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()
	o := f.save(t, f.bob, 0, 1, order.Normal, "1")

	bob, err := f.customers.Get(ctx, f.bob)
	require.NoError(t, err)
	require.NoError(t, f.customers.Remove(ctx, bob))

	_, err = f.orders.Get(ctx, o.ID())
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestRepository_Queries(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	late := f.save(t, f.alice, 10, 2, order.Urgent, "100")      // requested 8 days ago
	onTime := f.save(t, f.alice, 1, 5, order.Low, "50.50")      // requested in 4 days
	cancelled := f.save(t, f.bob, 20, 1, order.High, "999")     // cancelled, past due
	delivered := f.save(t, f.bob, 5, 1, order.Normal, "20.25") // delivered, past due

	require.NoError(t, cancelled.Cancel("client request"))
	require.NoError(t, f.orders.Save(ctx, cancelled))
	require.NoError(t, delivered.Deliver(today.AddDays(-3), today))
	require.NoError(t, f.orders.Save(ctx, delivered))

	ids := func(list []*order.Order) []int64 {
		out := make([]int64, 0, len(list))
		for _, o := range list {
			out = append(out, o.ID())
		}
		return out
	}

	t.Run("should order FindAll by order date descending", func(t *testing.T) {
		all, err := f.orders.FindAll(ctx)

		require.NoError(t, err)
		assert.Equal(t, []int64{onTime.ID(), delivered.ID(), late.ID(), cancelled.ID()}, ids(all))
	})

	t.Run("should find by customer", func(t *testing.T) {
		list, err := f.orders.FindByCustomer(ctx, f.bob)

		require.NoError(t, err)
		assert.Equal(t, []int64{delivered.ID(), cancelled.ID()}, ids(list))
	})

	t.Run("should search", func(t *testing.T) {
		list, err := f.orders.Search(ctx, order.SearchCriteria{CustomerID: f.alice, Priority: order.Urgent})
		require.NoError(t, err)
		assert.Equal(t, []int64{late.ID()}, ids(list))

		list, err = f.orders.Search(ctx, order.SearchCriteria{Number: "cmd00000", From: today.AddDays(-10), To: today.AddDays(-5)})
		require.NoError(t, err)
		assert.Equal(t, []int64{delivered.ID(), late.ID()}, ids(list))

		_, err = f.orders.Search(ctx, order.SearchCriteria{From: today, To: today.AddDays(-1)})
		assert.Error(t, err)
	})

	t.Run("should match the number literally", func(t *testing.T) {
		for _, number := range []string{"%", "CMD_", `\`} {
			list, err := f.orders.Search(ctx, order.SearchCriteria{Number: number})
			require.NoError(t, err)
			assert.Empty(t, list, number)
		}
	})

	t.Run("should count", func(t *testing.T) {
		total, err := f.orders.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)

		byStatus, err := f.orders.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), byStatus[order.Pending])
		assert.Equal(t, int64(1), byStatus[order.Cancelled])
		assert.Equal(t, int64(1), byStatus[order.Delivered])
		assert.Equal(t, int64(0), byStatus[order.InTransit])
		assert.Len(t, byStatus, len(order.Statuses()))

		byPriority, err := f.orders.CountByPriority(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[order.Priority]int64{order.Low: 1, order.Normal: 1, order.High: 1, order.Urgent: 1}, byPriority)

		active, err := f.orders.CountActiveByCustomer(ctx, f.bob)
		require.NoError(t, err)
		assert.Zero(t, active)

		all, err := f.orders.CountByCustomer(ctx, f.bob)
		require.NoError(t, err)
		assert.Equal(t, int64(2), all)
	})

	t.Run("should exclude cancelled orders from revenue", func(t *testing.T) {
		revenue, err := f.orders.TotalRevenue(ctx)
		require.NoError(t, err)
		assert.Equal(t, "170.75", revenue.StringFixed(2))

		average, err := f.orders.AveragePrice(ctx)
		require.NoError(t, err)
		assert.Equal(t, "56.92", average.StringFixed(2))
	})

	t.Run("should find late orders only among open ones", func(t *testing.T) {
		list, err := f.orders.FindLate(ctx, today)

		require.NoError(t, err)
		assert.Equal(t, []int64{late.ID()}, ids(list))
	})

	t.Run("should find by order date range and delivered", func(t *testing.T) {
		list, err := f.orders.FindOrderedBetween(ctx, today.AddDays(-10), today.AddDays(-1))
		require.NoError(t, err)
		assert.Equal(t, []int64{late.ID(), delivered.ID(), onTime.ID()}, ids(list))

		list, err = f.orders.FindDelivered(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{delivered.ID()}, ids(list))
	})
}

func TestRepository_EmptyAggregates(t *testing.T) {
	f := newFixture(t)

	revenue, err := f.orders.TotalRevenue(t.Context())
	require.NoError(t, err)
	assert.True(t, revenue.IsZero())

	average, err := f.orders.AveragePrice(t.Context())
	require.NoError(t, err)
	assert.True(t, average.IsZero())
}

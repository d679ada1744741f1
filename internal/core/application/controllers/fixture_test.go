package controllers_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"logistics/internal/adapters/out/storage/storagetest"
	"logistics/internal/core/application/controllers"
	"logistics/internal/core/application/events"
	"logistics/internal/core/domain/model/customer"
	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2025, time.June, 2, 9, 30, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]events.Kind, 0, len(r.events))
	for _, e := range r.events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func (r *recorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type fixture struct {
	customers *controllers.CustomerController
	orders    *controllers.OrderController
	events    *recorder
	now       time.Time
}

func (f *fixture) today() kernel.Date {
	return kernel.DateOf(f.now)
}

func (f *fixture) advance(days int) {
	f.now = f.now.AddDate(0, 0, days)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	m := storagetest.NewSQLite(t)
	factory, err := m.UnitOfWorkFactory()
	require.NoError(t, err)

	f := &fixture{events: &recorder{}, now: start}
	clock := func() time.Time { return f.now }

	bus := events.NewBus()
	bus.Subscribe(f.events.handle)

	f.customers, err = controllers.NewCustomerController(factory, bus, storagetest.DiscardLogger(), clock)
	require.NoError(t, err)
	f.orders, err = controllers.NewOrderController(factory, bus, storagetest.DiscardLogger(), clock)
	require.NoError(t, err)
	bus.Subscribe(f.orders.HandleEvent)

	return f
}

func dupont() customer.Contact {
	return customer.Contact{
		Name:       "Dupont",
		Surname:    "Jean",
		Email:      "JEAN.DUPONT@x.com",
		Phone:      "0123456789",
		Address:    "123 Rue X",
		City:       "Paris",
		PostalCode: "75001",
	}
}

func martin() customer.Contact {
	return customer.Contact{
		Name:       "Martin",
		Surname:    "Claire",
		Email:      "claire.martin@example.fr",
		Phone:      "+33 4 72 00 00 00",
		Address:    "8 Quai Saint-Antoine",
		City:       "Lyon",
		PostalCode: "69002",
	}
}

func details(price string, p order.Priority) order.Details {
	return order.Details{
		DeliveryAddress:    "12 Avenue Foch",
		DeliveryCity:       "Paris",
		DeliveryPostalCode: "75016",
		Priority:           p,
		WeightTotal:        2.5,
		VolumeTotal:        0.1,
		PriceTotal:         decimal.RequireFromString(price),
	}
}

func (f *fixture) createCustomer(t *testing.T, contact customer.Contact) *customer.Customer {
	t.Helper()
	c, err := f.customers.CreateCustomer(t.Context(), contact)
	require.NoError(t, err)
	return c
}

func (f *fixture) createOrder(t *testing.T, customerID int64, d order.Details) *order.Order {
	t.Helper()
	o, err := f.orders.CreateOrder(t.Context(), controllers.OrderInput{CustomerID: customerID, Details: d})
	require.NoError(t, err)
	return o
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, event events.Event) {
	m.Called(ctx, event)
}

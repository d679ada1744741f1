package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	api "logistics/internal/adapters/in/http"
	"logistics/internal/adapters/out/storage"
	"logistics/internal/adapters/out/storage/storagetest"
	"logistics/internal/core/application/controllers"
	"logistics/internal/core/application/events"
	"logistics/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)

func newServer(t *testing.T) (*echo.Echo, *storage.Manager) {
	t.Helper()

	m := storagetest.NewSQLite(t)
	_, err := m.SeedSampleData(t.Context(), kernel.DateOf(now))
	require.NoError(t, err)

	factory, err := m.UnitOfWorkFactory()
	require.NoError(t, err)
	clock := func() time.Time { return now }
	bus := events.NewBus()

	customers, err := controllers.NewCustomerController(factory, bus, storagetest.DiscardLogger(), clock)
	require.NoError(t, err)
	orders, err := controllers.NewOrderController(factory, bus, storagetest.DiscardLogger(), clock)
	require.NoError(t, err)

	server, err := api.NewServer(customers, orders, m, func() kernel.Date { return kernel.DateOf(now) })
	require.NoError(t, err)

	e := echo.New()
	server.Register(e)
	return e, m
}

func get(t *testing.T, e *echo.Echo, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestServer_Health(t *testing.T) {
	e, m := newServer(t)

	rec := get(t, e, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())

	require.NoError(t, m.Close())
	rec = get(t, e, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_Metrics(t *testing.T) {
	e, _ := newServer(t)

	rec := get(t, e, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestServer_Customers(t *testing.T) {
	e, _ := newServer(t)

	rec := get(t, e, "/api/v1/customers?city=paris")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]api.Customer](t, rec)
	require.NotEmpty(t, list)
	for _, c := range list {
		assert.Equal(t, "Paris", c.City)
	}

	rec = get(t, e, "/api/v1/customers?status=inactive")
	require.Equal(t, http.StatusOK, rec.Code)
	inactive := decode[[]api.Customer](t, rec)
	require.Len(t, inactive, 1)
	assert.Equal(t, "INACTIVE", inactive[0].Status)

	rec = get(t, e, "/api/v1/customers?status=gone")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, e, "/api/v1/customers/1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[api.Customer](t, rec).ID)

	rec = get(t, e, "/api/v1/customers/999")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = get(t, e, "/api/v1/customers/abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, e, "/api/v1/customers/1/orders")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, o := range decode[[]api.Order](t, rec) {
		assert.EqualValues(t, 1, o.CustomerID)
	}
}

func TestServer_Orders(t *testing.T) {
	e, _ := newServer(t)

	rec := get(t, e, "/api/v1/orders?sort=price&order=desc")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]api.Order](t, rec)
	require.Len(t, list, 5)
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].PriceTotal.GreaterThanOrEqual(list[i].PriceTotal))
	}

	rec = get(t, e, "/api/v1/orders?status=delivered")
	require.Equal(t, http.StatusOK, rec.Code)
	delivered := decode[[]api.Order](t, rec)
	require.Len(t, delivered, 1)
	require.NotNil(t, delivered[0].DeliveredAt)

	rec = get(t, e, "/api/v1/orders?from=2025-06-10&to=2025-06-01")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, e, "/api/v1/orders?from=yesterday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = get(t, e, "/api/v1/orders/"+"1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CMD000001", decode[api.Order](t, rec).Number)

	rec = get(t, e, "/api/v1/orders/late")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]api.Order](t, rec))

	rec = get(t, e, "/api/v1/orders/urgent")
	require.Equal(t, http.StatusOK, rec.Code)
	for _, o := range decode[[]api.Order](t, rec) {
		assert.Contains(t, []string{"HIGH", "URGENT"}, o.Priority)
	}
}

func TestServer_Statistics(t *testing.T) {
	e, _ := newServer(t)

	rec := get(t, e, "/api/v1/statistics")
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[api.Statistics](t, rec)

	assert.Equal(t, 2025, stats.Year)
	assert.EqualValues(t, 5, stats.Customers)
	assert.EqualValues(t, 5, stats.Orders)
	assert.EqualValues(t, 1, stats.OrdersByStatus["DELIVERED"])
	assert.EqualValues(t, 1, stats.CustomersByStatus["INACTIVE"])
	assert.Equal(t, "324.44", stats.TotalRevenue.StringFixed(2))
	assert.Zero(t, stats.LateOrders)

	rec = get(t, e, "/api/v1/statistics?year=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

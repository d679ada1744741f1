package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"logistics/internal/core/domain/model/customer"
	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/order"
	"logistics/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// CustomerReader is the read side of the customer controller.
type CustomerReader interface {
	GetCustomer(ctx context.Context, id int64) (*customer.Customer, error)
	SearchAndSortCustomers(ctx context.Context, criteria customer.SearchCriteria, field customer.SortField, ascending bool) ([]*customer.Customer, error)
	TotalCustomers(ctx context.Context) (int64, error)
	CustomersByStatus(ctx context.Context) (map[customer.Status]int64, error)
	CustomersByCity(ctx context.Context) (map[string]int64, error)
}

// OrderReader is the read side of the order controller.
type OrderReader interface {
	GetOrder(ctx context.Context, id int64) (*order.Order, error)
	OrdersByCustomer(ctx context.Context, customerID int64) ([]*order.Order, error)
	SearchAndSortOrders(ctx context.Context, criteria order.SearchCriteria, field order.SortField, ascending bool) ([]*order.Order, error)
	LateOrders(ctx context.Context) ([]*order.Order, error)
	UrgentOrders(ctx context.Context) ([]*order.Order, error)
	TotalOrders(ctx context.Context) (int64, error)
	OrdersByStatus(ctx context.Context) (map[order.Status]int64, error)
	OrdersByPriority(ctx context.Context) (map[order.Priority]int64, error)
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	AveragePrice(ctx context.Context) (decimal.Decimal, error)
	MonthlyOrderCounts(ctx context.Context, year int) ([12]int64, error)
	AverageDeliveryDays(ctx context.Context) (float64, error)
}

// HealthChecker reports whether storage answers.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Server serves the read-only HTTP API over the controllers.
type Server struct {
	customers CustomerReader
	orders    OrderReader
	health    HealthChecker
	today     func() kernel.Date
}

func NewServer(customers CustomerReader, orders OrderReader, health HealthChecker, today func() kernel.Date) (*Server, error) {
	if customers == nil {
		return nil, errs.NewValueIsRequiredError("customers")
	}
	if orders == nil {
		return nil, errs.NewValueIsRequiredError("orders")
	}
	if health == nil {
		return nil, errs.NewValueIsRequiredError("health")
	}
	if today == nil {
		return nil, errs.NewValueIsRequiredError("today")
	}
	return &Server{customers: customers, orders: orders, health: health, today: today}, nil
}

// Register mounts every route on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", s.GetHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.GET("/customers", s.GetCustomers)
	api.GET("/customers/:id", s.GetCustomer)
	api.GET("/customers/:id/orders", s.GetCustomerOrders)
	api.GET("/orders", s.GetOrders)
	api.GET("/orders/late", s.GetLateOrders)
	api.GET("/orders/urgent", s.GetUrgentOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.GET("/statistics", s.GetStatistics)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(ctx echo.Context) error {
	if err := s.health.Ping(ctx.Request().Context()); err != nil {
		return ctx.JSON(http.StatusServiceUnavailable, Error{
			Code:    http.StatusServiceUnavailable,
			Message: "Storage is unavailable",
		})
	}
	return ctx.String(http.StatusOK, "Healthy")
}

// GetCustomers handles GET /api/v1/customers - filters with name, surname,
// city and status, sorts with sort and order.
func (s *Server) GetCustomers(ctx echo.Context) error {
	criteria := customer.SearchCriteria{
		Name:    ctx.QueryParam("name"),
		Surname: ctx.QueryParam("surname"),
		City:    ctx.QueryParam("city"),
	}
	if raw := ctx.QueryParam("status"); raw != "" {
		status, err := customer.ParseStatus(strings.ToUpper(raw))
		if err != nil {
			return badRequest(ctx, err)
		}
		criteria.Status = status
	}

	list, err := s.customers.SearchAndSortCustomers(ctx.Request().Context(), criteria,
		customer.ParseSortField(ctx.QueryParam("sort")), ascending(ctx))
	if err != nil {
		return failure(ctx, err)
	}
	return ctx.JSON(http.StatusOK, customersResponse(list))
}

// GetCustomer handles GET /api/v1/customers/:id.
func (s *Server) GetCustomer(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	c, err := s.customers.GetCustomer(ctx.Request().Context(), id)
	if err != nil {
		return failure(ctx, err)
	}
	return ctx.JSON(http.StatusOK, customerResponse(c))
}

// GetCustomerOrders handles GET /api/v1/customers/:id/orders.
func (s *Server) GetCustomerOrders(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	if _, err := s.customers.GetCustomer(ctx.Request().Context(), id); err != nil {
		return failure(ctx, err)
	}
	list, err := s.orders.OrdersByCustomer(ctx.Request().Context(), id)
	if err != nil {
		return failure(ctx, err)
	}
	return ctx.JSON(http.StatusOK, s.ordersResponse(list))
}

// GetOrders handles GET /api/v1/orders - filters with number, customer_id,
// status, priority, from and to (YYYY-MM-DD), sorts with sort and order.
func (s *Server) GetOrders(ctx echo.Context) error {
	criteria, err := orderCriteria(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	list, err := s.orders.SearchAndSortOrders(ctx.Request().Context(), criteria,
		order.ParseSortField(ctx.QueryParam("sort")), ascending(ctx))
	if err != nil {
		return failure(ctx, err)
	}
	return ctx.JSON(http.StatusOK, s.ordersResponse(list))
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	o, err := s.orders.GetOrder(ctx.Request().Context(), id)
	if err != nil {
		return failure(ctx, err)
	}
	return ctx.JSON(http.StatusOK, s.orderResponse(o))
}

// GetLateOrders handles GET /api/v1/orders/late.
func (s *Server) GetLateOrders(ctx echo.Context) error {
	list, err := s.orders.LateOrders(ctx.Request().Context())
	if err != nil {
		return failure(ctx, err)
	}
	return ctx.JSON(http.StatusOK, s.ordersResponse(list))
}

// GetUrgentOrders handles GET /api/v1/orders/urgent.
func (s *Server) GetUrgentOrders(ctx echo.Context) error {
	list, err := s.orders.UrgentOrders(ctx.Request().Context())
	if err != nil {
		return failure(ctx, err)
	}
	return ctx.JSON(http.StatusOK, s.ordersResponse(list))
}

// GetStatistics handles GET /api/v1/statistics. The monthly breakdown covers
// the year query parameter, the current year by default.
func (s *Server) GetStatistics(ctx echo.Context) error {
	year := s.today().Year()
	if raw := ctx.QueryParam("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return badRequest(ctx, err)
		}
		year = parsed
	}

	stats, err := s.statistics(ctx.Request().Context(), year)
	if err != nil {
		return failure(ctx, err)
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (s *Server) statistics(ctx context.Context, year int) (Statistics, error) {
	stats := Statistics{
		Year:              year,
		CustomersByStatus: map[string]int64{},
		OrdersByStatus:    map[string]int64{},
		OrdersByPriority:  map[string]int64{},
	}

	var err error
	if stats.Customers, err = s.customers.TotalCustomers(ctx); err != nil {
		return stats, err
	}
	byCustomerStatus, err := s.customers.CustomersByStatus(ctx)
	if err != nil {
		return stats, err
	}
	for status, n := range byCustomerStatus {
		stats.CustomersByStatus[status.String()] = n
	}
	if stats.CustomersByCity, err = s.customers.CustomersByCity(ctx); err != nil {
		return stats, err
	}

	if stats.Orders, err = s.orders.TotalOrders(ctx); err != nil {
		return stats, err
	}
	byStatus, err := s.orders.OrdersByStatus(ctx)
	if err != nil {
		return stats, err
	}
	for status, n := range byStatus {
		stats.OrdersByStatus[status.String()] = n
	}
	byPriority, err := s.orders.OrdersByPriority(ctx)
	if err != nil {
		return stats, err
	}
	for priority, n := range byPriority {
		stats.OrdersByPriority[priority.String()] = n
	}

	if stats.TotalRevenue, err = s.orders.TotalRevenue(ctx); err != nil {
		return stats, err
	}
	if stats.AveragePrice, err = s.orders.AveragePrice(ctx); err != nil {
		return stats, err
	}
	if stats.MonthlyOrders, err = s.orders.MonthlyOrderCounts(ctx, year); err != nil {
		return stats, err
	}
	if stats.AverageDeliveryDays, err = s.orders.AverageDeliveryDays(ctx); err != nil {
		return stats, err
	}
	late, err := s.orders.LateOrders(ctx)
	if err != nil {
		return stats, err
	}
	stats.LateOrders = len(late)

	return stats, nil
}

func orderCriteria(ctx echo.Context) (order.SearchCriteria, error) {
	criteria := order.SearchCriteria{Number: ctx.QueryParam("number")}

	if raw := ctx.QueryParam("customer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return criteria, errs.NewValueIsInvalidErrorWithCause("customer_id", err)
		}
		criteria.CustomerID = id
	}
	if raw := ctx.QueryParam("status"); raw != "" {
		status, err := order.ParseStatus(strings.ToUpper(raw))
		if err != nil {
			return criteria, err
		}
		criteria.Status = status
	}
	if raw := ctx.QueryParam("priority"); raw != "" {
		priority, err := order.ParsePriority(strings.ToUpper(raw))
		if err != nil {
			return criteria, err
		}
		criteria.Priority = priority
	}

	var err error
	if criteria.From, err = queryDate(ctx, "from"); err != nil {
		return criteria, err
	}
	if criteria.To, err = queryDate(ctx, "to"); err != nil {
		return criteria, err
	}
	return criteria, nil
}

func queryDate(ctx echo.Context, name string) (kernel.Date, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return kernel.Date{}, nil
	}
	d, err := kernel.ParseDate(raw)
	if err != nil {
		return kernel.Date{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return d, nil
}

func pathID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewValueIsInvalidError("id")
	}
	return id, nil
}

func ascending(ctx echo.Context) bool {
	return !strings.EqualFold(ctx.QueryParam("order"), "desc")
}

func badRequest(ctx echo.Context, err error) error {
	return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: err.Error()})
}

// failure maps controller errors onto status codes.
func failure(ctx echo.Context, err error) error {
	code := http.StatusInternalServerError
	message := "Internal error"

	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		code, message = http.StatusNotFound, err.Error()
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValidationFailed):
		code, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, errs.ErrStorageUnavailable):
		code, message = http.StatusServiceUnavailable, "Storage is unavailable"
	}

	return ctx.JSON(code, Error{Code: code, Message: message})
}

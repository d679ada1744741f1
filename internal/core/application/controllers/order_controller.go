package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"logistics/internal/core/application/events"
	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/order"
	"logistics/internal/core/domain/validation"
	"logistics/internal/core/ports"
	"logistics/internal/pkg/errs"
	"logistics/internal/pkg/metrics"

	"github.com/shopspring/decimal"
)

// OrderInput is what a caller provides to place an order. The order date is
// always today.
type OrderInput struct {
	CustomerID int64
	Details    order.Details
}

// OrderController exposes the order operations.
type OrderController struct {
	base
	uowFactory ports.UnitOfWorkFactory
	cache      *listCache[*order.Order]
}

func NewOrderController(
	uowFactory ports.UnitOfWorkFactory,
	publisher Publisher,
	logger *slog.Logger,
	clock Clock,
) (*OrderController, error) {
	if uowFactory == nil {
		return nil, errs.NewValueIsRequiredError("uowFactory")
	}
	if publisher == nil {
		return nil, errs.NewValueIsRequiredError("publisher")
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}

	return &OrderController{
		base:       newBase("orders", events.EntityOrder, publisher, logger, clock),
		uowFactory: uowFactory,
		cache:      newListCache("orders", (*order.Order).Clone),
	}, nil
}

// HandleEvent drops the cached order list when a customer is deleted, since
// the customer's orders went with it. Subscribe it to the bus the customer
// controller publishes on.
func (c *OrderController) HandleEvent(_ context.Context, event events.Event) {
	if event.Kind == events.CustomerDeleted {
		c.cache.Invalidate()
	}
}

func (c *OrderController) repositories() (ports.CustomerRepository, ports.OrderRepository) {
	uow := c.uowFactory.Create()
	return uow.CustomerRepository(), uow.OrderRepository()
}

// CreateOrder places a Pending order dated today for an existing customer.
// The order number is generated by storage.
func (c *OrderController) CreateOrder(ctx context.Context, input OrderInput) (*order.Order, error) {
	return command(ctx, c.base, "CreateOrder", 0, func() (*order.Order, error) {
		today := c.today()
		if violations := validation.ValidateOrder(orderFields(input.CustomerID, today, input.Details), today); len(violations) > 0 {
			return nil, errs.NewValidationError(violations)
		}

		customers, orders := c.repositories()
		if _, err := customers.Get(ctx, input.CustomerID); err != nil {
			return nil, err
		}

		created, err := order.NewOrder(input.CustomerID, today, input.Details)
		if err != nil {
			return nil, err
		}
		if err := orders.Save(ctx, created); err != nil {
			return nil, err
		}

		c.cache.Invalidate()
		c.publish(ctx, events.OrderCreated, created.ID(), created.Status().String(), created.Number())
		return created.Clone(), nil
	})
}

// UpdateOrder applies the customer, details, status and delivery date of
// updated onto the stored order. Only orders that are not Delivered or
// Cancelled can be updated, and status changes follow the workflow. The
// stored result is returned.
func (c *OrderController) UpdateOrder(ctx context.Context, updated *order.Order) (*order.Order, error) {
	id := int64(0)
	if updated != nil {
		id = updated.ID()
	}

	return command(ctx, c.base, "UpdateOrder", id, func() (*order.Order, error) {
		if updated == nil {
			return nil, errs.NewValueIsRequiredError("order")
		}
		if !updated.IsSaved() {
			return nil, errs.NewValueIsInvalidErrorWithCause("order id is invalid", errors.New("order was never saved"))
		}

		customers, orders := c.repositories()
		stored, err := orders.Get(ctx, updated.ID())
		if err != nil {
			return nil, err
		}
		if !stored.CanModify() {
			return nil, errs.NewOperationNotAllowedError("update order",
				fmt.Sprintf("order %s is %s", stored.Number(), stored.Status()))
		}

		if updated.CustomerID() != stored.CustomerID() {
			if _, err := customers.Get(ctx, updated.CustomerID()); err != nil {
				return nil, err
			}
		}

		previous := stored.Status()
		if err := errors.Join(
			stored.SetCustomerID(updated.CustomerID()),
			stored.SetDetails(updated.Details()),
		); err != nil {
			return nil, err
		}
		if !updated.DeliveredAt().IsZero() {
			if err := stored.SetDeliveredAt(updated.DeliveredAt()); err != nil {
				return nil, err
			}
		}
		today := c.today()
		if err := stored.ChangeStatus(updated.Status(), today); err != nil {
			return nil, err
		}
		fields := orderFields(stored.CustomerID(), stored.OrderedAt(), stored.Details())
		if violations := validation.ValidateOrder(fields, today); len(violations) > 0 {
			return nil, errs.NewValidationError(violations)
		}
		if err := orders.Save(ctx, stored); err != nil {
			return nil, err
		}

		c.cache.Invalidate()
		c.publish(ctx, events.OrderUpdated, stored.ID(), stored.Status().String(), "")
		if stored.Status() != previous {
			c.publishStatusChange(ctx, stored, previous)
		}
		return stored.Clone(), nil
	})
}

// DeleteOrder removes a Pending or Cancelled order.
func (c *OrderController) DeleteOrder(ctx context.Context, id int64) error {
	_, err := command(ctx, c.base, "DeleteOrder", id, func() (struct{}, error) {
		_, orders := c.repositories()

		stored, err := orders.Get(ctx, id)
		if err != nil {
			return struct{}{}, err
		}
		if !stored.CanDelete() {
			return struct{}{}, errs.NewOperationNotAllowedError("delete order",
				fmt.Sprintf("order %s is %s", stored.Number(), stored.Status()))
		}
		if err := orders.Remove(ctx, stored); err != nil {
			return struct{}{}, err
		}

		c.cache.Invalidate()
		c.publish(ctx, events.OrderDeleted, id, "", "")
		return struct{}{}, nil
	})
	return err
}

func (c *OrderController) CanModifyOrder(ctx context.Context, id int64) (bool, error) {
	return query(ctx, c.base, "CanModifyOrder", func() (bool, error) {
		_, orders := c.repositories()
		stored, err := orders.Get(ctx, id)
		if err != nil {
			return false, err
		}
		return stored.CanModify(), nil
	})
}

func (c *OrderController) CanDeleteOrder(ctx context.Context, id int64) (bool, error) {
	return query(ctx, c.base, "CanDeleteOrder", func() (bool, error) {
		_, orders := c.repositories()
		stored, err := orders.Get(ctx, id)
		if err != nil {
			return false, err
		}
		return stored.CanDelete(), nil
	})
}

func (c *OrderController) GetOrder(ctx context.Context, id int64) (*order.Order, error) {
	return query(ctx, c.base, "GetOrder", func() (*order.Order, error) {
		_, orders := c.repositories()
		return orders.Get(ctx, id)
	})
}

func (c *OrderController) GetOrderByNumber(ctx context.Context, number string) (*order.Order, error) {
	return query(ctx, c.base, "GetOrderByNumber", func() (*order.Order, error) {
		_, orders := c.repositories()
		return orders.FindByNumber(ctx, number)
	})
}

// GetAllOrders serves the list from the cache until the next write.
func (c *OrderController) GetAllOrders(ctx context.Context) ([]*order.Order, error) {
	return query(ctx, c.base, "GetAllOrders", func() ([]*order.Order, error) {
		if cached, ok := c.cache.Get(); ok {
			return cached, nil
		}

		_, orders := c.repositories()
		all, err := orders.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		c.cache.Set(all)
		return all, nil
	})
}

func (c *OrderController) OrdersByCustomer(ctx context.Context, customerID int64) ([]*order.Order, error) {
	return query(ctx, c.base, "OrdersByCustomer", func() ([]*order.Order, error) {
		_, orders := c.repositories()
		return orders.FindByCustomer(ctx, customerID)
	})
}

func (c *OrderController) SearchOrders(ctx context.Context, criteria order.SearchCriteria) ([]*order.Order, error) {
	return query(ctx, c.base, "SearchOrders", func() ([]*order.Order, error) {
		if err := criteria.Validate(); err != nil {
			return nil, err
		}
		_, orders := c.repositories()
		return orders.Search(ctx, criteria)
	})
}

// SortOrders sorts a copy of list; list itself is left untouched.
func (c *OrderController) SortOrders(list []*order.Order, field order.SortField, ascending bool) []*order.Order {
	return order.Sort(list, field, ascending)
}

func (c *OrderController) SearchAndSortOrders(
	ctx context.Context,
	criteria order.SearchCriteria,
	field order.SortField,
	ascending bool,
) ([]*order.Order, error) {
	found, err := c.SearchOrders(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return order.Sort(found, field, ascending), nil
}

// ChangeStatus moves the order to status. Requesting the current status is a
// no-op that publishes nothing.
func (c *OrderController) ChangeStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error) {
	return c.transition(ctx, "ChangeStatus", id, func(o *order.Order, today kernel.Date) error {
		return o.ChangeStatus(status, today)
	})
}

func (c *OrderController) ConfirmOrder(ctx context.Context, id int64) (*order.Order, error) {
	return c.transition(ctx, "ConfirmOrder", id, func(o *order.Order, today kernel.Date) error {
		return o.ChangeStatus(order.Confirmed, today)
	})
}

// DeliverOrder marks the order delivered on date, or today when date is zero.
func (c *OrderController) DeliverOrder(ctx context.Context, id int64, date kernel.Date) (*order.Order, error) {
	return c.transition(ctx, "DeliverOrder", id, func(o *order.Order, today kernel.Date) error {
		return o.Deliver(date, today)
	})
}

// CancelOrder cancels the order and records reason in its comments. A
// Delivered order cannot be cancelled.
func (c *OrderController) CancelOrder(ctx context.Context, id int64, reason string) (*order.Order, error) {
	return c.transition(ctx, "CancelOrder", id, func(o *order.Order, _ kernel.Date) error {
		return o.Cancel(reason)
	})
}

func (c *OrderController) transition(
	ctx context.Context,
	operation string,
	id int64,
	apply func(o *order.Order, today kernel.Date) error,
) (*order.Order, error) {
	return command(ctx, c.base, operation, id, func() (*order.Order, error) {
		_, orders := c.repositories()

		stored, err := orders.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		previous := stored.Status()
		if err := apply(stored, c.today()); err != nil {
			return nil, err
		}
		if stored.Status() == previous {
			return stored, nil
		}
		if err := orders.Save(ctx, stored); err != nil {
			return nil, err
		}

		c.cache.Invalidate()
		c.publishStatusChange(ctx, stored, previous)
		return stored.Clone(), nil
	})
}

func (c *OrderController) publishStatusChange(ctx context.Context, o *order.Order, previous order.Status) {
	c.publish(ctx, events.OrderStatusChanged, o.ID(), o.Status().String(),
		fmt.Sprintf("%s -> %s", previous, o.Status()))
}

func (c *OrderController) TotalOrders(ctx context.Context) (int64, error) {
	return query(ctx, c.base, "TotalOrders", func() (int64, error) {
		_, orders := c.repositories()
		return orders.Count(ctx)
	})
}

func (c *OrderController) OrdersByStatus(ctx context.Context) (map[order.Status]int64, error) {
	return query(ctx, c.base, "OrdersByStatus", func() (map[order.Status]int64, error) {
		_, orders := c.repositories()
		return orders.CountByStatus(ctx)
	})
}

func (c *OrderController) OrdersByPriority(ctx context.Context) (map[order.Priority]int64, error) {
	return query(ctx, c.base, "OrdersByPriority", func() (map[order.Priority]int64, error) {
		_, orders := c.repositories()
		return orders.CountByPriority(ctx)
	})
}

// TotalRevenue sums the price of every order that was not cancelled.
func (c *OrderController) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	return query(ctx, c.base, "TotalRevenue", func() (decimal.Decimal, error) {
		_, orders := c.repositories()
		return orders.TotalRevenue(ctx)
	})
}

func (c *OrderController) AveragePrice(ctx context.Context) (decimal.Decimal, error) {
	return query(ctx, c.base, "AveragePrice", func() (decimal.Decimal, error) {
		_, orders := c.repositories()
		return orders.AveragePrice(ctx)
	})
}

// LateOrders returns open orders past their requested delivery date and
// updates the late-orders gauge.
func (c *OrderController) LateOrders(ctx context.Context) ([]*order.Order, error) {
	return query(ctx, c.base, "LateOrders", func() ([]*order.Order, error) {
		_, orders := c.repositories()
		late, err := orders.FindLate(ctx, c.today())
		if err != nil {
			return nil, err
		}
		metrics.SetLateOrders(len(late))
		return late, nil
	})
}

// MonthlyOrderCounts counts the orders placed in each month of year. Index 0
// is January; months without orders stay at zero.
func (c *OrderController) MonthlyOrderCounts(ctx context.Context, year int) ([12]int64, error) {
	return query(ctx, c.base, "MonthlyOrderCounts", func() ([12]int64, error) {
		var counts [12]int64
		if year < 1 || year > 9999 {
			return counts, errs.NewValueIsOutOfRangeError("year", year, 1, 9999)
		}

		_, orders := c.repositories()
		placed, err := orders.FindOrderedBetween(ctx,
			kernel.NewDate(year, time.January, 1),
			kernel.NewDate(year, time.December, 31))
		if err != nil {
			return counts, err
		}
		for _, o := range placed {
			counts[o.OrderedAt().Month()-1]++
		}
		return counts, nil
	})
}

// AverageDeliveryDays is the mean number of days between order and delivery
// over delivered orders, or 0 when none was delivered.
func (c *OrderController) AverageDeliveryDays(ctx context.Context) (float64, error) {
	return query(ctx, c.base, "AverageDeliveryDays", func() (float64, error) {
		_, orders := c.repositories()
		delivered, err := orders.FindDelivered(ctx)
		if err != nil {
			return 0, err
		}

		total, n := 0, 0
		for _, o := range delivered {
			if days := o.DeliveryDays(); days != order.NoDays {
				total += days
				n++
			}
		}
		if n == 0 {
			return 0, nil
		}
		return float64(total) / float64(n), nil
	})
}

// UrgentOrders returns High and Urgent orders of any status, most urgent
// first. Within a priority the most recent order comes first.
func (c *OrderController) UrgentOrders(ctx context.Context) ([]*order.Order, error) {
	return query(ctx, c.base, "UrgentOrders", func() ([]*order.Order, error) {
		_, orders := c.repositories()
		all, err := orders.FindAll(ctx)
		if err != nil {
			return nil, err
		}

		urgent := make([]*order.Order, 0)
		for _, o := range all {
			if o.Priority().IsUrgent() {
				urgent = append(urgent, o)
			}
		}
		return order.Sort(urgent, order.SortByPriority, false), nil
	})
}

func orderFields(customerID int64, orderedAt kernel.Date, d order.Details) validation.OrderFields {
	return validation.OrderFields{
		CustomerID:          customerID,
		OrderedAt:           orderedAt,
		RequestedDeliveryAt: d.RequestedDeliveryAt,
		DeliveryAddress:     d.DeliveryAddress,
		DeliveryCity:        d.DeliveryCity,
		DeliveryPostalCode:  d.DeliveryPostalCode,
		WeightTotal:         d.WeightTotal,
		VolumeTotal:         d.VolumeTotal,
		PriceTotal:          d.PriceTotal,
	}
}

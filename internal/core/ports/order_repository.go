package ports

import (
	"context"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// OrderRepository defines the persistence contract for order aggregates.
// Provides methods for storing, retrieving, and querying orders by customer,
// status, priority and dates, plus the aggregates used for statistics.
type OrderRepository interface {
	// Save validates the order, then inserts it when unsaved or updates it by id.
	// On insert the storage engine generates the order number; it is assigned to
	// the aggregate together with the id. Order number and order date are never
	// updated afterwards.
	Save(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order by id. A missing row is *errs.ObjectNotFoundError.
	Get(ctx context.Context, id int64) (*order.Order, error)

	// Remove deletes the row and resets the aggregate id to order.UnsavedID.
	Remove(ctx context.Context, aggregate *order.Order) error

	// FindAll returns every order, most recent order date first.
	FindAll(ctx context.Context) ([]*order.Order, error)

	FindByNumber(ctx context.Context, number string) (*order.Order, error)
	FindByCustomer(ctx context.Context, customerID int64) ([]*order.Order, error)
	Search(ctx context.Context, criteria order.SearchCriteria) ([]*order.Order, error)

	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[order.Status]int64, error)
	CountByPriority(ctx context.Context) (map[order.Priority]int64, error)

	// CountActiveByCustomer counts Pending, Confirmed, Preparing and InTransit orders.
	CountActiveByCustomer(ctx context.Context, customerID int64) (int64, error)
	CountByCustomer(ctx context.Context, customerID int64) (int64, error)

	// TotalRevenue and AveragePrice ignore Cancelled orders. Both are zero when
	// no order qualifies.
	TotalRevenue(ctx context.Context) (decimal.Decimal, error)
	AveragePrice(ctx context.Context) (decimal.Decimal, error)

	// FindLate returns non-terminal orders whose requested delivery date is
	// before today, oldest request first.
	FindLate(ctx context.Context, today kernel.Date) ([]*order.Order, error)

	// FindOrderedBetween returns orders placed within [from, to], oldest first.
	FindOrderedBetween(ctx context.Context, from, to kernel.Date) ([]*order.Order, error)

	// FindDelivered returns Delivered orders with an actual delivery date.
	FindDelivered(ctx context.Context) ([]*order.Order, error)
}

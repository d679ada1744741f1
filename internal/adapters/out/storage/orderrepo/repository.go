package orderrepo

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"logistics/internal/adapters/out/storage/gormerr"
	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	numberConstraint   = "orders.order_number"
	customerConstraint = "orders.customer_id"
)

// NumberGenerator produces the order number for a new row. It runs on the
// same connection or transaction as the insert.
type NumberGenerator interface {
	NextOrderNumber(ctx context.Context, db *gorm.DB) (string, error)
}

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	numbers NumberGenerator
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, numbers NumberGenerator) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		numbers: numbers,
	}
}

func activeStatusCodes() []string {
	return []string{
		order.Pending.String(),
		order.Confirmed.String(),
		order.Preparing.String(),
		order.InTransit.String(),
	}
}

// Save inserts unsaved orders with a freshly generated number and updates
// saved ones. The number and order date are never rewritten.
func (r *GormOrderRepository) Save(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	if !aggregate.IsSaved() {
		return r.insert(ctx, aggregate)
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ?", dto.ID).
		Select("*").Omit("id", "order_number", "ordered_at").
		Updates(&dto)
	if result.Error != nil {
		return gormerr.Translate(result.Error, customerConstraint)
	}
	if result.RowsAffected == 0 {
		return gormerr.NotFound(gorm.ErrRecordNotFound, "order", dto.ID)
	}
	return nil
}

func (r *GormOrderRepository) insert(ctx context.Context, aggregate *order.Order) error {
	number, err := r.numbers.NextOrderNumber(ctx, r.db)
	if err != nil {
		return fmt.Errorf("generate order number: %w", err)
	}

	dto := fromDomain(aggregate)
	dto.OrderNumber = number
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		constraint := numberConstraint
		if strings.Contains(strings.ToLower(err.Error()), "foreign key") {
			constraint = customerConstraint
		}
		return gormerr.Translate(err, constraint)
	}

	return aggregate.AssignIdentity(dto.ID, dto.OrderNumber)
}

// Get retrieves an order by id.
func (r *GormOrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id).Error; err != nil {
		return nil, gormerr.NotFound(err, "order", id)
	}
	return toDomain(dto)
}

func (r *GormOrderRepository) Remove(ctx context.Context, aggregate *order.Order) error {
	if !aggregate.IsSaved() {
		return gormerr.NotFound(gorm.ErrRecordNotFound, "order", aggregate.ID())
	}

	result := r.db.WithContext(ctx).Delete(&OrderDTO{}, "id = ?", aggregate.ID())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gormerr.NotFound(gorm.ErrRecordNotFound, "order", aggregate.ID())
	}

	aggregate.MarkRemoved()
	return nil
}

// FindAll returns every order, newest order date first.
func (r *GormOrderRepository) FindAll(ctx context.Context) ([]*order.Order, error) {
	return r.find(r.db.WithContext(ctx), "ordered_at DESC", "id DESC")
}

func (r *GormOrderRepository) FindByNumber(ctx context.Context, number string) (*order.Order, error) {
	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "order_number = ?", strings.TrimSpace(number)).Error; err != nil {
		return nil, gormerr.NotFound(err, "order number", number)
	}
	return toDomain(dto)
}

func (r *GormOrderRepository) FindByCustomer(ctx context.Context, customerID int64) ([]*order.Order, error) {
	return r.find(r.db.WithContext(ctx).Where("customer_id = ?", customerID), "ordered_at DESC", "id DESC")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search applies every non-empty criterion with AND semantics. The number
// filter is a literal substring: LIKE wildcards in it are escaped.
func (r *GormOrderRepository) Search(ctx context.Context, criteria order.SearchCriteria) ([]*order.Order, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx)
	if number := strings.TrimSpace(criteria.Number); number != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToUpper(number)) + "%"
		query = query.Where("UPPER(order_number) LIKE ? ESCAPE '\\'", pattern)
	}
	if criteria.CustomerID > 0 {
		query = query.Where("customer_id = ?", criteria.CustomerID)
	}
	if criteria.Status != order.Unknown {
		query = query.Where("status = ?", criteria.Status.String())
	}
	if criteria.Priority != order.UnknownPriority {
		query = query.Where("priority = ?", criteria.Priority.String())
	}
	if !criteria.From.IsZero() {
		query = query.Where("ordered_at >= ?", criteria.From)
	}
	if !criteria.To.IsZero() {
		query = query.Where("ordered_at <= ?", criteria.To)
	}

	found, err := r.find(query, "ordered_at DESC", "id DESC")
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(found, func(o *order.Order) bool {
		return !criteria.Matches(o)
	}), nil
}

func (r *GormOrderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&OrderDTO{}).Count(&count).Error
	return count, err
}

// CountByStatus returns a count for every status, zero included.
func (r *GormOrderRepository) CountByStatus(ctx context.Context) (map[order.Status]int64, error) {
	rows, err := r.countBy(ctx, "status")
	if err != nil {
		return nil, err
	}

	counts := make(map[order.Status]int64, len(order.Statuses()))
	for _, s := range order.Statuses() {
		counts[s] = 0
	}
	for code, total := range rows {
		s, err := order.ParseStatus(code)
		if err != nil {
			return nil, err
		}
		counts[s] = total
	}
	return counts, nil
}

// CountByPriority returns a count for every priority, zero included.
func (r *GormOrderRepository) CountByPriority(ctx context.Context) (map[order.Priority]int64, error) {
	rows, err := r.countBy(ctx, "priority")
	if err != nil {
		return nil, err
	}

	counts := make(map[order.Priority]int64, len(order.Priorities()))
	for _, p := range order.Priorities() {
		counts[p] = 0
	}
	for code, total := range rows {
		p, err := order.ParsePriority(code)
		if err != nil {
			return nil, err
		}
		counts[p] = total
	}
	return counts, nil
}

func (r *GormOrderRepository) CountActiveByCustomer(ctx context.Context, customerID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("customer_id = ? AND status IN ?", customerID, activeStatusCodes()).
		Count(&count).Error
	return count, err
}

func (r *GormOrderRepository) CountByCustomer(ctx context.Context, customerID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("customer_id = ?", customerID).
		Count(&count).Error
	return count, err
}

// TotalRevenue sums the price of every order that is not Cancelled.
func (r *GormOrderRepository) TotalRevenue(ctx context.Context) (decimal.Decimal, error) {
	return r.aggregatePrice(ctx, "SUM")
}

// AveragePrice averages the price of every order that is not Cancelled.
func (r *GormOrderRepository) AveragePrice(ctx context.Context) (decimal.Decimal, error) {
	return r.aggregatePrice(ctx, "AVG")
}

// FindLate returns open orders whose requested delivery date is before today.
func (r *GormOrderRepository) FindLate(ctx context.Context, today kernel.Date) ([]*order.Order, error) {
	query := r.db.WithContext(ctx).
		Where("requested_delivery_at IS NOT NULL").
		Where("requested_delivery_at < ?", today).
		Where("status IN ?", activeStatusCodes())
	return r.find(query, "requested_delivery_at ASC", "id ASC")
}

func (r *GormOrderRepository) FindOrderedBetween(ctx context.Context, from, to kernel.Date) ([]*order.Order, error) {
	query := r.db.WithContext(ctx).Where("ordered_at >= ? AND ordered_at <= ?", from, to)
	return r.find(query, "ordered_at ASC", "id ASC")
}

func (r *GormOrderRepository) FindDelivered(ctx context.Context) ([]*order.Order, error) {
	query := r.db.WithContext(ctx).
		Where("status = ?", order.Delivered.String()).
		Where("delivered_at IS NOT NULL")
	return r.find(query, "delivered_at ASC", "id ASC")
}

func (r *GormOrderRepository) find(query *gorm.DB, orderBy ...string) ([]*order.Order, error) {
	for _, o := range orderBy {
		query = query.Order(o)
	}

	var dtos []OrderDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

func (r *GormOrderRepository) countBy(ctx context.Context, column string) (map[string]int64, error) {
	var rows []struct {
		Code  string
		Total int64
	}
	err := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Select(column + " AS code, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Code] = row.Total
	}
	return counts, nil
}

func (r *GormOrderRepository) aggregatePrice(ctx context.Context, fn string) (decimal.Decimal, error) {
	query := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Select(fn+"(price_total)").
		Where("status <> ?", order.Cancelled.String())
	row := query.Row()
	if row == nil {
		return decimal.Zero, fmt.Errorf("%s(price_total): no row returned", fn)
	}

	var result decimal.NullDecimal
	if err := row.Scan(&result); err != nil {
		return decimal.Zero, err
	}
	if !result.Valid {
		return decimal.Zero, nil
	}
	return result.Decimal.Round(2), nil
}

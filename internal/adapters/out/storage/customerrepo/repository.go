package customerrepo

import (
	"context"
	"slices"
	"strings"
	"unicode/utf8"

	"logistics/internal/adapters/out/storage/gormerr"
	"logistics/internal/core/domain/model/customer"
	"logistics/internal/core/domain/model/kernel"

	"gorm.io/gorm"
)

const emailConstraint = "customers.email"

// GormCustomerRepository implements ports.CustomerRepository using GORM.
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewGormCustomerRepository creates a new GORM customer repository.
func NewGormCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// Save inserts unsaved customers and updates saved ones.
func (r *GormCustomerRepository) Save(ctx context.Context, c *customer.Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}

	dto := fromDomain(c)
	if !c.IsSaved() {
		if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
			return gormerr.Translate(err, emailConstraint)
		}
		return c.AssignID(dto.ID)
	}

	// created_at is immutable once stored.
	result := r.db.WithContext(ctx).Model(&CustomerDTO{}).
		Where("id = ?", dto.ID).
		Select("*").Omit("id", "created_at").
		Updates(&dto)
	if result.Error != nil {
		return gormerr.Translate(result.Error, emailConstraint)
	}
	if result.RowsAffected == 0 {
		return gormerr.NotFound(gorm.ErrRecordNotFound, "customer", dto.ID)
	}
	return nil
}

// Get retrieves a customer by id.
func (r *GormCustomerRepository) Get(ctx context.Context, id int64) (*customer.Customer, error) {
	var dto CustomerDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id).Error; err != nil {
		return nil, gormerr.NotFound(err, "customer", id)
	}
	return toDomain(dto)
}

// Remove deletes the customer row. Orders go with it through ON DELETE CASCADE.
func (r *GormCustomerRepository) Remove(ctx context.Context, c *customer.Customer) error {
	if !c.IsSaved() {
		return gormerr.NotFound(gorm.ErrRecordNotFound, "customer", c.ID())
	}

	result := r.db.WithContext(ctx).Delete(&CustomerDTO{}, "id = ?", c.ID())
	if result.Error != nil {
		return gormerr.Translate(result.Error, "orders.customer_id")
	}
	if result.RowsAffected == 0 {
		return gormerr.NotFound(gorm.ErrRecordNotFound, "customer", c.ID())
	}

	c.MarkRemoved()
	return nil
}

func (r *GormCustomerRepository) FindAll(ctx context.Context) ([]*customer.Customer, error) {
	return r.find(r.db.WithContext(ctx))
}

// FindByEmail matches the email case-insensitively.
func (r *GormCustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var dto CustomerDTO
	if err := r.db.WithContext(ctx).First(&dto, "LOWER(email) = ?", email).Error; err != nil {
		return nil, gormerr.NotFound(err, "customer email", email)
	}
	return toDomain(dto)
}

// Search filters with case-insensitive substrings on name, surname and city,
// and an exact status. Empty criteria return every customer.
//
// SQLite only folds ASCII case, so the SQL filter narrows ASCII text filters
// only and every row is then checked with criteria.Matches.
func (r *GormCustomerRepository) Search(ctx context.Context, criteria customer.SearchCriteria) ([]*customer.Customer, error) {
	query := r.db.WithContext(ctx)
	query = whereContains(query, "name", criteria.Name)
	query = whereContains(query, "surname", criteria.Surname)
	query = whereContains(query, "city", criteria.City)
	if criteria.Status != customer.Unknown {
		query = query.Where("status = ?", criteria.Status.String())
	}

	found, err := r.find(query)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(found, func(c *customer.Customer) bool {
		return !criteria.Matches(c)
	}), nil
}

func (r *GormCustomerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&CustomerDTO{}).Count(&count).Error
	return count, err
}

// CountByStatus returns a count for every status, zero included.
func (r *GormCustomerRepository) CountByStatus(ctx context.Context) (map[customer.Status]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&CustomerDTO{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[customer.Status]int64, len(customer.Statuses()))
	for _, s := range customer.Statuses() {
		counts[s] = 0
	}
	for _, row := range rows {
		s, err := customer.ParseStatus(row.Status)
		if err != nil {
			return nil, err
		}
		counts[s] = row.Total
	}
	return counts, nil
}

func (r *GormCustomerRepository) CountByCity(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		City  string
		Total int64
	}
	err := r.db.WithContext(ctx).Model(&CustomerDTO{}).
		Select("city, COUNT(*) AS total").
		Group("city").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.City] = row.Total
	}
	return counts, nil
}

// FindCreatedSince returns customers created on or after since, newest first.
func (r *GormCustomerRepository) FindCreatedSince(ctx context.Context, since kernel.Date) ([]*customer.Customer, error) {
	var dtos []CustomerDTO
	err := r.db.WithContext(ctx).
		Where("created_at >= ?", since).
		Order("created_at DESC").Order("id DESC").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

func (r *GormCustomerRepository) find(query *gorm.DB) ([]*customer.Customer, error) {
	var dtos []CustomerDTO
	if err := query.Order("name").Order("surname").Order("id").Find(&dtos).Error; err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func whereContains(query *gorm.DB, column, value string) *gorm.DB {
	value = strings.TrimSpace(value)
	if value == "" || !isASCII(value) {
		return query
	}
	pattern := "%" + likeEscaper.Replace(strings.ToLower(value)) + "%"
	return query.Where("LOWER("+column+") LIKE ? ESCAPE '\\'", pattern)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Package ports defines repository interfaces for the customer and order domains.
// These interfaces establish contracts between the domain layer and infrastructure,
// enabling dependency inversion and testability.
package ports

import (
	"context"

	"logistics/internal/core/domain/model/customer"
	"logistics/internal/core/domain/model/kernel"
)

// CustomerRepository defines the persistence contract for customer entities.
type CustomerRepository interface {
	// Save validates the customer, then inserts it when unsaved (assigning the
	// generated id) or updates the row with the same id. Duplicate emails are
	// reported as *errs.ConstraintViolationError.
	Save(ctx context.Context, c *customer.Customer) error

	// Get loads a customer by id. A missing row is *errs.ObjectNotFoundError.
	Get(ctx context.Context, id int64) (*customer.Customer, error)

	// Remove deletes the row and resets the entity id to customer.UnsavedID.
	// Orders of the customer are removed by the foreign key cascade.
	Remove(ctx context.Context, c *customer.Customer) error

	// FindAll returns every customer ordered by name, then surname.
	FindAll(ctx context.Context) ([]*customer.Customer, error)

	// FindByEmail matches case-insensitively. A miss is *errs.ObjectNotFoundError.
	FindByEmail(ctx context.Context, email string) (*customer.Customer, error)

	// Search applies the criteria with AND semantics, ordered like FindAll.
	Search(ctx context.Context, criteria customer.SearchCriteria) ([]*customer.Customer, error)

	Count(ctx context.Context) (int64, error)
	CountByStatus(ctx context.Context) (map[customer.Status]int64, error)
	CountByCity(ctx context.Context) (map[string]int64, error)

	// FindCreatedSince returns customers created on or after since, newest first.
	FindCreatedSince(ctx context.Context, since kernel.Date) ([]*customer.Customer, error)
}

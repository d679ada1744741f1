package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"logistics/internal/core/application/events"
	"logistics/internal/core/domain/model/customer"
	"logistics/internal/core/domain/validation"
	"logistics/internal/core/ports"
	"logistics/internal/pkg/errs"
)

const emailConstraint = "customers.email"

// CustomerController exposes the customer operations.
type CustomerController struct {
	base
	uowFactory ports.UnitOfWorkFactory
	cache      *listCache[*customer.Customer]
}

func NewCustomerController(
	uowFactory ports.UnitOfWorkFactory,
	publisher Publisher,
	logger *slog.Logger,
	clock Clock,
) (*CustomerController, error) {
	if uowFactory == nil {
		return nil, errs.NewValueIsRequiredError("uowFactory")
	}
	if publisher == nil {
		return nil, errs.NewValueIsRequiredError("publisher")
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}

	return &CustomerController{
		base:       newBase("customers", events.EntityCustomer, publisher, logger, clock),
		uowFactory: uowFactory,
		cache:      newListCache("customers", (*customer.Customer).Clone),
	}, nil
}

func (c *CustomerController) repositories() (ports.CustomerRepository, ports.OrderRepository) {
	uow := c.uowFactory.Create()
	return uow.CustomerRepository(), uow.OrderRepository()
}

// CreateCustomer validates contact, checks the email is free and stores a new
// active customer created today.
func (c *CustomerController) CreateCustomer(ctx context.Context, contact customer.Contact) (*customer.Customer, error) {
	return command(ctx, c.base, "CreateCustomer", 0, func() (*customer.Customer, error) {
		if violations := validation.ValidateCustomer(customerFields(contact)); len(violations) > 0 {
			return nil, errs.NewValidationError(violations)
		}

		created, err := customer.NewCustomer(contact, c.today())
		if err != nil {
			return nil, err
		}

		customers, _ := c.repositories()
		if err := c.ensureEmailFree(ctx, customers, created.Email(), customer.UnsavedID); err != nil {
			return nil, err
		}
		if err := customers.Save(ctx, created); err != nil {
			return nil, err
		}

		c.cache.Invalidate()
		c.publish(ctx, events.CustomerCreated, created.ID(), created.Status().String(), created.FullName())
		return created.Clone(), nil
	})
}

// UpdateCustomer validates and stores the state of an existing customer. The
// email must not belong to another customer.
func (c *CustomerController) UpdateCustomer(ctx context.Context, updated *customer.Customer) error {
	id := int64(0)
	if updated != nil {
		id = updated.ID()
	}

	_, err := command(ctx, c.base, "UpdateCustomer", id, func() (struct{}, error) {
		if updated == nil {
			return struct{}{}, errs.NewValueIsRequiredError("customer")
		}
		if !updated.IsSaved() {
			return struct{}{}, errs.NewValueIsInvalidErrorWithCause("customer id is invalid",
				errors.New("customer was never saved"))
		}
		if violations := validation.ValidateCustomer(customerFields(updated.Contact())); len(violations) > 0 {
			return struct{}{}, errs.NewValidationError(violations)
		}
		if err := updated.Validate(); err != nil {
			return struct{}{}, err
		}

		customers, _ := c.repositories()
		if err := c.ensureEmailFree(ctx, customers, updated.Email(), updated.ID()); err != nil {
			return struct{}{}, err
		}
		if err := customers.Save(ctx, updated); err != nil {
			return struct{}{}, err
		}

		c.cache.Invalidate()
		c.publish(ctx, events.CustomerUpdated, updated.ID(), updated.Status().String(), "")
		return struct{}{}, nil
	})
	return err
}

// DeleteCustomer removes a customer without open orders. Its closed orders are
// removed with it.
func (c *CustomerController) DeleteCustomer(ctx context.Context, id int64) error {
	_, err := command(ctx, c.base, "DeleteCustomer", id, func() (struct{}, error) {
		customers, orders := c.repositories()

		existing, err := customers.Get(ctx, id)
		if err != nil {
			return struct{}{}, err
		}
		active, err := orders.CountActiveByCustomer(ctx, id)
		if err != nil {
			return struct{}{}, err
		}
		if active > 0 {
			return struct{}{}, errs.NewOperationNotAllowedError("delete customer",
				fmt.Sprintf("customer %d has %d order(s) in progress", id, active))
		}
		if err := customers.Remove(ctx, existing); err != nil {
			return struct{}{}, err
		}

		c.cache.Invalidate()
		c.publish(ctx, events.CustomerDeleted, id, "", "")
		return struct{}{}, nil
	})
	return err
}

// CanDeleteCustomer reports whether the customer has no Pending, Confirmed,
// Preparing or InTransit order.
func (c *CustomerController) CanDeleteCustomer(ctx context.Context, id int64) (bool, error) {
	return query(ctx, c.base, "CanDeleteCustomer", func() (bool, error) {
		_, orders := c.repositories()
		active, err := orders.CountActiveByCustomer(ctx, id)
		if err != nil {
			return false, err
		}
		return active == 0, nil
	})
}

func (c *CustomerController) GetCustomer(ctx context.Context, id int64) (*customer.Customer, error) {
	return query(ctx, c.base, "GetCustomer", func() (*customer.Customer, error) {
		customers, _ := c.repositories()
		return customers.Get(ctx, id)
	})
}

// GetAllCustomers serves the list from the cache until the next write.
func (c *CustomerController) GetAllCustomers(ctx context.Context) ([]*customer.Customer, error) {
	return query(ctx, c.base, "GetAllCustomers", func() ([]*customer.Customer, error) {
		if cached, ok := c.cache.Get(); ok {
			return cached, nil
		}

		customers, _ := c.repositories()
		all, err := customers.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		c.cache.Set(all)
		return all, nil
	})
}

func (c *CustomerController) SearchCustomers(ctx context.Context, criteria customer.SearchCriteria) ([]*customer.Customer, error) {
	return query(ctx, c.base, "SearchCustomers", func() ([]*customer.Customer, error) {
		if criteria.Status != customer.Unknown {
			if err := criteria.Status.Validate(); err != nil {
				return nil, err
			}
		}
		customers, _ := c.repositories()
		return customers.Search(ctx, criteria)
	})
}

// SortCustomers sorts a copy of list; list itself is left untouched.
func (c *CustomerController) SortCustomers(list []*customer.Customer, field customer.SortField, ascending bool) []*customer.Customer {
	return customer.Sort(list, field, ascending)
}

func (c *CustomerController) SearchAndSortCustomers(
	ctx context.Context,
	criteria customer.SearchCriteria,
	field customer.SortField,
	ascending bool,
) ([]*customer.Customer, error) {
	found, err := c.SearchCustomers(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return customer.Sort(found, field, ascending), nil
}

func (c *CustomerController) TotalCustomers(ctx context.Context) (int64, error) {
	return query(ctx, c.base, "TotalCustomers", func() (int64, error) {
		customers, _ := c.repositories()
		return customers.Count(ctx)
	})
}

func (c *CustomerController) CustomersByStatus(ctx context.Context) (map[customer.Status]int64, error) {
	return query(ctx, c.base, "CustomersByStatus", func() (map[customer.Status]int64, error) {
		customers, _ := c.repositories()
		return customers.CountByStatus(ctx)
	})
}

func (c *CustomerController) CustomersByCity(ctx context.Context) (map[string]int64, error) {
	return query(ctx, c.base, "CustomersByCity", func() (map[string]int64, error) {
		customers, _ := c.repositories()
		return customers.CountByCity(ctx)
	})
}

// RecentCustomers returns customers created in the last days days, today
// included, newest first.
func (c *CustomerController) RecentCustomers(ctx context.Context, days int) ([]*customer.Customer, error) {
	return query(ctx, c.base, "RecentCustomers", func() ([]*customer.Customer, error) {
		if days < 0 {
			return nil, errs.NewValueIsOutOfRangeError("days", days, 0, "unbounded")
		}
		customers, _ := c.repositories()
		return customers.FindCreatedSince(ctx, c.today().AddDays(-days))
	})
}

// SetCustomerActive switches a customer between Active and Inactive.
func (c *CustomerController) SetCustomerActive(ctx context.Context, id int64, active bool) error {
	status := customer.Inactive
	if active {
		status = customer.Active
	}
	return c.changeStatus(ctx, "SetCustomerActive", id, status, "")
}

// SuspendCustomer suspends a customer. The reason travels with the update
// notification.
func (c *CustomerController) SuspendCustomer(ctx context.Context, id int64, reason string) error {
	return c.changeStatus(ctx, "SuspendCustomer", id, customer.Suspended, strings.TrimSpace(reason))
}

func (c *CustomerController) changeStatus(ctx context.Context, operation string, id int64, status customer.Status, message string) error {
	_, err := command(ctx, c.base, operation, id, func() (struct{}, error) {
		customers, _ := c.repositories()

		existing, err := customers.Get(ctx, id)
		if err != nil {
			return struct{}{}, err
		}
		if existing.Status() == status {
			return struct{}{}, nil
		}
		if err := existing.SetStatus(status); err != nil {
			return struct{}{}, err
		}
		if err := customers.Save(ctx, existing); err != nil {
			return struct{}{}, err
		}

		c.cache.Invalidate()
		c.publish(ctx, events.CustomerUpdated, id, status.String(), message)
		return struct{}{}, nil
	})
	return err
}

// CustomerOrdersCount counts every order of the customer, whatever its status.
func (c *CustomerController) CustomerOrdersCount(ctx context.Context, id int64) (int64, error) {
	return query(ctx, c.base, "CustomerOrdersCount", func() (int64, error) {
		_, orders := c.repositories()
		return orders.CountByCustomer(ctx, id)
	})
}

// IsEmailInUse reports whether a customer other than excludeID owns email.
// Pass customer.UnsavedID to check against every customer.
func (c *CustomerController) IsEmailInUse(ctx context.Context, email string, excludeID int64) (bool, error) {
	return query(ctx, c.base, "IsEmailInUse", func() (bool, error) {
		customers, _ := c.repositories()
		return emailInUse(ctx, customers, email, excludeID)
	})
}

func (c *CustomerController) ensureEmailFree(ctx context.Context, customers ports.CustomerRepository, email string, excludeID int64) error {
	inUse, err := emailInUse(ctx, customers, email, excludeID)
	if err != nil {
		return err
	}
	if inUse {
		return errs.NewConstraintViolationErrorWithCause(emailConstraint,
			fmt.Errorf("email %q is already used by another customer", email))
	}
	return nil
}

func emailInUse(ctx context.Context, customers ports.CustomerRepository, email string, excludeID int64) (bool, error) {
	owner, err := customers.FindByEmail(ctx, email)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return owner.ID() != excludeID, nil
}

func customerFields(contact customer.Contact) validation.CustomerFields {
	return validation.CustomerFields{
		Name:       contact.Name,
		Surname:    contact.Surname,
		Email:      contact.Email,
		Phone:      contact.Phone,
		Address:    contact.Address,
		City:       contact.City,
		PostalCode: contact.PostalCode,
	}
}

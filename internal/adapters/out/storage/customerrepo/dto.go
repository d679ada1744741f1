// Package customerrepo provides data transfer objects and mapping functions for customer persistence.
// This package implements the repository pattern for the customer entity, handling
// the conversion between domain entities and database representations.
package customerrepo

import (
	"logistics/internal/core/domain/model/customer"
	"logistics/internal/core/domain/model/kernel"
)

// CustomerDTO represents the database structure for persisting customers.
// Status is stored as its code ("ACTIVE", ...) so that both engines can
// enforce it with a CHECK constraint.
type CustomerDTO struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	Name       string
	Surname    string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
	CreatedOn  kernel.Date `gorm:"column:created_at"`
	Status     string
}

// TableName specifies the database table name for customer entities.
func (CustomerDTO) TableName() string {
	return "customers"
}

func fromDomain(c *customer.Customer) CustomerDTO {
	dto := CustomerDTO{
		Name:       c.Name(),
		Surname:    c.Surname(),
		Email:      c.Email(),
		Phone:      c.Phone(),
		Address:    c.Address(),
		City:       c.City(),
		PostalCode: c.PostalCode(),
		CreatedOn:  c.CreatedAt(),
		Status:     c.Status().String(),
	}
	if c.IsSaved() {
		dto.ID = c.ID()
	}
	return dto
}

// toDomain rebuilds the entity with RestoreCustomer so stored rows are
// re-validated on the way in.
func toDomain(dto CustomerDTO) (*customer.Customer, error) {
	status, err := customer.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	return customer.RestoreCustomer(dto.ID, customer.Contact{
		Name:       dto.Name,
		Surname:    dto.Surname,
		Email:      dto.Email,
		Phone:      dto.Phone,
		Address:    dto.Address,
		City:       dto.City,
		PostalCode: dto.PostalCode,
	}, dto.CreatedOn, status)
}

func toDomainList(dtos []CustomerDTO) ([]*customer.Customer, error) {
	customers := make([]*customer.Customer, 0, len(dtos))
	for _, dto := range dtos {
		c, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, nil
}

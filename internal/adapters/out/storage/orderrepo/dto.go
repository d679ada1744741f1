// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Status and priority are stored as their codes; dates as calendar days.
type OrderDTO struct {
	ID                  int64 `gorm:"primaryKey;autoIncrement"`
	CustomerID          int64
	OrderNumber         string
	OrderedAt           kernel.Date
	RequestedDeliveryAt kernel.Date
	DeliveredAt         kernel.Date
	DeliveryAddress     string
	DeliveryCity        string
	DeliveryPostalCode  string
	Status              string
	Priority            string
	WeightTotal         float64
	VolumeTotal         float64
	PriceTotal          decimal.Decimal
	Comments            string
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

func fromDomain(o *order.Order) OrderDTO {
	dto := OrderDTO{
		CustomerID:          o.CustomerID(),
		OrderNumber:         o.Number(),
		OrderedAt:           o.OrderedAt(),
		RequestedDeliveryAt: o.RequestedDeliveryAt(),
		DeliveredAt:         o.DeliveredAt(),
		DeliveryAddress:     o.DeliveryAddress(),
		DeliveryCity:        o.DeliveryCity(),
		DeliveryPostalCode:  o.DeliveryPostalCode(),
		Status:              o.Status().String(),
		Priority:            o.Priority().String(),
		WeightTotal:         o.WeightTotal(),
		VolumeTotal:         o.VolumeTotal(),
		PriceTotal:          o.PriceTotal(),
		Comments:            o.Comments(),
	}
	if o.IsSaved() {
		dto.ID = o.ID()
	}
	return dto
}

// toDomain converts a database DTO to an order domain aggregate using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	priority, err := order.ParsePriority(dto.Priority)
	if err != nil {
		return nil, err
	}

	return order.RestoreOrder(dto.ID, dto.OrderNumber, dto.CustomerID, dto.OrderedAt, dto.DeliveredAt, status,
		order.Details{
			RequestedDeliveryAt: dto.RequestedDeliveryAt,
			DeliveryAddress:     dto.DeliveryAddress,
			DeliveryCity:        dto.DeliveryCity,
			DeliveryPostalCode:  dto.DeliveryPostalCode,
			Priority:            priority,
			WeightTotal:         dto.WeightTotal,
			VolumeTotal:         dto.VolumeTotal,
			PriceTotal:          dto.PriceTotal,
			Comments:            dto.Comments,
		})
}

func toDomainList(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

package http

import (
	"logistics/internal/core/domain/model/customer"
	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type Customer struct {
	ID         int64       `json:"id"`
	Name       string      `json:"name"`
	Surname    string      `json:"surname"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	Address    string      `json:"address"`
	City       string      `json:"city"`
	PostalCode string      `json:"postal_code"`
	CreatedAt  kernel.Date `json:"created_at"`
	Status     string      `json:"status"`
}

type Order struct {
	ID                  int64           `json:"id"`
	Number              string          `json:"number"`
	CustomerID          int64           `json:"customer_id"`
	OrderedAt           kernel.Date     `json:"ordered_at"`
	RequestedDeliveryAt *kernel.Date    `json:"requested_delivery_at,omitempty"`
	DeliveredAt         *kernel.Date    `json:"delivered_at,omitempty"`
	DeliveryAddress     string          `json:"delivery_address"`
	DeliveryCity        string          `json:"delivery_city"`
	DeliveryPostalCode  string          `json:"delivery_postal_code"`
	Status              string          `json:"status"`
	Priority            string          `json:"priority"`
	WeightTotal         float64         `json:"weight_total"`
	VolumeTotal         float64         `json:"volume_total"`
	PriceTotal          decimal.Decimal `json:"price_total"`
	Comments            string          `json:"comments,omitempty"`
	Late                bool            `json:"late"`
}

type Statistics struct {
	Year                int              `json:"year"`
	Customers           int64            `json:"customers"`
	CustomersByStatus   map[string]int64 `json:"customers_by_status"`
	CustomersByCity     map[string]int64 `json:"customers_by_city"`
	Orders              int64            `json:"orders"`
	OrdersByStatus      map[string]int64 `json:"orders_by_status"`
	OrdersByPriority    map[string]int64 `json:"orders_by_priority"`
	TotalRevenue        decimal.Decimal  `json:"total_revenue"`
	AveragePrice        decimal.Decimal  `json:"average_price"`
	MonthlyOrders       [12]int64        `json:"monthly_orders"`
	AverageDeliveryDays float64          `json:"average_delivery_days"`
	LateOrders          int              `json:"late_orders"`
}

func customerResponse(c *customer.Customer) Customer {
	return Customer{
		ID:         c.ID(),
		Name:       c.Name(),
		Surname:    c.Surname(),
		Email:      c.Email(),
		Phone:      c.Phone(),
		Address:    c.Address(),
		City:       c.City(),
		PostalCode: c.PostalCode(),
		CreatedAt:  c.CreatedAt(),
		Status:     c.Status().String(),
	}
}

func customersResponse(list []*customer.Customer) []Customer {
	response := make([]Customer, len(list))
	for i, c := range list {
		response[i] = customerResponse(c)
	}
	return response
}

func (s *Server) orderResponse(o *order.Order) Order {
	return Order{
		ID:                  o.ID(),
		Number:              o.Number(),
		CustomerID:          o.CustomerID(),
		OrderedAt:           o.OrderedAt(),
		RequestedDeliveryAt: optionalDate(o.RequestedDeliveryAt()),
		DeliveredAt:         optionalDate(o.DeliveredAt()),
		DeliveryAddress:     o.DeliveryAddress(),
		DeliveryCity:        o.DeliveryCity(),
		DeliveryPostalCode:  o.DeliveryPostalCode(),
		Status:              o.Status().String(),
		Priority:            o.Priority().String(),
		WeightTotal:         o.WeightTotal(),
		VolumeTotal:         o.VolumeTotal(),
		PriceTotal:          o.PriceTotal(),
		Comments:            o.Comments(),
		Late:                o.IsLate(s.today()),
	}
}

func (s *Server) ordersResponse(list []*order.Order) []Order {
	response := make([]Order, len(list))
	for i, o := range list {
		response[i] = s.orderResponse(o)
	}
	return response
}

func optionalDate(d kernel.Date) *kernel.Date {
	if d.IsZero() {
		return nil
	}
	return &d
}

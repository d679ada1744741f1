package storage

import (
	"context"
	"errors"
	"fmt"

	"logistics/internal/core/domain/model/customer"
	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

type sampleOrder struct {
	customer  int // index into sampleCustomers
	ordered   int // days relative to today
	requested int // days relative to today
	status    order.Status
	details   order.Details
}

var sampleCustomers = []struct {
	contact customer.Contact
	status  customer.Status
}{
	{customer.Contact{Name: "Dupont", Surname: "Jean", Email: "jean.dupont@email.com", Phone: "0123456789",
		Address: "123 Rue de la Paix", City: "Paris", PostalCode: "75001"}, customer.Active},
	{customer.Contact{Name: "Martin", Surname: "Marie", Email: "marie.martin@email.com", Phone: "0234567890",
		Address: "456 Avenue des Champs", City: "Lyon", PostalCode: "69001"}, customer.Active},
	{customer.Contact{Name: "Bernard", Surname: "Pierre", Email: "pierre.bernard@email.com", Phone: "0345678901",
		Address: "789 Boulevard Saint-Michel", City: "Marseille", PostalCode: "13001"}, customer.Active},
	{customer.Contact{Name: "Dubois", Surname: "Sophie", Email: "sophie.dubois@email.com", Phone: "0456789012",
		Address: "321 Rue Victor Hugo", City: "Toulouse", PostalCode: "31000"}, customer.Active},
	{customer.Contact{Name: "Moreau", Surname: "Paul", Email: "paul.moreau@email.com", Phone: "0567890123",
		Address: "654 Place de la République", City: "Nice", PostalCode: "06000"}, customer.Inactive},
}

var sampleOrders = []sampleOrder{
	{0, 0, 2, order.Preparing, order.Details{
		DeliveryAddress: "123 Rue de la Paix", DeliveryCity: "Paris", DeliveryPostalCode: "75001",
		Priority: order.High, WeightTotal: 15.5, VolumeTotal: 0.8,
		PriceTotal: decimal.RequireFromString("89.99"), Comments: "Livraison urgente"}},
	{1, -1, 1, order.InTransit, order.Details{
		DeliveryAddress: "456 Avenue des Champs", DeliveryCity: "Lyon", DeliveryPostalCode: "69001",
		Priority: order.Normal, WeightTotal: 8.2, VolumeTotal: 0.4,
		PriceTotal: decimal.RequireFromString("45.50")}},
	{2, -2, 0, order.Delivered, order.Details{
		DeliveryAddress: "789 Boulevard Saint-Michel", DeliveryCity: "Marseille", DeliveryPostalCode: "13001",
		Priority: order.Low, WeightTotal: 22.1, VolumeTotal: 1.2,
		PriceTotal: decimal.RequireFromString("156.75"), Comments: "Livraison effectuée"}},
	{0, 0, 3, order.Confirmed, order.Details{
		DeliveryAddress: "987 Rue Neuve", DeliveryCity: "Paris", DeliveryPostalCode: "75002",
		Priority: order.Normal, WeightTotal: 5.8, VolumeTotal: 0.3,
		PriceTotal: decimal.RequireFromString("32.20"), Comments: "Deuxième commande"}},
	{3, -3, -1, order.Cancelled, order.Details{
		DeliveryAddress: "321 Rue Victor Hugo", DeliveryCity: "Toulouse", DeliveryPostalCode: "31000",
		Priority: order.Urgent, PriceTotal: decimal.Zero, Comments: "Commande annulée par le client"}},
}

// SeedSampleData fills an empty database with five customers and five orders,
// dated relative to today, in one transaction. It does nothing and returns
// false when customers already exist.
func (m *Manager) SeedSampleData(ctx context.Context, today kernel.Date) (seeded bool, err error) {
	uow, err := m.UnitOfWork()
	if err != nil {
		return false, err
	}

	count, err := uow.CustomerRepository().Count(ctx)
	if err != nil {
		return false, m.record(fmt.Errorf("count customers: %w", err))
	}
	if count > 0 {
		m.logger.InfoContext(ctx, "existing data found, sample data not inserted", "customers", count)
		return false, nil
	}

	if err := uow.Begin(ctx); err != nil {
		return false, m.record(err)
	}
	committed := false
	defer func() {
		if err != nil && !committed {
			err = errors.Join(err, uow.Rollback(ctx))
		}
		_ = m.record(err)
	}()

	customers := uow.CustomerRepository()
	ids := make([]int64, 0, len(sampleCustomers))
	for _, sample := range sampleCustomers {
		c, err := customer.NewCustomer(sample.contact, today)
		if err != nil {
			return false, err
		}
		if err := c.SetStatus(sample.status); err != nil {
			return false, err
		}
		if err := customers.Save(ctx, c); err != nil {
			return false, fmt.Errorf("insert sample customer %s: %w", sample.contact.Email, err)
		}
		ids = append(ids, c.ID())
	}

	orders := uow.OrderRepository()
	for i, sample := range sampleOrders {
		details := sample.details
		details.RequestedDeliveryAt = today.AddDays(sample.requested)

		o, err := order.NewOrder(ids[sample.customer], today.AddDays(sample.ordered), details)
		if err != nil {
			return false, err
		}
		if err := o.SetStatus(sample.status); err != nil {
			return false, err
		}
		if sample.status == order.Delivered {
			if err := o.SetDeliveredAt(today); err != nil {
				return false, err
			}
		}
		if err := orders.Save(ctx, o); err != nil {
			return false, fmt.Errorf("insert sample order %d: %w", i+1, err)
		}
	}

	committed = true
	if err := uow.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit sample data: %w", err)
	}

	m.logger.InfoContext(ctx, "sample data inserted",
		"customers", len(sampleCustomers), "orders", len(sampleOrders))
	return true, nil
}

package storage

import (
	"context"

	"logistics/internal/adapters/out/storage/customerrepo"
	"logistics/internal/adapters/out/storage/orderrepo"
	"logistics/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances on the manager's connection.
// Each business operation gets a fresh unit of work with its own transaction state.
type GormUnitOfWorkFactory struct {
	db      *gorm.DB
	numbers orderNumbers
}

// NewGormUnitOfWorkFactory creates a factory for db running on engine.
func NewGormUnitOfWorkFactory(db *gorm.DB, engine Engine) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db, numbers: orderNumbers{engine: engine}}
}

// Create produces a new UnitOfWork. Repositories taken before Begin run on
// the shared connection, one statement at a time.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:      f.db,
		numbers: f.numbers,
	}
}

// GormUnitOfWork coordinates one gorm transaction across the customer and
// order repositories.
//
// Example usage:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return fmt.Errorf("failed to begin transaction: %w", err)
//	}
//	if err := uow.CustomerRepository().Save(ctx, c); err != nil {
//	    _ = uow.Rollback(ctx)
//	    return err
//	}
//	if err := uow.OrderRepository().Save(ctx, o); err != nil {
//	    _ = uow.Rollback(ctx)
//	    return err
//	}
//	return uow.Commit(ctx)
type GormUnitOfWork struct {
	db      *gorm.DB
	tx      *gorm.DB
	numbers orderNumbers
}

// Begin starts a transaction. Calling it again while one is open is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	uow.tx = tx
	return nil
}

// Commit finalizes the open transaction. Returns gorm.ErrInvalidTransaction
// when none is open.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards the open transaction. Returns gorm.ErrInvalidTransaction
// when none is open.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

func (uow *GormUnitOfWork) CustomerRepository() ports.CustomerRepository {
	return customerrepo.NewGormCustomerRepository(uow.conn())
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow.numbers)
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

package ports

import (
	"context"
)

// UnitOfWorkFactory hands out a fresh UnitOfWork per operation. Controllers
// call Create for every operation and never share one between goroutines.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork groups the repositories over one storage handle.
//
// Without Begin, every repository call is its own autonomous statement on the
// shared connection; this is how controllers work. Between Begin and
// Commit/Rollback, repositories obtained from the unit run inside a single
// transaction; the sample-data seed uses this for all-or-nothing inserts.
// Repositories taken before Begin stay outside the transaction.
type UnitOfWork interface {
	// Begin opens a transaction. Calling it again while one is open is a no-op.
	Begin(ctx context.Context) error

	// Commit and Rollback end the open transaction and fail when none is open.
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	CustomerRepository() CustomerRepository
	OrderRepository() OrderRepository
}

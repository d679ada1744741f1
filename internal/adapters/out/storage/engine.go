// Package storage is the relational storage adapter of the logistics core.
//
// A Manager owns the single shared connection. It opens the primary engine
// (PostgreSQL) and, when that fails, reconfigures itself onto the embedded
// fallback engine (a SQLite file). Everything above the manager is written once
// against gorm; engine differences are confined to the Engine implementations:
// schema DDL, order number generation and the "already exists" detection used
// by the idempotent schema setup.
package storage

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Engine describes one relational engine the manager can run on.
type Engine interface {
	// Name is a short identifier used in logs and metrics ("postgres", "sqlite").
	Name() string

	// Dialector opens the gorm connection for this engine.
	Dialector() gorm.Dialector

	// SupportsSequences reports whether order numbers come from a database sequence.
	SupportsSequences() bool

	// SchemaStatements returns the idempotent DDL, in execution order.
	SchemaStatements() []string

	// NextOrderNumberSQL draws the next sequence value. Empty when
	// SupportsSequences is false.
	NextOrderNumberSQL() string

	// IsAlreadyExists reports whether err only says that a schema object exists.
	IsAlreadyExists(err error) bool
}

func quotedList(codes []string) string {
	quoted := make([]string, 0, len(codes))
	for _, c := range codes {
		quoted = append(quoted, fmt.Sprintf("'%s'", c))
	}
	return strings.Join(quoted, ", ")
}

func codesOf[T fmt.Stringer](values []T) []string {
	codes := make([]string, 0, len(values))
	for _, v := range values {
		codes = append(codes, v.String())
	}
	return codes
}

func mentionsAlreadyExists(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "already exists")
}

// indexStatements are shared by both engines; both accept CREATE INDEX IF NOT EXISTS.
func indexStatements() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_customers_email ON customers (email)",
		"CREATE INDEX IF NOT EXISTS idx_customers_name_surname ON customers (name, surname)",
		"CREATE INDEX IF NOT EXISTS idx_customers_city ON customers (city)",
		"CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders (customer_id)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_ordered_at ON orders (ordered_at)",
		"CREATE INDEX IF NOT EXISTS idx_orders_number ON orders (order_number)",
		"CREATE INDEX IF NOT EXISTS idx_orders_priority ON orders (priority)",
		"CREATE INDEX IF NOT EXISTS idx_orders_delivery_city ON orders (delivery_city)",
	}
}

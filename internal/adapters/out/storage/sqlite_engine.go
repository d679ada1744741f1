package storage

import (
	"fmt"
	"net/url"

	"logistics/internal/core/domain/model/customer"
	"logistics/internal/core/domain/model/order"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DefaultSQLitePath is the fallback database file used when none is configured.
const DefaultSQLitePath = "logistics.db"

// SQLiteEngine is the embedded fallback engine. It has no sequences or
// triggers; order numbers are computed by the repository.
type SQLiteEngine struct {
	path string
}

func NewSQLiteEngine(path string) *SQLiteEngine {
	if path == "" {
		path = DefaultSQLitePath
	}
	return &SQLiteEngine{path: path}
}

func (e *SQLiteEngine) Name() string {
	return "sqlite"
}

// Path is the database file.
func (e *SQLiteEngine) Path() string {
	return e.path
}

func (e *SQLiteEngine) Dialector() gorm.Dialector {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", "5000")
	return sqlite.Open(fmt.Sprintf("file:%s?%s", e.path, params.Encode()))
}

func (e *SQLiteEngine) SupportsSequences() bool {
	return false
}

func (e *SQLiteEngine) NextOrderNumberSQL() string {
	return ""
}

func (e *SQLiteEngine) IsAlreadyExists(err error) bool {
	return mentionsAlreadyExists(err)
}

func (e *SQLiteEngine) SchemaStatements() []string {
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS customers (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT NOT NULL,
			surname     TEXT NOT NULL,
			email       TEXT NOT NULL UNIQUE COLLATE NOCASE,
			phone       TEXT NOT NULL,
			address     TEXT NOT NULL,
			city        TEXT NOT NULL,
			postal_code TEXT NOT NULL,
			created_at  TEXT NOT NULL DEFAULT (date('now')),
			status      TEXT NOT NULL DEFAULT 'ACTIVE' CHECK (status IN (%s))
		)`, quotedList(codesOf(customer.Statuses()))),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS orders (
			id                    INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id           INTEGER NOT NULL REFERENCES customers (id) ON DELETE CASCADE,
			order_number          TEXT    NOT NULL UNIQUE,
			ordered_at            TEXT    NOT NULL DEFAULT (date('now')),
			requested_delivery_at TEXT,
			delivered_at          TEXT,
			delivery_address      TEXT    NOT NULL,
			delivery_city         TEXT    NOT NULL,
			delivery_postal_code  TEXT    NOT NULL,
			status                TEXT    NOT NULL DEFAULT 'PENDING' CHECK (status IN (%s)),
			priority              TEXT    NOT NULL DEFAULT 'NORMAL' CHECK (priority IN (%s)),
			weight_total          REAL    NOT NULL DEFAULT 0 CHECK (weight_total >= 0),
			volume_total          REAL    NOT NULL DEFAULT 0 CHECK (volume_total >= 0),
			price_total           NUMERIC NOT NULL DEFAULT 0 CHECK (price_total >= 0),
			comments              TEXT    NOT NULL DEFAULT ''
		)`, quotedList(codesOf(order.Statuses())), quotedList(codesOf(order.Priorities()))),
	}
	return append(statements, indexStatements()...)
}

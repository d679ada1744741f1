package storage

import (
	"errors"
	"fmt"

	"logistics/internal/core/domain/model/customer"
	"logistics/internal/core/domain/model/order"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const orderNumberSequence = "order_number_seq"

// PostgreSQL error codes treated as "object already exists".
var pgAlreadyExistsCodes = map[string]struct{}{
	"42P07": {}, // duplicate_table
	"42710": {}, // duplicate_object
	"42723": {}, // duplicate_function
}

// PostgresEngine is the primary engine. Order numbers are drawn from a
// sequence; a BEFORE INSERT trigger fills the number for rows inserted
// without one.
type PostgresEngine struct {
	dsn string
}

func NewPostgresEngine(dsn string) *PostgresEngine {
	return &PostgresEngine{dsn: dsn}
}

func (e *PostgresEngine) Name() string {
	return "postgres"
}

func (e *PostgresEngine) Dialector() gorm.Dialector {
	return postgres.Open(e.dsn)
}

func (e *PostgresEngine) SupportsSequences() bool {
	return true
}

func (e *PostgresEngine) NextOrderNumberSQL() string {
	return fmt.Sprintf("SELECT nextval('%s')", orderNumberSequence)
}

func (e *PostgresEngine) IsAlreadyExists(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := pgAlreadyExistsCodes[pgErr.Code]
		return ok
	}
	return mentionsAlreadyExists(err)
}

func (e *PostgresEngine) SchemaStatements() []string {
	statements := []string{
		fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s START WITH 1000 INCREMENT BY 1", orderNumberSequence),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS customers (
			id          BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
			name        VARCHAR(100) NOT NULL,
			surname     VARCHAR(100) NOT NULL,
			email       VARCHAR(150) NOT NULL UNIQUE,
			phone       VARCHAR(20)  NOT NULL,
			address     VARCHAR(500) NOT NULL,
			city        VARCHAR(100) NOT NULL,
			postal_code VARCHAR(10)  NOT NULL,
			created_at  DATE         NOT NULL DEFAULT CURRENT_DATE,
			status      VARCHAR(20)  NOT NULL DEFAULT 'ACTIVE' CHECK (status IN (%s))
		)`, quotedList(codesOf(customer.Statuses()))),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS orders (
			id                    BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
			customer_id           BIGINT        NOT NULL REFERENCES customers (id) ON DELETE CASCADE,
			order_number          VARCHAR(20)   NOT NULL UNIQUE,
			ordered_at            DATE          NOT NULL DEFAULT CURRENT_DATE,
			requested_delivery_at DATE,
			delivered_at          DATE,
			delivery_address      VARCHAR(500)  NOT NULL,
			delivery_city         VARCHAR(100)  NOT NULL,
			delivery_postal_code  VARCHAR(10)   NOT NULL,
			status                VARCHAR(20)   NOT NULL DEFAULT 'PENDING' CHECK (status IN (%s)),
			priority              VARCHAR(20)   NOT NULL DEFAULT 'NORMAL' CHECK (priority IN (%s)),
			weight_total          DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (weight_total >= 0),
			volume_total          DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (volume_total >= 0),
			price_total           NUMERIC(12,3) NOT NULL DEFAULT 0 CHECK (price_total >= 0),
			comments              TEXT          NOT NULL DEFAULT ''
		)`, quotedList(codesOf(order.Statuses())), quotedList(codesOf(order.Priorities()))),
		fmt.Sprintf(`CREATE OR REPLACE FUNCTION fill_order_number() RETURNS trigger AS $$
		BEGIN
			IF NEW.order_number IS NULL OR NEW.order_number = '' THEN
				NEW.order_number := 'CMD' || LPAD(nextval('%s')::text, 6, '0');
			END IF;
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql`, orderNumberSequence),
		`CREATE OR REPLACE TRIGGER trg_order_number
			BEFORE INSERT ON orders
			FOR EACH ROW EXECUTE FUNCTION fill_order_number()`,
	}
	return append(statements, indexStatements()...)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config is read from the environment (optionally from .env). Without a
// database host the application runs on the embedded SQLite file only.
type Config struct {
	HTTPPort   string `validate:"required,numeric"`
	DBHost     string
	DBPort     string `validate:"omitempty,numeric"`
	DBUser     string `validate:"required_with=DBHost"`
	DBPassword string
	DBName     string `validate:"required_with=DBHost"`
	DBSslMode  string `validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	SQLitePath string `validate:"required"`

	SeedSampleData bool
	LogLevel       string `validate:"omitempty,oneof=debug info warn error"`

	KafkaBrokers []string `validate:"dive,hostname_port"`
	KafkaTopic   string   `validate:"required_with=KafkaBrokers"`

	LateOrdersSchedule   string
	StorageProbeSchedule string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// PrimaryDSN builds the PostgreSQL connection string, or "" when no database
// host is configured.
func (c Config) PrimaryDSN() string {
	if strings.TrimSpace(c.DBHost) == "" {
		return ""
	}

	port := c.DBPort
	if port == "" {
		port = "5432"
	}
	sslMode := c.DBSslMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s connect_timeout=5",
		c.DBHost, port, c.DBUser, c.DBPassword, c.DBName, sslMode)
}

// KafkaEnabled reports whether change notifications are forwarded.
func (c Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

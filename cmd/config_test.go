package cmd_test

import (
	"testing"

	"logistics/cmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() cmd.Config {
	return cmd.Config{
		HTTPPort:   "8082",
		SQLitePath: "logistics.db",
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("should accept a SQLite only setup", func(t *testing.T) {
		cfg := validConfig()

		require.NoError(t, cfg.Validate())
		assert.Empty(t, cfg.PrimaryDSN())
		assert.False(t, cfg.KafkaEnabled())
	})

	t.Run("should require credentials with a database host", func(t *testing.T) {
		cfg := validConfig()
		cfg.DBHost = "localhost"

		assert.Error(t, cfg.Validate())

		cfg.DBUser, cfg.DBName = "logistics", "logistics"
		assert.NoError(t, cfg.Validate())
	})

	t.Run("should reject bad values", func(t *testing.T) {
		for name, mutate := range map[string]func(*cmd.Config){
			"port":      func(c *cmd.Config) { c.HTTPPort = "http" },
			"sslmode":   func(c *cmd.Config) { c.DBSslMode = "sometimes" },
			"log level": func(c *cmd.Config) { c.LogLevel = "verbose" },
			"broker":    func(c *cmd.Config) { c.KafkaBrokers = []string{"no-port"}; c.KafkaTopic = "t" },
			"topic":     func(c *cmd.Config) { c.KafkaBrokers = []string{"localhost:9092"} },
			"sqlite":    func(c *cmd.Config) { c.SQLitePath = "" },
		} {
			t.Run(name, func(t *testing.T) {
				cfg := validConfig()
				mutate(&cfg)
				assert.Error(t, cfg.Validate())
			})
		}
	})
}

func TestConfig_PrimaryDSN(t *testing.T) {
	cfg := validConfig()
	cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName = "db", "u", "p", "logistics"

	assert.Equal(t,
		"host=db port=5432 user=u password=p dbname=logistics sslmode=disable connect_timeout=5",
		cfg.PrimaryDSN())
}

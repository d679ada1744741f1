package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"logistics/cmd"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load(".env")

	configs := getConfigs()
	if err := configs.Validate(); err != nil {
		log.Fatal(err)
	}

	logger := newLogger(configs.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, configs, logger)
	stop()
	if err != nil {
		log.Fatal(err)
	}
}

// run owns every resource it opens and releases them before returning, so
// the caller may exit on the returned error.
func run(ctx context.Context, configs cmd.Config, logger *slog.Logger) error {
	app, err := cmd.NewCompositionRoot(ctx, configs, logger)
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("failed to close", "error", err)
		}
	}()

	jobManager := app.CreateJobManager()
	if err := jobManager.StartAll(); err != nil {
		return fmt.Errorf("failed to start jobs: %w", err)
	}
	defer jobManager.StopAll()

	return startWebServer(ctx, app, configs.HTTPPort, logger)
}

func getConfigs() cmd.Config {
	return cmd.Config{
		HTTPPort:             env("HTTP_PORT", "8082"),
		DBHost:               env("DB_HOST", ""),
		DBPort:               env("DB_PORT", "5432"),
		DBUser:               env("DB_USER", ""),
		DBPassword:           env("DB_PASSWORD", ""),
		DBName:               env("DB_NAME", ""),
		DBSslMode:            env("DB_SSLMODE", "disable"),
		SQLitePath:           env("SQLITE_PATH", "logistics.db"),
		SeedSampleData:       envBool("SEED_SAMPLE_DATA"),
		LogLevel:             env("LOG_LEVEL", "info"),
		KafkaBrokers:         envList("KAFKA_BROKERS"),
		KafkaTopic:           env("KAFKA_TOPIC", ""),
		LateOrdersSchedule:   env("LATE_ORDERS_SCHEDULE", ""),
		StorageProbeSchedule: env("STORAGE_PROBE_SCHEDULE", ""),
	}
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func envBool(key string) bool {
	v, err := strconv.ParseBool(env(key, "false"))
	return err == nil && v
}

func envList(key string) []string {
	raw := env(key, "")
	if raw == "" {
		return nil
	}
	var list []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}

func startWebServer(ctx context.Context, app *cmd.CompositionRoot, port string, logger *slog.Logger) error {
	server, err := app.CreateHTTPServer()
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	server.Register(e)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("http server listening", "port", port)
	if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

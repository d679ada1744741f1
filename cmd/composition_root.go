package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	httpapi "logistics/internal/adapters/in/http"
	"logistics/internal/adapters/out/kafka"
	"logistics/internal/adapters/out/storage"
	"logistics/internal/core/application/controllers"
	"logistics/internal/core/application/events"
	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/jobs"
)

// CompositionRoot owns the long-lived components and wires them together.
type CompositionRoot struct {
	configs   Config
	logger    *slog.Logger
	clock     controllers.Clock
	storage   *storage.Manager
	bus       *events.Bus
	forwarder *kafka.Forwarder
	customers *controllers.CustomerController
	orders    *controllers.OrderController
}

// NewCompositionRoot connects storage (primary, then fallback), creates the
// schema, optionally seeds sample data and builds the controllers.
func NewCompositionRoot(ctx context.Context, configs Config, logger *slog.Logger) (*CompositionRoot, error) {
	root := &CompositionRoot{
		configs: configs,
		logger:  logger,
		clock:   time.Now,
		bus:     events.NewBus(),
	}

	root.storage = storage.NewManager(storage.Config{
		PrimaryDSN:   configs.PrimaryDSN(),
		FallbackPath: configs.SQLitePath,
	}, logger)
	if err := root.storage.Connect(ctx); err != nil {
		return nil, err
	}
	if err := root.storage.EnsureSchema(ctx); err != nil {
		return nil, errors.Join(err, root.storage.Close())
	}
	if configs.SeedSampleData {
		if _, err := root.storage.SeedSampleData(ctx, kernel.DateOf(root.clock())); err != nil {
			return nil, errors.Join(fmt.Errorf("seed sample data: %w", err), root.storage.Close())
		}
	}

	if configs.KafkaEnabled() {
		forwarder, err := kafka.NewForwarder(kafka.NewWriter(configs.KafkaBrokers, configs.KafkaTopic), 0, logger)
		if err != nil {
			return nil, errors.Join(err, root.storage.Close())
		}
		root.forwarder = forwarder
		root.bus.Subscribe(forwarder.Handle)
	}

	if err := root.buildControllers(); err != nil {
		return nil, errors.Join(err, root.Close())
	}
	return root, nil
}

func (c *CompositionRoot) buildControllers() error {
	factory, err := c.storage.UnitOfWorkFactory()
	if err != nil {
		return err
	}

	if c.customers, err = controllers.NewCustomerController(factory, c.bus, c.logger, c.clock); err != nil {
		return err
	}
	if c.orders, err = controllers.NewOrderController(factory, c.bus, c.logger, c.clock); err != nil {
		return err
	}
	c.bus.Subscribe(c.orders.HandleEvent)
	return nil
}

func (c *CompositionRoot) CustomerController() *controllers.CustomerController {
	return c.customers
}

func (c *CompositionRoot) OrderController() *controllers.OrderController {
	return c.orders
}

// Events exposes the bus for additional subscribers.
func (c *CompositionRoot) Events() *events.Bus {
	return c.bus
}

func (c *CompositionRoot) CreateHTTPServer() (*httpapi.Server, error) {
	return httpapi.NewServer(c.customers, c.orders, c.storage, func() kernel.Date {
		return kernel.DateOf(c.clock())
	})
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.orders, c.storage, jobs.Schedules{
		LateOrders:   c.configs.LateOrdersSchedule,
		StorageProbe: c.configs.StorageProbeSchedule,
	}, c.logger)
}

// Close flushes pending notifications and releases storage.
func (c *CompositionRoot) Close() error {
	var err error
	if c.forwarder != nil {
		err = c.forwarder.Close()
	}
	return errors.Join(err, c.storage.Close())
}

package jobs

import (
	"context"
	"log/slog"

	"logistics/internal/core/domain/model/order"

	"github.com/robfig/cron/v3"
)

// DefaultLateOrdersSchedule runs the scan at the start of every hour.
const DefaultLateOrdersSchedule = "0 0 * * * *"

// LateOrdersScanner lists open orders past their requested delivery date.
// The order controller implements it and refreshes the late-orders gauge.
type LateOrdersScanner interface {
	LateOrders(ctx context.Context) ([]*order.Order, error)
}

// LateOrdersJob periodically scans for late orders and logs them.
type LateOrdersJob struct {
	scanner  LateOrdersScanner
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewLateOrdersJob creates the job. An empty schedule selects
// DefaultLateOrdersSchedule; schedules use six fields, seconds first.
func NewLateOrdersJob(scanner LateOrdersScanner, schedule string, logger *slog.Logger) *LateOrdersJob {
	if schedule == "" {
		schedule = DefaultLateOrdersSchedule
	}
	return &LateOrdersJob{
		scanner:  scanner,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "late_orders_job"),
	}
}

func (j *LateOrdersJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Late orders job started", "schedule", j.schedule)
	return nil
}

// Run performs a single scan and returns the number of late orders found.
func (j *LateOrdersJob) Run(ctx context.Context) int {
	late, err := j.scanner.LateOrders(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Late orders scan failed", "error", err)
		return 0
	}

	for _, o := range late {
		j.logger.WarnContext(ctx, "Order is late",
			"number", o.Number(),
			"customer_id", o.CustomerID(),
			"requested_delivery_at", o.RequestedDeliveryAt().String(),
			"status", o.Status().String())
	}
	return len(late)
}

func (j *LateOrdersJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Late orders job stopped")
}

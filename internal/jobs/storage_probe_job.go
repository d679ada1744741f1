package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/robfig/cron/v3"
)

// DefaultStorageProbeSchedule probes every thirty seconds.
const DefaultStorageProbeSchedule = "*/30 * * * * *"

type StorageProber interface {
	Ping(ctx context.Context) error
}

// StorageProbeJob pings storage on a schedule and logs state changes only.
type StorageProbeJob struct {
	prober   StorageProber
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
	healthy  atomic.Bool
}

func NewStorageProbeJob(prober StorageProber, schedule string, logger *slog.Logger) *StorageProbeJob {
	if schedule == "" {
		schedule = DefaultStorageProbeSchedule
	}
	j := &StorageProbeJob{
		prober:   prober,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "storage_probe_job"),
	}
	j.healthy.Store(true)
	return j
}

func (j *StorageProbeJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() { j.Run(context.Background()) }); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Storage probe job started", "schedule", j.schedule)
	return nil
}

// Run probes once and reports whether storage answered.
func (j *StorageProbeJob) Run(ctx context.Context) bool {
	err := j.prober.Ping(ctx)
	healthy := err == nil

	if was := j.healthy.Swap(healthy); was != healthy {
		if healthy {
			j.logger.InfoContext(ctx, "Storage is reachable again")
		} else {
			j.logger.ErrorContext(ctx, "Storage stopped answering", "error", err)
		}
	}
	return healthy
}

func (j *StorageProbeJob) Healthy() bool {
	return j.healthy.Load()
}

func (j *StorageProbeJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Storage probe job stopped")
}

package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	lateOrdersJob   *LateOrdersJob
	storageProbeJob *StorageProbeJob
}

// Schedules holds the cron expressions of the jobs. Empty values select the defaults.
type Schedules struct {
	LateOrders   string
	StorageProbe string
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	scanner LateOrdersScanner,
	prober StorageProber,
	schedules Schedules,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		lateOrdersJob:   NewLateOrdersJob(scanner, schedules.LateOrders, logger),
		storageProbeJob: NewStorageProbeJob(prober, schedules.StorageProbe, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.storageProbeJob.Start(); err != nil {
		return fmt.Errorf("failed to start storage probe job: %w", err)
	}

	if err := jm.lateOrdersJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.storageProbeJob.Stop()
		return fmt.Errorf("failed to start late orders job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs and waits for running ones to finish.
func (jm *JobManager) StopAll() {
	jm.lateOrdersJob.Stop()
	jm.storageProbeJob.Stop()
}

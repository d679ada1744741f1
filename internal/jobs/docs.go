// Package jobs provides scheduled background tasks for the logistics core.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
// Schedules use six fields with seconds first.
//
// # Available Jobs
//
// 1. LateOrdersJob - scans for open orders past their requested delivery date,
// logs each one and refreshes the late-orders gauge (hourly by default)
// 2. StorageProbeJob - pings the active storage engine and logs when it stops
// or resumes answering (every thirty seconds by default)
//
// # Usage
//
//	jobManager := jobs.NewJobManager(orderController, storageManager, jobs.Schedules{}, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - Scan failures are logged; the controller has already published an error event
// - The probe logs transitions only, not every failed ping
// - Failed job starts will stop any already running jobs
package jobs

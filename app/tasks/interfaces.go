package tasks

import "context"

// SchedulerInterface is consumed by the main application and the API layer.
// RunNow triggers the scheduled job out of cadence.
type SchedulerInterface interface {
	Start()
	Stop()
	RunNow(ctx context.Context) error
}

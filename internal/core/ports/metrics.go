package ports

import "time"

// MetricsRecorder records pipeline activity.
//
//go:generate mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type MetricsRecorder interface {
	// ObserveTask records a finished task run.
	ObserveTask(name string, duration time.Duration, err error)
	// IncWatchTrigger counts a debounced watch trigger for the named reaction.
	IncWatchTrigger(reaction string)
	// IncReload counts a reload notification.
	IncReload()
	// ObserveOptimize records one optimized document.
	ObserveOptimize(err error)
}

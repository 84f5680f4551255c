// Package source provides the sample streams the daemon feeds into a feature
// pipeline: a Kafka consumer for production and a synthetic generator for
// local runs.
package source

import (
	"context"
	"time"
)

// Sample is one scalar observation of the monitored signal.
type Sample struct {
	Value float64
	Time  time.Time
}

// Source streams samples into out until the context is cancelled or the
// stream ends. Implementations return context.Canceled on a clean shutdown.
type Source interface {
	Run(ctx context.Context, out chan<- Sample) error
}

package eventstore

import (
	"context"
	"time"
)

// Store persists build history. Reads return events in append order.
type Store interface {
	// Append stores e. A zero timestamp is replaced by the current time.
	Append(ctx context.Context, e Event) error

	// ForBuild returns the events of one build.
	ForBuild(ctx context.Context, buildID string) ([]Event, error)

	// Since returns the events stamped at or after t.
	Since(ctx context.Context, t time.Time) ([]Event, error)

	Close() error
}

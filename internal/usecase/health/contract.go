package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// QueueChecker checks job transport availability.
type QueueChecker interface {
	HealthCheck(ctx context.Context) error
}

// ProbeFunc reports a component failure as a non-nil error.
type ProbeFunc func(ctx context.Context) error

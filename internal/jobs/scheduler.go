package jobs

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// IDLister lists every profile ID.
type IDLister interface {
	IDs(ctx context.Context) ([]string, error)
}

// RebuildEnqueuer schedules pool rebuilds.
type RebuildEnqueuer interface {
	EnqueueRebuild(ctx context.Context, ownerID string) error
}

// Scheduler periodically enqueues a rebuild for every profile.
type Scheduler struct {
	ids         IDLister
	queue       RebuildEnqueuer
	interval    time.Duration
	concurrency int
	logger      *zap.Logger
}

// NewScheduler creates a scheduler. A non-positive interval disables it.
func NewScheduler(ids IDLister, queue RebuildEnqueuer, interval time.Duration, concurrency int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		ids:         ids,
		queue:       queue,
		interval:    interval,
		concurrency: max(concurrency, 1),
		logger:      logger,
	}
}

// Run ticks until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Info("Pool rebuild scheduler disabled")
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.Error("Scheduled rebuild failed", zap.Error(err))
				continue
			}
			s.logger.Info("Scheduled rebuilds enqueued", zap.Int("owners", n))
		}
	}
}

// RunOnce enqueues one rebuild per profile and returns how many were enqueued.
// Individual enqueue failures are logged and skipped.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	ids, err := s.ids.IDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list profiles: %w", err)
	}

	var enqueued atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := s.queue.EnqueueRebuild(gctx, id); err != nil {
				s.logger.Warn("Failed to enqueue rebuild", zap.String("owner", id), zap.Error(err))
				return nil
			}
			enqueued.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	return int(enqueued.Load()), nil
}

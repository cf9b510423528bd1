package feed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchfeed/internal/domain"
	domexcl "github.com/kailas-cloud/matchfeed/internal/domain/exclusion"
	"github.com/kailas-cloud/matchfeed/internal/domain/feed"
	"github.com/kailas-cloud/matchfeed/internal/metrics"
)

// FeedBatch pops up to n cards from owner's swipe feed. It never fails on
// store trouble: the caller gets StatusRetry instead.
func (s *Service) FeedBatch(ctx context.Context, ownerID string, n int) (feed.Batch, error) {
	if err := domain.ValidateID(ownerID); err != nil {
		return feed.Batch{}, err
	}
	if n <= 0 {
		n = 1
	}
	n = min(n, s.cfg.MaxBatch)

	batch := s.readBatch(ctx, ownerID, n)
	metrics.FeedBatchesTotal.WithLabelValues(string(batch.Status)).Inc()
	return batch, nil
}

func (s *Service) readBatch(ctx context.Context, ownerID string, n int) feed.Batch {
	retry := feed.Batch{IDs: []string{}, Status: feed.StatusRetry}

	excl, err := s.excl.Compute(ctx, ownerID)
	if err != nil {
		s.logger.Warn("Failed to compute exclusions for feed", zap.String("owner", ownerID), zap.Error(err))
		return retry
	}

	ids, err := s.pop(ctx, ownerID, n, excl)
	if err != nil {
		s.logger.Warn("Failed to pop feed", zap.String("owner", ownerID), zap.Error(err))
		return retry
	}
	s.maybeRefill(ctx, ownerID)
	if len(ids) > 0 {
		return feed.Batch{IDs: ids, Status: feed.StatusOK}
	}

	timer := time.NewTimer(s.cfg.Wait)
	defer timer.Stop()
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if exhausted, err := s.list.IsExhausted(ctx, ownerID); err == nil && exhausted {
			return feed.Batch{IDs: []string{}, Status: feed.StatusExhausted}
		}

		select {
		case <-ctx.Done():
			return retry
		case <-timer.C:
			return retry
		case <-ticker.C:
		}

		ids, err = s.pop(ctx, ownerID, n, excl)
		if err != nil {
			return retry
		}
		if len(ids) > 0 {
			return feed.Batch{IDs: ids, Status: feed.StatusOK}
		}
	}
}

func (s *Service) pop(ctx context.Context, ownerID string, n int, excl domexcl.Set) ([]string, error) {
	popped, err := s.list.Pop(ctx, ownerID, n)
	if err != nil {
		return nil, err
	}
	return excl.Filter(popped), nil
}

// maybeRefill enqueues a refill when the list runs low. Concurrent readers
// share one refill through a short lock.
func (s *Service) maybeRefill(ctx context.Context, ownerID string) {
	remaining, err := s.list.Len(ctx, ownerID)
	if err != nil || remaining >= s.cfg.RefillThreshold {
		return
	}

	acquired, err := s.list.AcquireRefillLock(ctx, ownerID, s.cfg.LockTTL)
	if err != nil || !acquired {
		return
	}

	if err := s.refills.EnqueueRefill(ctx, ownerID); err != nil {
		s.logger.Warn("Failed to enqueue feed refill", zap.String("owner", ownerID), zap.Error(err))
		if err := s.list.ReleaseRefillLock(context.WithoutCancel(ctx), ownerID); err != nil {
			s.logger.Warn("Failed to release refill lock", zap.String("owner", ownerID), zap.Error(err))
		}
	}
}

// Refill tops up owner's swipe feed, pool first then live sample. Cards
// already queued are skipped, so a redelivered job adds nothing twice.
// Returns the number of cards appended.
func (s *Service) Refill(ctx context.Context, ownerID string) (int, error) {
	defer func() {
		if err := s.list.ReleaseRefillLock(context.WithoutCancel(ctx), ownerID); err != nil {
			s.logger.Warn("Failed to release refill lock", zap.String("owner", ownerID), zap.Error(err))
		}
	}()

	owner, err := s.users.Get(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("get owner: %w", err)
	}
	excl, err := s.excl.Compute(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("compute exclusions: %w", err)
	}
	queued, err := s.list.Contents(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("read feed: %w", err)
	}
	excl.Add(queued...)

	picked := s.pool.TopCandidates(ctx, ownerID, s.cfg.RefillSize, excl)
	if len(picked) < s.cfg.RefillSize {
		for _, c := range picked {
			excl.Add(c.ID)
		}
		live := s.liveCandidates(ctx, owner, feed.ViewTop, excl)
		picked = append(picked, live[:min(len(live), s.cfg.RefillSize-len(picked))]...)
	}

	if len(picked) == 0 {
		if len(queued) > 0 {
			return 0, nil
		}
		if err := s.list.MarkExhausted(ctx, ownerID, s.cfg.ExhaustedTTL); err != nil {
			return 0, fmt.Errorf("mark exhausted: %w", err)
		}
		return 0, nil
	}

	ids := make([]string, len(picked))
	for i, c := range picked {
		ids[i] = c.ID
	}
	if err := s.list.Append(ctx, ownerID, ids...); err != nil {
		return 0, fmt.Errorf("append feed: %w", err)
	}
	if err := s.list.ClearExhausted(ctx, ownerID); err != nil {
		s.logger.Warn("Failed to clear exhausted marker", zap.String("owner", ownerID), zap.Error(err))
	}
	return len(ids), nil
}

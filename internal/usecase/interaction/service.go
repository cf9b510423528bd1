package interaction

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchfeed/internal/domain"
)

// Result reports the outcome of an applied swipe.
type Result struct {
	Matched bool `json:"matched"`
}

// Service records swipes and maintains the relationship sets.
type Service struct {
	rels    RelationStore
	pool    PoolRemover
	feed    FeedRemover
	caches  Invalidator
	queue   SwipeEnqueuer
	logger  *zap.Logger
	nowFunc func() time.Time
}

// New creates an interaction service.
func New(
	rels RelationStore, pool PoolRemover, feed FeedRemover,
	caches Invalidator, queue SwipeEnqueuer, logger *zap.Logger,
) *Service {
	return &Service{
		rels:    rels,
		pool:    pool,
		feed:    feed,
		caches:  caches,
		queue:   queue,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// Record validates a swipe and enqueues it for persistence.
// Enqueue failures wrap domain.ErrQueueUnavailable and are safe to retry.
func (s *Service) Record(ctx context.Context, sw domain.Swipe) error {
	if err := sw.Validate(); err != nil {
		return err
	}
	if sw.At.IsZero() {
		sw.At = s.nowFunc().UTC()
	}
	if err := s.queue.EnqueueSwipe(ctx, sw); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrQueueUnavailable, err)
	}
	return nil
}

// Apply persists a swipe. Every write is a set insert, so replaying a swipe is harmless.
func (s *Service) Apply(ctx context.Context, sw domain.Swipe) (Result, error) {
	if err := sw.Validate(); err != nil {
		return Result{}, err
	}

	ownerRel, targetRel := sw.Action.Forward()
	if err := s.rels.Add(ctx, sw.OwnerID, ownerRel, sw.TargetID); err != nil {
		return Result{}, fmt.Errorf("add %s: %w", ownerRel, err)
	}
	if err := s.rels.Add(ctx, sw.TargetID, targetRel, sw.OwnerID); err != nil {
		return Result{}, fmt.Errorf("add %s: %w", targetRel, err)
	}

	var res Result
	switch {
	case sw.Action.Positive():
		mutual, err := s.isMutual(ctx, sw)
		if err != nil {
			return Result{}, err
		}
		if mutual {
			if err := s.match(ctx, sw.OwnerID, sw.TargetID); err != nil {
				return Result{}, err
			}
			res.Matched = true
		}
	case sw.Action == domain.ActionBlock:
		s.unlink(ctx, sw.OwnerID, sw.TargetID)
		s.unlink(ctx, sw.TargetID, sw.OwnerID)
	}

	s.caches.Invalidate(ctx, sw.OwnerID)
	s.caches.Invalidate(ctx, sw.TargetID)

	s.logger.Debug("Swipe applied",
		zap.String("owner", sw.OwnerID),
		zap.String("target", sw.TargetID),
		zap.String("action", string(sw.Action)),
		zap.Bool("matched", res.Matched),
	)
	return res, nil
}

// isMutual reports whether the target already liked or super-liked the owner.
func (s *Service) isMutual(ctx context.Context, sw domain.Swipe) (bool, error) {
	for _, rel := range []domain.Relation{domain.RelLiked, domain.RelSuperLiked} {
		ok, err := s.rels.Has(ctx, sw.TargetID, rel, sw.OwnerID)
		if err != nil {
			return false, fmt.Errorf("check %s: %w", rel, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *Service) match(ctx context.Context, a, b string) error {
	if err := s.rels.Add(ctx, a, domain.RelMatched, b); err != nil {
		return fmt.Errorf("add match: %w", err)
	}
	if err := s.rels.Add(ctx, b, domain.RelMatched, a); err != nil {
		return fmt.Errorf("add match: %w", err)
	}
	return nil
}

// unlink removes other from owner's pool and queued feed. Best effort.
func (s *Service) unlink(ctx context.Context, owner, other string) {
	s.pool.Remove(ctx, owner, other)
	if err := s.feed.Remove(ctx, owner, other); err != nil {
		s.logger.Warn("Failed to remove blocked user from feed",
			zap.String("owner", owner), zap.String("other", other), zap.Error(err))
	}
}

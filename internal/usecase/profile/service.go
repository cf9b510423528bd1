package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchfeed/internal/domain"
	"github.com/kailas-cloud/matchfeed/internal/domain/dna"
)

// Service manages user profiles and their trait vectors.
type Service struct {
	users    UserStore
	caches   Invalidator
	rebuilds RebuildEnqueuer
	logger   *zap.Logger
	nowFunc  func() time.Time
}

// New creates a profile service.
func New(users UserStore, caches Invalidator, rebuilds RebuildEnqueuer, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		caches:   caches,
		rebuilds: rebuilds,
		logger:   logger,
		nowFunc:  time.Now,
	}
}

// Upsert stores a profile. Creation time and a previously computed trait
// vector survive updates that omit them. Returns true if the profile was created.
func (s *Service) Upsert(ctx context.Context, u *domain.User) (bool, error) {
	if err := u.Validate(); err != nil {
		return false, err
	}

	prev, err := s.users.Get(ctx, u.ID)
	switch {
	case err == nil:
		if u.CreatedAt == 0 {
			u.CreatedAt = prev.CreatedAt
		}
		if u.DNA == nil && len(u.Answers) == 0 {
			u.DNA, u.Answers = prev.DNA, prev.Answers
		}
	case errors.Is(err, domain.ErrUserNotFound):
	default:
		return false, fmt.Errorf("get user: %w", err)
	}
	if u.CreatedAt == 0 {
		u.CreatedAt = s.nowFunc().UnixMilli()
	}
	if u.DNA != nil {
		v := u.DNA.Clamp()
		u.DNA = &v
	}

	created, err := s.users.Upsert(ctx, u)
	if err != nil {
		return false, fmt.Errorf("upsert user: %w", err)
	}

	s.caches.Invalidate(ctx, u.ID)
	s.requestRebuild(ctx, u.ID)
	return created, nil
}

// Get returns a profile.
func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	if err := domain.ValidateID(id); err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// SubmitAnswers recomputes the owner's trait vector from questionnaire
// categories, persists both and schedules a pool rebuild.
func (s *Service) SubmitAnswers(ctx context.Context, ownerID string, categories []dna.Category) (dna.Vector, error) {
	if err := domain.ValidateID(ownerID); err != nil {
		return dna.Vector{}, err
	}

	v := dna.ComputeCategories(categories)
	if err := s.users.SetDNA(ctx, ownerID, categories, v); err != nil {
		return dna.Vector{}, fmt.Errorf("set dna: %w", err)
	}

	s.caches.Invalidate(ctx, ownerID)
	s.requestRebuild(ctx, ownerID)
	return v, nil
}

// requestRebuild is best effort: the periodic scheduler catches up on failures.
func (s *Service) requestRebuild(ctx context.Context, ownerID string) {
	if err := s.rebuilds.EnqueueRebuild(ctx, ownerID); err != nil {
		s.logger.Warn("Failed to enqueue pool rebuild", zap.String("owner", ownerID), zap.Error(err))
	}
}

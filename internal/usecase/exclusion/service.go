package exclusion

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchfeed/internal/domain"
	domexcl "github.com/kailas-cloud/matchfeed/internal/domain/exclusion"
)

// excluded relations every view filters out. disliked_by is the reverse lookup "who disliked me".
var baseRelations = []domain.Relation{
	domain.RelLiked,
	domain.RelDisliked,
	domain.RelSuperLiked,
	domain.RelMatched,
	domain.RelBlocked,
	domain.RelBlockedBy,
	domain.RelDislikedBy,
}

// Service computes exclusion sets and invalidates read caches.
type Service struct {
	rels   RelationReader
	cache  CacheInvalidator
	logger *zap.Logger
}

// New creates an exclusion service. cache can be nil.
func New(rels RelationReader, cache CacheInvalidator, logger *zap.Logger) *Service {
	return &Service{rels: rels, cache: cache, logger: logger}
}

// Compute returns the fresh exclusion set for owner, always including owner itself.
func (s *Service) Compute(ctx context.Context, ownerID string, opts ...domexcl.Option) (domexcl.Set, error) {
	rels := baseRelations
	if domexcl.Apply(opts...).SuperLikedBy {
		rels = append(rels[:len(rels):len(rels)], domain.RelSuperLikedBy)
	}

	ids, err := s.rels.Union(ctx, ownerID, rels...)
	if err != nil {
		return domexcl.Set{}, fmt.Errorf("union relations: %w", err)
	}

	set := domexcl.New(ids...)
	set.Add(ownerID)
	return set, nil
}

// Invalidate drops owner's cached pages and view snapshots. Best effort.
func (s *Service) Invalidate(ctx context.Context, ownerID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, ownerID); err != nil {
		s.logger.Warn("Failed to invalidate cache", zap.String("owner", ownerID), zap.Error(err))
	}
}

package scoring

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/matchfeed/internal/domain"
	"github.com/kailas-cloud/matchfeed/internal/domain/compat"
	"github.com/kailas-cloud/matchfeed/internal/domain/feed"
)

// rankConcurrency bounds in-flight cache lookups per Rank call.
const rankConcurrency = 16

// Service scores users against each other.
type Service struct {
	users UserReader
	cache ScoreCache
}

// New creates a scoring service. cache can be nil.
func New(users UserReader, cache ScoreCache) *Service {
	return &Service{users: users, cache: cache}
}

// Pair returns the compatibility score between owner and other.
func (s *Service) Pair(ctx context.Context, ownerID, otherID string) (int, error) {
	owner, other, err := s.load(ctx, ownerID, otherID)
	if err != nil {
		return 0, err
	}
	return s.Cached(ctx, owner, other), nil
}

// Explain returns the score breakdown between owner and other. Never cached.
func (s *Service) Explain(ctx context.Context, ownerID, otherID string) (compat.Detail, error) {
	owner, other, err := s.load(ctx, ownerID, otherID)
	if err != nil {
		return compat.Detail{}, err
	}
	return compat.Breakdown(owner, other), nil
}

// Cached scores two loaded users, consulting the pairwise cache first.
func (s *Service) Cached(ctx context.Context, a, b *domain.User) int {
	if s.cache == nil || a == nil || b == nil {
		return compat.Score(a, b)
	}
	aFP, bFP := compat.Fingerprint(a), compat.Fingerprint(b)
	if score, ok := s.cache.Score(ctx, a.ID, aFP, b.ID, bFP); ok {
		return score
	}
	score := compat.Score(a, b)
	s.cache.PutScore(ctx, a.ID, aFP, b.ID, bFP, score)
	return score
}

// Rank scores candidates against owner and sorts them by descending score, ties by ID.
// With a cache, lookups run concurrently so they share pipelined round trips.
func (s *Service) Rank(ctx context.Context, owner *domain.User, candidates []*domain.User) []feed.Candidate {
	picked := make([]*domain.User, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || (owner != nil && c.ID == owner.ID) {
			continue
		}
		picked = append(picked, c)
	}

	out := make([]feed.Candidate, len(picked))
	if s.cache == nil {
		for i, c := range picked {
			out[i] = feed.Candidate{ID: c.ID, Score: compat.Score(owner, c), Source: feed.SourceLive}
		}
	} else {
		var g errgroup.Group
		g.SetLimit(rankConcurrency)
		for i, c := range picked {
			g.Go(func() error {
				out[i] = feed.Candidate{ID: c.ID, Score: s.Cached(ctx, owner, c), Source: feed.SourceLive}
				return nil
			})
		}
		_ = g.Wait()
	}
	feed.SortByScore(out)
	return out
}

func (s *Service) load(ctx context.Context, ownerID, otherID string) (*domain.User, *domain.User, error) {
	owner, err := s.users.Get(ctx, ownerID)
	if err != nil {
		return nil, nil, fmt.Errorf("get owner: %w", err)
	}
	other, err := s.users.Get(ctx, otherID)
	if err != nil {
		return nil, nil, fmt.Errorf("get other: %w", err)
	}
	return owner, other, nil
}

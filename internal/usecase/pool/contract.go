package pool

import (
	"context"

	"github.com/kailas-cloud/matchfeed/internal/domain"
	domexcl "github.com/kailas-cloud/matchfeed/internal/domain/exclusion"
	"github.com/kailas-cloud/matchfeed/internal/domain/feed"
)

// UserReader loads and samples profiles.
type UserReader interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	Sample(ctx context.Context, q domain.SampleQuery) ([]*domain.User, error)
}

// Excluder computes an owner's exclusion set.
type Excluder interface {
	Compute(ctx context.Context, ownerID string, opts ...domexcl.Option) (domexcl.Set, error)
}

// Ranker scores and orders candidates against an owner.
type Ranker interface {
	Rank(ctx context.Context, owner *domain.User, candidates []*domain.User) []feed.Candidate
}

// Store is the per-owner ranking pool storage.
type Store interface {
	Replace(ctx context.Context, owner string, entries []feed.Candidate) error
	Top(ctx context.Context, owner string, n int) ([]feed.Candidate, error)
	All(ctx context.Context, owner string) ([]feed.Candidate, error)
	Remove(ctx context.Context, owner string, ids ...string) error
}

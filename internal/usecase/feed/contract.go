package feed

import (
	"context"
	"time"

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

// PoolReader reads the precomputed ranking pool.
type PoolReader interface {
	Entries(ctx context.Context, ownerID string) ([]feed.Candidate, error)
	TopCandidates(ctx context.Context, ownerID string, n int, exclude domexcl.Set) []feed.Candidate
}

// PageCache caches rendered pages and per-view snapshots.
type PageCache interface {
	Page(ctx context.Context, owner string, view feed.View, page, limit int) (feed.Page, bool)
	PutPage(ctx context.Context, owner string, p feed.Page)
	Snapshot(ctx context.Context, owner string, view feed.View) ([]feed.Candidate, bool)
	PutSnapshot(ctx context.Context, owner string, view feed.View, snap []feed.Candidate)
}

// FeedList is the per-owner swipe feed list.
type FeedList interface {
	Pop(ctx context.Context, owner string, n int) ([]string, error)
	Len(ctx context.Context, owner string) (int, error)
	Contents(ctx context.Context, owner string) ([]string, error)
	Append(ctx context.Context, owner string, ids ...string) error
	AcquireRefillLock(ctx context.Context, owner string, ttl time.Duration) (bool, error)
	ReleaseRefillLock(ctx context.Context, owner string) error
	MarkExhausted(ctx context.Context, owner string, ttl time.Duration) error
	IsExhausted(ctx context.Context, owner string) (bool, error)
	ClearExhausted(ctx context.Context, owner string) error
}

// RefillEnqueuer schedules a background feed refill.
type RefillEnqueuer interface {
	EnqueueRefill(ctx context.Context, ownerID string) error
}

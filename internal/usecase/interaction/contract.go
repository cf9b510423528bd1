package interaction

import (
	"context"

	"github.com/kailas-cloud/matchfeed/internal/domain"
)

// RelationStore writes and checks relationship sets.
type RelationStore interface {
	Add(ctx context.Context, owner string, rel domain.Relation, ids ...string) error
	Has(ctx context.Context, owner string, rel domain.Relation, id string) (bool, error)
}

// PoolRemover drops candidates from an owner's ranking pool.
type PoolRemover interface {
	Remove(ctx context.Context, ownerID string, ids ...string)
}

// FeedRemover drops a queued card from an owner's swipe feed.
type FeedRemover interface {
	Remove(ctx context.Context, owner, id string) error
}

// Invalidator drops an owner's read caches.
type Invalidator interface {
	Invalidate(ctx context.Context, ownerID string)
}

// SwipeEnqueuer schedules swipe persistence.
type SwipeEnqueuer interface {
	EnqueueSwipe(ctx context.Context, s domain.Swipe) error
}

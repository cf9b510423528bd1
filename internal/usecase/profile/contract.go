package profile

import (
	"context"

	"github.com/kailas-cloud/matchfeed/internal/domain"
	"github.com/kailas-cloud/matchfeed/internal/domain/dna"
)

// UserStore persists profiles.
type UserStore interface {
	Upsert(ctx context.Context, u *domain.User) (bool, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	SetDNA(ctx context.Context, id string, answers []dna.Category, v dna.Vector) error
}

// Invalidator drops an owner's read caches.
type Invalidator interface {
	Invalidate(ctx context.Context, ownerID string)
}

// RebuildEnqueuer schedules a ranking pool rebuild.
type RebuildEnqueuer interface {
	EnqueueRebuild(ctx context.Context, ownerID string) error
}

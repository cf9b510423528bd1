package exclusion

import (
	"context"

	"github.com/kailas-cloud/matchfeed/internal/domain"
)

// RelationReader reads per-user relationship sets.
type RelationReader interface {
	Union(ctx context.Context, owner string, rels ...domain.Relation) ([]string, error)
}

// CacheInvalidator drops an owner's cached pages and snapshots.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, owner string) error
}

// Package relation stores per-user relationship sets (likes, blocks, matches).
package relation

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/matchfeed/internal/domain"
)

// store is the consumer interface for relationship sets (ISP).
type store interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SIsMember(ctx context.Context, key, member string) (bool, error)
	SUnion(ctx context.Context, keys ...string) ([]string, error)
}

// Repo keeps one Redis set per (user, relation).
type Repo struct {
	store store
}

// New creates a relationship repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Add records ids under owner's relation. Idempotent.
func (r *Repo) Add(ctx context.Context, owner string, rel domain.Relation, ids ...string) error {
	key := relKey(owner, rel)
	if err := r.store.SAdd(ctx, key, ids...); err != nil {
		return fmt.Errorf("sadd %s: %w", key, err)
	}
	return nil
}

// Has reports whether id is in owner's relation.
func (r *Repo) Has(ctx context.Context, owner string, rel domain.Relation, id string) (bool, error) {
	key := relKey(owner, rel)
	ok, err := r.store.SIsMember(ctx, key, id)
	if err != nil {
		return false, fmt.Errorf("sismember %s: %w", key, err)
	}
	return ok, nil
}

// Union returns the union of several of owner's relations in one round trip.
func (r *Repo) Union(ctx context.Context, owner string, rels ...domain.Relation) ([]string, error) {
	if len(rels) == 0 {
		return nil, nil
	}
	keys := make([]string, len(rels))
	for i, rel := range rels {
		keys[i] = relKey(owner, rel)
	}
	ids, err := r.store.SUnion(ctx, keys...)
	if err != nil {
		return nil, fmt.Errorf("sunion %s: %w", owner, err)
	}
	return ids, nil
}

// relKey hash-tags the owner so all of one owner's sets share a cluster slot.
func relKey(owner string, rel domain.Relation) string {
	return fmt.Sprintf("%srel:{%s}:%s", domain.KeyPrefix, owner, rel)
}

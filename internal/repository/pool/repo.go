// Package pool stores per-owner ranking pools as sorted sets.
package pool

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/matchfeed/internal/db"
	"github.com/kailas-cloud/matchfeed/internal/domain"
	"github.com/kailas-cloud/matchfeed/internal/domain/feed"
)

// DefaultTTL is how long a rebuilt pool lives.
const DefaultTTL = 24 * time.Hour

// store is the consumer interface for ranking pools (ISP).
type store interface {
	ZAdd(ctx context.Context, key string, members []db.ScoredMember) error
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]db.ScoredMember, error)
	ZRem(ctx context.Context, key string, members ...string) error
	ZRemRangeByRank(ctx context.Context, key string, start, stop int64) error
	Rename(ctx context.Context, src, dst string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Repo reads and atomically replaces ranking pools.
type Repo struct {
	store   store
	ttl     time.Duration
	maxSize int
	newID   func() string
}

// New creates a pool repository.
func New(s store, ttl time.Duration) *Repo {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Repo{store: s, ttl: ttl, newID: uuid.NewString}
}

// WithMaxSize bounds every stored pool to the n highest-scored entries.
func (r *Repo) WithMaxSize(n int) *Repo {
	r.maxSize = n
	return r
}

// Replace swaps the owner's pool for entries. The new pool is written under a
// staging key and renamed over the live key, so readers never see a partial pool.
// An empty entries slice deletes the pool.
func (r *Repo) Replace(ctx context.Context, owner string, entries []feed.Candidate) error {
	live := poolKey(owner)
	if len(entries) == 0 {
		if err := r.store.Del(ctx, live); err != nil {
			return fmt.Errorf("del %s: %w", live, err)
		}
		return nil
	}

	staging := live + ":staging:" + r.newID()
	members := make([]db.ScoredMember, len(entries))
	for i, e := range entries {
		members[i] = db.ScoredMember{Member: e.ID, Score: float64(e.Score)}
	}

	if err := r.store.ZAdd(ctx, staging, members); err != nil {
		r.discard(ctx, staging)
		return fmt.Errorf("zadd %s: %w", staging, err)
	}
	if r.maxSize > 0 && len(members) > r.maxSize {
		// ascending ranks 0..len-max-1 are the lowest scores
		if err := r.store.ZRemRangeByRank(ctx, staging, 0, int64(-r.maxSize-1)); err != nil {
			r.discard(ctx, staging)
			return fmt.Errorf("trim %s: %w", staging, err)
		}
	}
	if err := r.store.Expire(ctx, staging, r.ttl); err != nil {
		r.discard(ctx, staging)
		return fmt.Errorf("expire %s: %w", staging, err)
	}
	if err := r.store.Rename(ctx, staging, live); err != nil {
		r.discard(ctx, staging)
		return fmt.Errorf("rename %s: %w", staging, err)
	}
	return nil
}

// Top returns up to n entries by descending score.
func (r *Repo) Top(ctx context.Context, owner string, n int) ([]feed.Candidate, error) {
	if n <= 0 {
		return nil, nil
	}
	return r.rangeDesc(ctx, owner, int64(n-1))
}

// All returns the whole pool by descending score.
func (r *Repo) All(ctx context.Context, owner string) ([]feed.Candidate, error) {
	return r.rangeDesc(ctx, owner, -1)
}

// Remove drops ids from the owner's pool.
func (r *Repo) Remove(ctx context.Context, owner string, ids ...string) error {
	key := poolKey(owner)
	if err := r.store.ZRem(ctx, key, ids...); err != nil {
		return fmt.Errorf("zrem %s: %w", key, err)
	}
	return nil
}

func (r *Repo) rangeDesc(ctx context.Context, owner string, stop int64) ([]feed.Candidate, error) {
	key := poolKey(owner)
	members, err := r.store.ZRevRange(ctx, key, 0, stop)
	if err != nil {
		return nil, fmt.Errorf("zrange %s: %w", key, err)
	}
	out := make([]feed.Candidate, len(members))
	for i, m := range members {
		out[i] = feed.Candidate{ID: m.Member, Score: int(m.Score), Source: feed.SourcePool}
	}
	// REV orders equal scores by descending member; reads use ascending IDs.
	// Ties straddling a partial read's cut may still differ from a full sort.
	feed.SortByScore(out)
	return out, nil
}

func (r *Repo) discard(ctx context.Context, key string) {
	_ = r.store.Del(context.WithoutCancel(ctx), key)
}

// poolKey hash-tags the owner so the staging key and the live key share a cluster slot.
func poolKey(owner string) string {
	return domain.KeyPrefix + "pool:{" + owner + "}"
}

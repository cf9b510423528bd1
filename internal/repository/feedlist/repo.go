// Package feedlist stores the unscored FIFO swipe feed per owner.
package feedlist

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/matchfeed/internal/domain"
)

// DefaultTTL bounds how long an untouched feed list lives.
const DefaultTTL = 7 * 24 * time.Hour

// store is the consumer interface for feed lists (ISP).
type store interface {
	RPush(ctx context.Context, key string, values ...string) error
	LPopCount(ctx context.Context, key string, count int) ([]string, error)
	LLen(ctx context.Context, key string) (int64, error)
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LRem(ctx context.Context, key string, value string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// Repo manages feed lists plus their refill lock and exhausted marker.
type Repo struct {
	store store
	ttl   time.Duration
}

// New creates a feed list repository.
func New(s store, ttl time.Duration) *Repo {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Repo{store: s, ttl: ttl}
}

// Pop removes and returns up to n IDs from the head.
func (r *Repo) Pop(ctx context.Context, owner string, n int) ([]string, error) {
	key := listKey(owner)
	ids, err := r.store.LPopCount(ctx, key, n)
	if err != nil {
		return nil, fmt.Errorf("lpop %s: %w", key, err)
	}
	return ids, nil
}

// Len returns the number of queued IDs.
func (r *Repo) Len(ctx context.Context, owner string) (int, error) {
	key := listKey(owner)
	n, err := r.store.LLen(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("llen %s: %w", key, err)
	}
	return int(n), nil
}

// Contents returns every queued ID without consuming them.
func (r *Repo) Contents(ctx context.Context, owner string) ([]string, error) {
	key := listKey(owner)
	ids, err := r.store.LRange(ctx, key, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("lrange %s: %w", key, err)
	}
	return ids, nil
}

// Append pushes ids to the tail and refreshes the list TTL.
func (r *Repo) Append(ctx context.Context, owner string, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	key := listKey(owner)
	if err := r.store.RPush(ctx, key, ids...); err != nil {
		return fmt.Errorf("rpush %s: %w", key, err)
	}
	if err := r.store.Expire(ctx, key, r.ttl); err != nil {
		return fmt.Errorf("expire %s: %w", key, err)
	}
	return nil
}

// Remove deletes every occurrence of id from the list.
func (r *Repo) Remove(ctx context.Context, owner, id string) error {
	key := listKey(owner)
	if err := r.store.LRem(ctx, key, id); err != nil {
		return fmt.Errorf("lrem %s: %w", key, err)
	}
	return nil
}

// AcquireRefillLock returns true if the caller should enqueue a refill.
func (r *Repo) AcquireRefillLock(ctx context.Context, owner string, ttl time.Duration) (bool, error) {
	key := lockKey(owner)
	ok, err := r.store.SetNX(ctx, key, []byte("1"), ttl)
	if err != nil {
		return false, fmt.Errorf("setnx %s: %w", key, err)
	}
	return ok, nil
}

// ReleaseRefillLock clears the refill lock once a refill completes.
func (r *Repo) ReleaseRefillLock(ctx context.Context, owner string) error {
	key := lockKey(owner)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

// MarkExhausted records that the last refill found no candidates.
func (r *Repo) MarkExhausted(ctx context.Context, owner string, ttl time.Duration) error {
	key := exhaustedKey(owner)
	if err := r.store.SetWithTTL(ctx, key, []byte("1"), ttl); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// IsExhausted reports whether the exhausted marker is present.
func (r *Repo) IsExhausted(ctx context.Context, owner string) (bool, error) {
	key := exhaustedKey(owner)
	ok, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return ok, nil
}

// ClearExhausted removes the exhausted marker.
func (r *Repo) ClearExhausted(ctx context.Context, owner string) error {
	key := exhaustedKey(owner)
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	return nil
}

func listKey(owner string) string      { return domain.KeyPrefix + "feed:{" + owner + "}" }
func lockKey(owner string) string      { return listKey(owner) + ":refill" }
func exhaustedKey(owner string) string { return listKey(owner) + ":exhausted" }

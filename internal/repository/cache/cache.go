// Package cache holds short-lived read caches: candidate pages, per-view
// ordered snapshots and pairwise compatibility scores.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchfeed/internal/db"
	"github.com/kailas-cloud/matchfeed/internal/domain"
	"github.com/kailas-cloud/matchfeed/internal/domain/feed"
)

// Lookup kinds reported on the lookups counter.
const (
	KindPage     = "page"
	KindSnapshot = "snapshot"
	KindScore    = "score"
)

// store is the consumer interface for read caches (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SAdd(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// Config sets cache lifetimes.
type Config struct {
	PageTTL     time.Duration
	SnapshotTTL time.Duration
	ScoreTTL    time.Duration
}

// Cache is a best-effort cache: failures are logged and read as misses.
type Cache struct {
	store   store
	cfg     Config
	lookups *prometheus.CounterVec
	logger  *zap.Logger
}

// New creates a cache.
// lookups is a counter vec with labels "kind" and "result" ("hit"/"miss"), passed explicitly.
func New(s store, cfg Config, lookups *prometheus.CounterVec, logger *zap.Logger) *Cache {
	return &Cache{store: s, cfg: cfg, lookups: lookups, logger: logger}
}

// Page returns a cached page.
func (c *Cache) Page(ctx context.Context, owner string, view feed.View, page, limit int) (feed.Page, bool) {
	var p feed.Page
	ok := c.getJSON(ctx, KindPage, pageKey(owner, view, page, limit), &p)
	return p, ok
}

// PutPage caches a page and tracks its key for invalidation.
func (c *Cache) PutPage(ctx context.Context, owner string, p feed.Page) {
	c.putTracked(ctx, owner, pageKey(owner, p.View, p.Page, p.Limit), p, c.cfg.PageTTL)
}

// Snapshot returns the ordered candidate list a view paginates over.
func (c *Cache) Snapshot(ctx context.Context, owner string, view feed.View) ([]feed.Candidate, bool) {
	var snap []feed.Candidate
	ok := c.getJSON(ctx, KindSnapshot, snapshotKey(owner, view), &snap)
	return snap, ok
}

// PutSnapshot caches a view's ordered candidate list.
func (c *Cache) PutSnapshot(ctx context.Context, owner string, view feed.View, snap []feed.Candidate) {
	if snap == nil {
		snap = []feed.Candidate{}
	}
	c.putTracked(ctx, owner, snapshotKey(owner, view), snap, c.cfg.SnapshotTTL)
}

// Score returns the cached score of the pair (a, b) keyed by their fingerprints.
func (c *Cache) Score(ctx context.Context, aID, aFingerprint, bID, bFingerprint string) (int, bool) {
	key := ScoreKey(aID, aFingerprint, bID, bFingerprint)
	data, ok := c.get(ctx, KindScore, key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(string(data))
	if err != nil {
		c.logger.Warn("Failed to parse cached score", zap.String("key", key), zap.Error(err))
		return 0, false
	}
	return n, true
}

// PutScore caches the score of the pair (a, b).
func (c *Cache) PutScore(ctx context.Context, aID, aFingerprint, bID, bFingerprint string, score int) {
	key := ScoreKey(aID, aFingerprint, bID, bFingerprint)
	if err := c.store.SetWithTTL(ctx, key, []byte(strconv.Itoa(score)), c.cfg.ScoreTTL); err != nil {
		c.logger.Warn("Failed to cache score", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every page and snapshot cached for owner.
func (c *Cache) Invalidate(ctx context.Context, owner string) error {
	idx := indexKey(owner)
	keys, err := c.store.SMembers(ctx, idx)
	if err != nil {
		return fmt.Errorf("smembers %s: %w", idx, err)
	}
	keys = append(keys, idx)
	if err := c.store.Del(ctx, keys...); err != nil {
		return fmt.Errorf("del cache keys for %s: %w", owner, err)
	}
	return nil
}

// ScoreKey derives the pairwise cache key. The pair is unordered, and each
// side's fingerprint makes entries stale as soon as scoring inputs change.
func ScoreKey(aID, aFingerprint, bID, bFingerprint string) string {
	if bID < aID {
		aID, bID = bID, aID
		aFingerprint, bFingerprint = bFingerprint, aFingerprint
	}
	return fmt.Sprintf("%sscore:%s:%s:%s:%s", domain.KeyPrefix, aID, bID, aFingerprint, bFingerprint)
}

func (c *Cache) get(ctx context.Context, kind, key string) ([]byte, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to read cache", zap.String("key", key), zap.Error(err))
		}
		c.inc(kind, "miss")
		return nil, false
	}
	if len(data) == 0 {
		c.inc(kind, "miss")
		return nil, false
	}
	c.inc(kind, "hit")
	return data, true
}

func (c *Cache) getJSON(ctx context.Context, kind, key string, v any) bool {
	data, ok := c.get(ctx, kind, key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Warn("Failed to parse cache entry", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *Cache) putTracked(ctx context.Context, owner, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn("Failed to encode cache entry", zap.String("key", key), zap.Error(err))
		return
	}
	idx := indexKey(owner)
	if err := c.store.SAdd(ctx, idx, key); err != nil {
		c.logger.Warn("Failed to track cache key", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Expire(ctx, idx, max(c.cfg.PageTTL, c.cfg.SnapshotTTL)); err != nil {
		c.logger.Warn("Failed to expire cache index", zap.String("key", idx), zap.Error(err))
	}
	if err := c.store.SetWithTTL(ctx, key, data, ttl); err != nil {
		c.logger.Warn("Failed to write cache entry", zap.String("key", key), zap.Error(err))
	}
}

func (c *Cache) inc(kind, result string) {
	if c.lookups != nil {
		c.lookups.WithLabelValues(kind, result).Inc()
	}
}

func ownerPrefix(owner string) string {
	return domain.KeyPrefix + "cache:{" + owner + "}:"
}

func indexKey(owner string) string {
	return ownerPrefix(owner) + "keys"
}

func pageKey(owner string, view feed.View, page, limit int) string {
	return fmt.Sprintf("%spage:%s:%d:%d", ownerPrefix(owner), view, page, limit)
}

func snapshotKey(owner string, view feed.View) string {
	return ownerPrefix(owner) + "snap:" + string(view)
}

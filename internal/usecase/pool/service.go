package pool

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchfeed/internal/domain"
	domexcl "github.com/kailas-cloud/matchfeed/internal/domain/exclusion"
	"github.com/kailas-cloud/matchfeed/internal/domain/feed"
	"github.com/kailas-cloud/matchfeed/internal/metrics"
)

// Defaults for pool rebuilds and reads.
const (
	DefaultSampleSize = 300
	DefaultTopN       = 150
	DefaultOverfetch  = 3
)

// Config bounds a rebuild.
type Config struct {
	SampleSize int // candidates scored per rebuild
	TopN       int // entries kept in the pool
	Overfetch  int // read multiplier compensating for post-read exclusion
}

func (c *Config) applyDefaults() {
	if c.SampleSize <= 0 {
		c.SampleSize = DefaultSampleSize
	}
	if c.TopN <= 0 {
		c.TopN = DefaultTopN
	}
	if c.Overfetch <= 0 {
		c.Overfetch = DefaultOverfetch
	}
}

// Service builds and reads per-owner ranking pools.
type Service struct {
	users   UserReader
	excl    Excluder
	ranker  Ranker
	store   Store
	cfg     Config
	logger  *zap.Logger
	nowFunc func() time.Time
}

// New creates a pool service.
func New(users UserReader, excl Excluder, ranker Ranker, store Store, cfg Config, logger *zap.Logger) *Service {
	cfg.applyDefaults()
	return &Service{
		users:   users,
		excl:    excl,
		ranker:  ranker,
		store:   store,
		cfg:     cfg,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// Rebuild recomputes owner's pool from a fresh sample and swaps it in atomically.
// Returns the number of stored entries.
func (s *Service) Rebuild(ctx context.Context, ownerID string) (int, error) {
	start := s.nowFunc()

	owner, err := s.users.Get(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("get owner: %w", err)
	}

	excl, err := s.excl.Compute(ctx, ownerID)
	if err != nil {
		return 0, fmt.Errorf("compute exclusions: %w", err)
	}

	q := domain.SampleFor(owner, s.cfg.SampleSize)
	q.Exclude(excl.IDs()...)
	sample, err := s.users.Sample(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("sample candidates: %w", err)
	}

	candidates := sample[:0]
	for _, c := range sample {
		if c != nil && !excl.Contains(c.ID) {
			candidates = append(candidates, c)
		}
	}

	ranked := s.ranker.Rank(ctx, owner, candidates)
	if len(ranked) > s.cfg.TopN {
		ranked = ranked[:s.cfg.TopN]
	}
	for i := range ranked {
		ranked[i].Source = feed.SourcePool
	}

	if err := s.store.Replace(ctx, ownerID, ranked); err != nil {
		return 0, fmt.Errorf("replace pool: %w", err)
	}

	metrics.PoolRebuildDuration.Observe(s.nowFunc().Sub(start).Seconds())
	metrics.PoolSize.Observe(float64(len(ranked)))
	s.logger.Debug("Pool rebuilt",
		zap.String("owner", ownerID),
		zap.Int("sampled", len(sample)),
		zap.Int("stored", len(ranked)),
	)
	return len(ranked), nil
}

// TopCandidates returns up to n pool entries not in exclude, best first.
// A store failure yields an empty result.
func (s *Service) TopCandidates(ctx context.Context, ownerID string, n int, exclude domexcl.Set) []feed.Candidate {
	if n <= 0 {
		return []feed.Candidate{}
	}
	entries, err := s.store.Top(ctx, ownerID, n*s.cfg.Overfetch)
	if err != nil {
		s.logger.Warn("Failed to read pool", zap.String("owner", ownerID), zap.Error(err))
		return []feed.Candidate{}
	}
	out := filterCandidates(entries, exclude)
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Entries returns the whole pool in descending order.
func (s *Service) Entries(ctx context.Context, ownerID string) ([]feed.Candidate, error) {
	entries, err := s.store.All(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("read pool: %w", err)
	}
	return entries, nil
}

// Remove drops ids from owner's pool. Best effort.
func (s *Service) Remove(ctx context.Context, ownerID string, ids ...string) {
	if len(ids) == 0 {
		return
	}
	if err := s.store.Remove(ctx, ownerID, ids...); err != nil {
		s.logger.Warn("Failed to remove pool entries", zap.String("owner", ownerID), zap.Error(err))
	}
}

func filterCandidates(entries []feed.Candidate, exclude domexcl.Set) []feed.Candidate {
	out := make([]feed.Candidate, 0, len(entries))
	for _, e := range entries {
		if !exclude.Contains(e.ID) {
			out = append(out, e)
		}
	}
	return out
}

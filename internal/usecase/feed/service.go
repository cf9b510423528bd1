package feed

import (
	"context"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/matchfeed/internal/domain"
	domexcl "github.com/kailas-cloud/matchfeed/internal/domain/exclusion"
	"github.com/kailas-cloud/matchfeed/internal/domain/feed"
	"github.com/kailas-cloud/matchfeed/internal/metrics"
)

// Service serves paginated candidate views and the swipe feed.
type Service struct {
	users   UserReader
	excl    Excluder
	ranker  Ranker
	pool    PoolReader
	cache   PageCache
	list    FeedList
	refills RefillEnqueuer
	breaker *gobreaker.CircuitBreaker[[]feed.Candidate]
	cfg     Config
	logger  *zap.Logger
	nowFunc func() time.Time
}

// Deps groups the collaborators of Service.
type Deps struct {
	Users   UserReader
	Excl    Excluder
	Ranker  Ranker
	Pool    PoolReader
	Cache   PageCache
	List    FeedList
	Refills RefillEnqueuer
	Breaker *gobreaker.CircuitBreaker[[]feed.Candidate]
}

// New creates a feed service. A nil breaker gets default settings.
func New(d Deps, cfg Config, logger *zap.Logger) *Service {
	cfg.applyDefaults()
	if d.Breaker == nil {
		d.Breaker = NewPoolBreaker(BreakerConfig{}, logger)
	}
	return &Service{
		users:   d.Users,
		excl:    d.Excl,
		ranker:  d.Ranker,
		pool:    d.Pool,
		cache:   d.Cache,
		list:    d.List,
		refills: d.Refills,
		breaker: d.Breaker,
		cfg:     cfg,
		logger:  logger,
		nowFunc: time.Now,
	}
}

// CandidatesPage returns one page (1-based) of view for owner.
// Pages are cut from a short-lived per-view snapshot so consecutive pages never overlap.
func (s *Service) CandidatesPage(
	ctx context.Context, ownerID string, view feed.View, page, limit int,
) (feed.Page, error) {
	if err := domain.ValidateID(ownerID); err != nil {
		return feed.Page{}, err
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = s.cfg.PageLimit
	}
	limit = min(limit, s.cfg.MaxPageLimit)

	var (
		excl   domexcl.Set
		cached feed.Page
		hit    bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		excl, err = s.excl.Compute(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("compute exclusions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		cached, hit = s.cache.Page(gctx, ownerID, view, page, limit)
		return nil
	})
	if err := g.Wait(); err != nil {
		return feed.Page{}, err
	}

	if hit {
		return refilterPage(cached, excl), nil
	}

	snap, ok := s.cache.Snapshot(ctx, ownerID, view)
	switch {
	case !ok:
		var err error
		snap, err = s.buildSnapshot(ctx, ownerID, view, page*limit, excl)
		if err != nil {
			return feed.Page{}, err
		}
		s.cache.PutSnapshot(ctx, ownerID, view, snap)
	case remaining(snap, (page-1)*limit, excl) < limit && len(snap) < s.cfg.SnapshotSize:
		topped, err := s.topUp(ctx, ownerID, view, snap, excl)
		if err != nil {
			return feed.Page{}, err
		}
		if len(topped) > len(snap) {
			s.cache.PutSnapshot(ctx, ownerID, view, topped)
		}
		snap = topped
	}

	p := pageOf(view, snap, page, limit, excl)
	s.cache.PutPage(ctx, ownerID, p)
	return p, nil
}

func (s *Service) buildSnapshot(
	ctx context.Context, ownerID string, view feed.View, need int, excl domexcl.Set,
) ([]feed.Candidate, error) {
	var (
		owner  *domain.User
		pooled []feed.Candidate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owner, err = s.users.Get(gctx, ownerID)
		if err != nil {
			return fmt.Errorf("get owner: %w", err)
		}
		return nil
	})
	if view == feed.ViewTop {
		g.Go(func() error {
			pooled = s.poolEntries(gctx, ownerID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := filterCandidates(pooled, excl)
	if len(snap) > s.cfg.SnapshotSize {
		snap = snap[:s.cfg.SnapshotSize]
	}
	fromPool := len(snap)
	if len(snap) < need || view != feed.ViewTop {
		snap = s.appendLive(ctx, owner, view, snap, excl)
	}

	metrics.CandidatesServedTotal.WithLabelValues(string(view), string(feed.SourcePool)).Add(float64(fromPool))
	metrics.CandidatesServedTotal.WithLabelValues(string(view), string(feed.SourceLive)).Add(float64(len(snap) - fromPool))
	return snap, nil
}

// topUp extends a cached snapshot that can no longer fill the requested page
// with a fresh live sample. Entries already in the snapshot keep their positions.
func (s *Service) topUp(
	ctx context.Context, ownerID string, view feed.View, snap []feed.Candidate, excl domexcl.Set,
) ([]feed.Candidate, error) {
	owner, err := s.users.Get(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get owner: %w", err)
	}
	before := len(snap)
	snap = s.appendLive(ctx, owner, view, snap, excl)
	metrics.CandidatesServedTotal.WithLabelValues(string(view), string(feed.SourceLive)).Add(float64(len(snap) - before))
	return snap, nil
}

// appendLive fills snap up to the snapshot size with live candidates not
// already excluded or present.
func (s *Service) appendLive(
	ctx context.Context, owner *domain.User, view feed.View, snap []feed.Candidate, excl domexcl.Set,
) []feed.Candidate {
	room := s.cfg.SnapshotSize - len(snap)
	if room <= 0 {
		return snap
	}
	taken := domexcl.New(excl.IDs()...)
	for _, c := range snap {
		taken.Add(c.ID)
	}
	live := s.liveCandidates(ctx, owner, view, taken)
	if len(live) > room {
		live = live[:room]
	}
	return append(snap, live...)
}

// poolEntries reads the pool through the breaker. Failures and an open circuit yield nothing.
func (s *Service) poolEntries(ctx context.Context, ownerID string) []feed.Candidate {
	entries, err := s.breaker.Execute(func() ([]feed.Candidate, error) {
		return s.pool.Entries(ctx, ownerID)
	})
	if err != nil {
		s.logger.Warn("Pool tier unavailable, serving live",
			zap.String("owner", ownerID),
			zap.String("breaker", s.breaker.State().String()),
			zap.Error(err),
		)
		return nil
	}
	return entries
}

// liveCandidates samples and scores fresh profiles for view.
func (s *Service) liveCandidates(
	ctx context.Context, owner *domain.User, view feed.View, exclude domexcl.Set,
) []feed.Candidate {
	q := domain.SampleFor(owner, s.cfg.LiveSampleSize)
	q.Exclude(exclude.IDs()...)
	switch view {
	case feed.ViewNearby:
		if owner.Location.City == "" {
			return nil
		}
		q.City = owner.Location.City
	case feed.ViewNew:
		q.Newest = true
		q.CreatedAfter = s.nowFunc().Add(-s.cfg.NewWindow).UnixMilli()
	}

	sample, err := s.users.Sample(ctx, q)
	if err != nil {
		s.logger.Warn("Failed to sample live candidates",
			zap.String("owner", owner.ID),
			zap.String("view", string(view)),
			zap.Error(err),
		)
		return nil
	}

	fresh := make([]*domain.User, 0, len(sample))
	for _, u := range sample {
		if u != nil && !exclude.Contains(u.ID) {
			fresh = append(fresh, u)
		}
	}
	return s.ranker.Rank(ctx, owner, fresh)
}

// pageOf cuts a page out of the snapshot at stable offsets and then drops
// candidates excluded since the snapshot was frozen. Swiping through page N
// never shifts what page N+1 shows.
func pageOf(view feed.View, snap []feed.Candidate, page, limit int, excl domexcl.Set) feed.Page {
	p := feed.Paginate(view, snap, page, limit)
	p.Items = filterCandidates(p.Items, excl)
	p.Total = remaining(snap, 0, excl)
	p.Exhausted = p.Total == 0
	if p.HasMore {
		p.HasMore = remaining(snap, page*limit, excl) > 0
	}
	return p
}

// remaining counts snapshot entries from offset on that are not excluded.
func remaining(snap []feed.Candidate, offset int, excl domexcl.Set) int {
	n := 0
	for i := max(offset, 0); i < len(snap); i++ {
		if !excl.Contains(snap[i].ID) {
			n++
		}
	}
	return n
}

// refilterPage drops candidates excluded since the page was cached.
func refilterPage(p feed.Page, excl domexcl.Set) feed.Page {
	kept := filterCandidates(p.Items, excl)
	p.Total -= len(p.Items) - len(kept)
	p.Items = kept
	p.Cached = true
	return p
}

func filterCandidates(items []feed.Candidate, excl domexcl.Set) []feed.Candidate {
	out := make([]feed.Candidate, 0, len(items))
	for _, c := range items {
		if !excl.Contains(c.ID) {
			out = append(out, c)
		}
	}
	return out
}

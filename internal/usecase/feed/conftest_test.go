package feed

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchfeed/internal/domain"
	domexcl "github.com/kailas-cloud/matchfeed/internal/domain/exclusion"
	"github.com/kailas-cloud/matchfeed/internal/domain/feed"
)

type mockUsers struct {
	owner     *domain.User
	getErr    error
	sample    []*domain.User
	sampleErr error
	queries   []domain.SampleQuery
}

func (m *mockUsers) Get(_ context.Context, id string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.owner == nil || m.owner.ID != id {
		return nil, domain.ErrUserNotFound
	}
	return m.owner, nil
}

func (m *mockUsers) Sample(_ context.Context, q domain.SampleQuery) ([]*domain.User, error) {
	m.queries = append(m.queries, q)
	return m.sample, m.sampleErr
}

type mockExcluder struct {
	ids []string
	err error
}

func (m *mockExcluder) Compute(_ context.Context, ownerID string, _ ...domexcl.Option) (domexcl.Set, error) {
	if m.err != nil {
		return domexcl.Set{}, m.err
	}
	set := domexcl.New(m.ids...)
	set.Add(ownerID)
	return set, nil
}

// mockRanker scores candidates 100, 99, ... in input order.
type mockRanker struct{}

func (mockRanker) Rank(_ context.Context, _ *domain.User, candidates []*domain.User) []feed.Candidate {
	out := make([]feed.Candidate, 0, len(candidates))
	for i, c := range candidates {
		out = append(out, feed.Candidate{ID: c.ID, Score: 100 - i, Source: feed.SourceLive})
	}
	return out
}

type mockPool struct {
	entries    []feed.Candidate
	err        error
	entryCalls int
}

func (m *mockPool) Entries(_ context.Context, _ string) ([]feed.Candidate, error) {
	m.entryCalls++
	return m.entries, m.err
}

func (m *mockPool) TopCandidates(_ context.Context, _ string, n int, exclude domexcl.Set) []feed.Candidate {
	out := []feed.Candidate{}
	if m.err != nil {
		return out
	}
	for _, c := range m.entries {
		if !exclude.Contains(c.ID) && len(out) < n {
			out = append(out, c)
		}
	}
	return out
}

type mockCache struct {
	pages    map[string]feed.Page
	snaps    map[feed.View][]feed.Candidate
	pagePuts int
	snapPuts int
	disabled bool
}

func newMockCache() *mockCache {
	return &mockCache{pages: map[string]feed.Page{}, snaps: map[feed.View][]feed.Candidate{}}
}

func pageKey(view feed.View, page, limit int) string {
	return fmt.Sprintf("%s:%d:%d", view, page, limit)
}

func (m *mockCache) Page(_ context.Context, _ string, view feed.View, page, limit int) (feed.Page, bool) {
	p, ok := m.pages[pageKey(view, page, limit)]
	return p, ok && !m.disabled
}

func (m *mockCache) PutPage(_ context.Context, _ string, p feed.Page) {
	m.pagePuts++
	m.pages[pageKey(p.View, p.Page, p.Limit)] = p
}

func (m *mockCache) Snapshot(_ context.Context, _ string, view feed.View) ([]feed.Candidate, bool) {
	s, ok := m.snaps[view]
	return slices.Clone(s), ok && !m.disabled
}

func (m *mockCache) PutSnapshot(_ context.Context, _ string, view feed.View, snap []feed.Candidate) {
	m.snapPuts++
	m.snaps[view] = slices.Clone(snap)
}

type mockList struct {
	mu        sync.Mutex
	items     []string
	popErr    error
	locked    bool
	exhausted bool
	appendErr error
	onPop     func(m *mockList)
}

func (m *mockList) Pop(_ context.Context, _ string, n int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.onPop != nil {
		m.onPop(m)
	}
	if m.popErr != nil {
		return nil, m.popErr
	}
	n = min(n, len(m.items))
	out := slices.Clone(m.items[:n])
	m.items = m.items[n:]
	return out, nil
}

func (m *mockList) Len(_ context.Context, _ string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

func (m *mockList) Contents(_ context.Context, _ string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.items), nil
}

func (m *mockList) Append(_ context.Context, _ string, ids ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.items = append(m.items, ids...)
	return nil
}

func (m *mockList) AcquireRefillLock(_ context.Context, _ string, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked {
		return false, nil
	}
	m.locked = true
	return true, nil
}

func (m *mockList) ReleaseRefillLock(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locked = false
	return nil
}

func (m *mockList) MarkExhausted(_ context.Context, _ string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exhausted = true
	return nil
}

func (m *mockList) IsExhausted(_ context.Context, _ string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exhausted, nil
}

func (m *mockList) ClearExhausted(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exhausted = false
	return nil
}

type mockRefills struct {
	mu       sync.Mutex
	enqueued []string
	err      error
}

func (m *mockRefills) EnqueueRefill(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.enqueued = append(m.enqueued, ownerID)
	return nil
}

func (m *mockRefills) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.enqueued)
}

var errDown = errors.New("down")

type fixture struct {
	svc     *Service
	users   *mockUsers
	excl    *mockExcluder
	pool    *mockPool
	cache   *mockCache
	list    *mockList
	refills *mockRefills
}

func testOwner() *domain.User {
	return &domain.User{
		ID:         "owner",
		Gender:     "male",
		LookingFor: "female",
		Location:   domain.Location{Country: "DE", City: "Berlin"},
	}
}

func candidates(prefix string, n, topScore int) []feed.Candidate {
	out := make([]feed.Candidate, n)
	for i := range out {
		out[i] = feed.Candidate{ID: fmt.Sprintf("%s%02d", prefix, i), Score: topScore - i, Source: feed.SourcePool}
	}
	return out
}

func profiles(prefix string, n int) []*domain.User {
	out := make([]*domain.User, n)
	for i := range out {
		out[i] = &domain.User{ID: fmt.Sprintf("%s%02d", prefix, i)}
	}
	return out
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	f := &fixture{
		users:   &mockUsers{owner: testOwner()},
		excl:    &mockExcluder{},
		pool:    &mockPool{},
		cache:   newMockCache(),
		list:    &mockList{},
		refills: &mockRefills{},
	}
	f.svc = New(Deps{
		Users:   f.users,
		Excl:    f.excl,
		Ranker:  mockRanker{},
		Pool:    f.pool,
		Cache:   f.cache,
		List:    f.list,
		Refills: f.refills,
	}, cfg, zap.NewNop())
	f.svc.nowFunc = func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return f
}

func ids(items []feed.Candidate) []string {
	out := make([]string, len(items))
	for i, c := range items {
		out[i] = c.ID
	}
	return out
}

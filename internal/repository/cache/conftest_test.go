package cache

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchfeed/internal/db"
)

// mockStore is an in-memory kv/set store for tests.
type mockStore struct {
	kv    map[string][]byte
	sets  map[string]map[string]struct{}
	ttls  map[string]time.Duration
	getFn func(ctx context.Context, key string) ([]byte, error)
}

func newMockStore() *mockStore {
	return &mockStore{
		kv:   make(map[string][]byte),
		sets: make(map[string]map[string]struct{}),
		ttls: make(map[string]time.Duration),
	}
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	v, ok := m.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.kv[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.kv, k)
		delete(m.sets, k)
	}
	return nil
}

func (m *mockStore) SAdd(_ context.Context, key string, members ...string) error {
	if m.sets[key] == nil {
		m.sets[key] = make(map[string]struct{})
	}
	for _, v := range members {
		m.sets[key][v] = struct{}{}
	}
	return nil
}

func (m *mockStore) SMembers(_ context.Context, key string) ([]string, error) {
	out := make([]string, 0, len(m.sets[key]))
	for v := range m.sets[key] {
		out = append(out, v)
	}
	return out, nil
}

func (m *mockStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.ttls[key] = ttl
	return nil
}

func newTestCache(t *testing.T) (*Cache, *mockStore, *prometheus.CounterVec) {
	t.Helper()
	ms := newMockStore()
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_lookups_total"}, []string{"kind", "result"})
	cfg := Config{PageTTL: 3 * time.Minute, SnapshotTTL: 10 * time.Minute, ScoreTTL: time.Hour}
	return New(ms, cfg, lookups, zap.NewNop()), ms, lookups
}

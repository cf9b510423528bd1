package pool

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/matchfeed/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	zaddFn      func(ctx context.Context, key string, members []db.ScoredMember) error
	zrevrangeFn func(ctx context.Context, key string, start, stop int64) ([]db.ScoredMember, error)
	zremFn      func(ctx context.Context, key string, members ...string) error
	zremRankFn  func(ctx context.Context, key string, start, stop int64) error
	renameFn    func(ctx context.Context, src, dst string) error
	expireFn    func(ctx context.Context, key string, ttl time.Duration) error
	delFn       func(ctx context.Context, keys ...string) error
}

func (m *mockStore) ZAdd(ctx context.Context, key string, members []db.ScoredMember) error {
	if m.zaddFn != nil {
		return m.zaddFn(ctx, key, members)
	}
	return nil
}

func (m *mockStore) ZRevRange(ctx context.Context, key string, start, stop int64) ([]db.ScoredMember, error) {
	if m.zrevrangeFn != nil {
		return m.zrevrangeFn(ctx, key, start, stop)
	}
	return nil, nil
}

func (m *mockStore) ZRem(ctx context.Context, key string, members ...string) error {
	if m.zremFn != nil {
		return m.zremFn(ctx, key, members...)
	}
	return nil
}

func (m *mockStore) ZRemRangeByRank(ctx context.Context, key string, start, stop int64) error {
	if m.zremRankFn != nil {
		return m.zremRankFn(ctx, key, start, stop)
	}
	return nil
}

func (m *mockStore) Rename(ctx context.Context, src, dst string) error {
	if m.renameFn != nil {
		return m.renameFn(ctx, src, dst)
	}
	return nil
}

func (m *mockStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if m.expireFn != nil {
		return m.expireFn(ctx, key, ttl)
	}
	return nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	r := New(ms, 0)
	r.newID = func() string { return "abc" }
	return r, ms
}

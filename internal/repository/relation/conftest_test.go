package relation

import (
	"context"
	"testing"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	saddFn      func(ctx context.Context, key string, members ...string) error
	sismemberFn func(ctx context.Context, key, member string) (bool, error)
	sunionFn    func(ctx context.Context, keys ...string) ([]string, error)
}

func (m *mockStore) SAdd(ctx context.Context, key string, members ...string) error {
	if m.saddFn != nil {
		return m.saddFn(ctx, key, members...)
	}
	return nil
}

func (m *mockStore) SIsMember(ctx context.Context, key, member string) (bool, error) {
	if m.sismemberFn != nil {
		return m.sismemberFn(ctx, key, member)
	}
	return false, nil
}

func (m *mockStore) SUnion(ctx context.Context, keys ...string) ([]string, error) {
	if m.sunionFn != nil {
		return m.sunionFn(ctx, keys...)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

package feedlist

import (
	"context"
	"testing"
	"time"
)

// mockStore is an in-memory list/kv store for tests.
type mockStore struct {
	lists map[string][]string
	kv    map[string][]byte
	ttls  map[string]time.Duration

	errFn func(op string) error
}

func newMockStore() *mockStore {
	return &mockStore{
		lists: make(map[string][]string),
		kv:    make(map[string][]byte),
		ttls:  make(map[string]time.Duration),
	}
}

func (m *mockStore) fail(op string) error {
	if m.errFn != nil {
		return m.errFn(op)
	}
	return nil
}

func (m *mockStore) RPush(_ context.Context, key string, values ...string) error {
	if err := m.fail("rpush"); err != nil {
		return err
	}
	m.lists[key] = append(m.lists[key], values...)
	return nil
}

func (m *mockStore) LPopCount(_ context.Context, key string, count int) ([]string, error) {
	if err := m.fail("lpop"); err != nil {
		return nil, err
	}
	l := m.lists[key]
	n := min(count, len(l))
	out := append([]string(nil), l[:n]...)
	m.lists[key] = l[n:]
	return out, nil
}

func (m *mockStore) LLen(_ context.Context, key string) (int64, error) {
	if err := m.fail("llen"); err != nil {
		return 0, err
	}
	return int64(len(m.lists[key])), nil
}

func (m *mockStore) LRange(_ context.Context, key string, _, _ int64) ([]string, error) {
	if err := m.fail("lrange"); err != nil {
		return nil, err
	}
	return append([]string(nil), m.lists[key]...), nil
}

func (m *mockStore) LRem(_ context.Context, key string, value string) error {
	if err := m.fail("lrem"); err != nil {
		return err
	}
	var kept []string
	for _, v := range m.lists[key] {
		if v != value {
			kept = append(kept, v)
		}
	}
	m.lists[key] = kept
	return nil
}

func (m *mockStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.ttls[key] = ttl
	return m.fail("expire")
}

func (m *mockStore) SetNX(_ context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	if err := m.fail("setnx"); err != nil {
		return false, err
	}
	if _, ok := m.kv[key]; ok {
		return false, nil
	}
	m.kv[key] = value
	m.ttls[key] = ttl
	return true, nil
}

func (m *mockStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if err := m.fail("set"); err != nil {
		return err
	}
	m.kv[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockStore) Exists(_ context.Context, key string) (bool, error) {
	if err := m.fail("exists"); err != nil {
		return false, err
	}
	_, ok := m.kv[key]
	return ok, nil
}

func (m *mockStore) Del(_ context.Context, keys ...string) error {
	if err := m.fail("del"); err != nil {
		return err
	}
	for _, k := range keys {
		delete(m.kv, k)
		delete(m.lists, k)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := newMockStore()
	return New(ms, time.Hour), ms
}

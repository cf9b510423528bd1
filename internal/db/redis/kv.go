package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/matchfeed/internal/db"
)

// scanBatch is the COUNT hint per SCAN round trip.
const scanBatch = 250

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.do(ctx, s.b().Get().Key(key).Build()).AsBytes()
	switch {
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	case err != nil:
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// SetWithTTL stores a value that expires after ttl (millisecond precision).
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	cmd := s.b().Set().Key(key).Value(rueidis.BinaryString(value)).PxMilliseconds(ttlMillis(ttl)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// SetNX stores value only if key is absent. Reports whether the key was set.
func (s *Store) SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	cmd := s.b().Set().Key(key).Value(rueidis.BinaryString(value)).Nx().PxMilliseconds(ttlMillis(ttl)).Build()
	err := s.do(ctx, cmd).Error()
	switch {
	case rueidis.IsRedisNil(err):
		return false, nil
	case err != nil:
		return false, &db.Error{Op: db.OpSet, Err: err}
	}
	return true, nil
}

// Expire resets the TTL of key. A missing key is not an error.
func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	cmd := s.b().Pexpire().Key(key).Milliseconds(ttlMillis(ttl)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpExpire, Err: err}
	}
	return nil
}

// Del deletes keys. No keys is a no-op.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.do(ctx, s.b().Del().Key(keys...).Build()).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Exists checks if a key exists.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.do(ctx, s.b().Exists().Key(key).Build()).AsInt64()
	if err != nil {
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
	return n > 0, nil
}

// Rename atomically replaces dst with src.
func (s *Store) Rename(ctx context.Context, src, dst string) error {
	if err := s.do(ctx, s.b().Rename().Key(src).Newkey(dst).Build()).Error(); err != nil {
		if isRedisErr(err, "no such key") {
			return db.ErrKeyNotFound
		}
		return &db.Error{Op: db.OpRename, Err: err}
	}
	return nil
}

// Scan returns every key matching pattern. SCAN may repeat keys across
// rounds, so the result is deduplicated.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	seen := make(map[string]struct{})
	var keys []string
	var cursor uint64
	for {
		entry, err := s.do(ctx, s.b().Scan().Cursor(cursor).Match(pattern).Count(scanBatch).Build()).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		for _, k := range entry.Elements {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		if cursor = entry.Cursor; cursor == 0 {
			return keys, nil
		}
	}
}

// ttlMillis rounds up to at least one millisecond; PX rejects zero.
func ttlMillis(ttl time.Duration) int64 {
	return max(ttl.Milliseconds(), 1)
}

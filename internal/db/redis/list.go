package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/matchfeed/internal/db"
)

// RPush appends values to the tail of a list.
func (s *Store) RPush(ctx context.Context, key string, values ...string) error {
	if len(values) == 0 {
		return nil
	}
	cmd := s.b().Rpush().Key(key).Element(values...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpRPush, Err: err}
	}
	return nil
}

// LPopCount removes and returns up to count elements from the head of a list.
// A missing key yields an empty slice.
func (s *Store) LPopCount(ctx context.Context, key string, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}
	cmd := s.b().Lpop().Key(key).Count(int64(count)).Build()
	vals, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, &db.Error{Op: db.OpLPop, Err: err}
	}
	return vals, nil
}

// LLen returns the list length (0 for a missing key).
func (s *Store) LLen(ctx context.Context, key string) (int64, error) {
	cmd := s.b().Llen().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpLLen, Err: err}
	}
	return n, nil
}

// LRange returns list elements between start and stop (inclusive, negative from tail).
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	cmd := s.b().Lrange().Key(key).Start(start).Stop(stop).Build()
	vals, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}
	return vals, nil
}

// LRem removes all occurrences of value from a list.
func (s *Store) LRem(ctx context.Context, key string, value string) error {
	cmd := s.b().Lrem().Key(key).Count(0).Element(value).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpLRem, Err: err}
	}
	return nil
}

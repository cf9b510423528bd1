package redis

import (
	"context"
	"strconv"

	"github.com/kailas-cloud/matchfeed/internal/db"
)

// ZAdd adds members with scores to a sorted set.
func (s *Store) ZAdd(ctx context.Context, key string, members []db.ScoredMember) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Zadd().Key(key).ScoreMember()
	for _, m := range members {
		cmd = cmd.ScoreMember(m.Score, m.Member)
	}
	if err := s.do(ctx, cmd.Build()).Error(); err != nil {
		return &db.Error{Op: db.OpZAdd, Err: err}
	}
	return nil
}

// ZRevRange returns members with scores by descending score (ZRANGE ... REV WITHSCORES).
func (s *Store) ZRevRange(ctx context.Context, key string, start, stop int64) ([]db.ScoredMember, error) {
	cmd := s.b().Zrange().Key(key).
		Min(strconv.FormatInt(start, 10)).
		Max(strconv.FormatInt(stop, 10)).
		Rev().Withscores().Build()
	scores, err := s.do(ctx, cmd).AsZScores()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRange, Err: err}
	}
	out := make([]db.ScoredMember, len(scores))
	for i, z := range scores {
		out[i] = db.ScoredMember{Member: z.Member, Score: z.Score}
	}
	return out, nil
}

// ZRem removes members from a sorted set.
func (s *Store) ZRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Zrem().Key(key).Member(members...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZRem, Err: err}
	}
	return nil
}

// ZRemRangeByRank removes members between ascending ranks start and stop.
func (s *Store) ZRemRangeByRank(ctx context.Context, key string, start, stop int64) error {
	cmd := s.b().Zremrangebyrank().Key(key).Start(start).Stop(stop).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZRemRangeByRank, Err: err}
	}
	return nil
}

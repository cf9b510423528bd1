package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/matchfeed/internal/domain/filter"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	JSONStore
	KVStore
	SortedSetStore
	ListStore
	SetStore
	IndexManager
	Searcher
	Scan(ctx context.Context, pattern string) ([]string, error)
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetNX stores value only if key is absent. Returns true if the key was set.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// ScoredMember is a single sorted set entry.
type ScoredMember struct {
	Member string
	Score  float64
}

// SortedSetStore provides sorted set operations.
type SortedSetStore interface {
	ZAdd(ctx context.Context, key string, members []ScoredMember) error
	// ZRevRange returns members ordered by descending score, ranks start..stop inclusive.
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]ScoredMember, error)
	ZRem(ctx context.Context, key string, members ...string) error
	// ZRemRangeByRank removes members by ascending rank; (0, n-1) drops the lowest n.
	ZRemRangeByRank(ctx context.Context, key string, start, stop int64) error
	Rename(ctx context.Context, src, dst string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// ListStore provides list operations.
type ListStore interface {
	RPush(ctx context.Context, key string, values ...string) error
	// LPopCount removes and returns up to count elements from the head.
	LPopCount(ctx context.Context, key string, count int) ([]string, error)
	LLen(ctx context.Context, key string) (int64, error)
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	LRem(ctx context.Context, key string, value string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error
}

// SetStore provides set operations.
type SetStore interface {
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SIsMember(ctx context.Context, key, member string) (bool, error)
	SMembers(ctx context.Context, key string) ([]string, error)
	SUnion(ctx context.Context, keys ...string) ([]string, error)
}

// IndexManager provides FT index lifecycle operations.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchList(ctx context.Context, q *ListQuery) (*SearchResult, error)
	SearchCount(ctx context.Context, index string, filters filter.Expression) (int, error)
}

// Package jobs runs background work over a watermill router. Jobs are sharded
// by owner across topics so one owner's jobs never run concurrently.
package jobs

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/kailas-cloud/matchfeed/internal/domain"
)

// Type names a job kind.
type Type string

const (
	// TypePoolRebuild recomputes an owner's ranking pool.
	TypePoolRebuild Type = "pool.rebuild"
	// TypeFeedRefill tops up an owner's swipe feed.
	TypeFeedRefill Type = "feed.refill"
	// TypeSwipeRecord persists a swipe.
	TypeSwipeRecord Type = "swipe.record"
)

// Types lists every job kind.
var Types = []Type{TypePoolRebuild, TypeFeedRefill, TypeSwipeRecord}

const (
	topicPrefix  = "matchfeed-jobs-"
	metadataType = "job_type"
)

// Payload is the JSON body of every job.
type Payload struct {
	OwnerID string        `json:"owner_id"`
	Swipe   *domain.Swipe `json:"swipe,omitempty"`
}

// Shard maps an owner onto one of n shards.
func Shard(ownerID string, n int) int {
	if n <= 1 {
		return 0
	}
	return int(xxhash.Sum64String(ownerID) % uint64(n))
}

// Topic is the topic of shard i for t. Dots are replaced since NATS stream names forbid them.
func Topic(t Type, shard int) string {
	return fmt.Sprintf("%s%s-%d", topicPrefix, strings.ReplaceAll(string(t), ".", "-"), shard)
}

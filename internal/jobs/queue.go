package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	natsgo "github.com/nats-io/nats.go"

	"github.com/kailas-cloud/matchfeed/internal/domain"
)

// Queue publishes jobs onto their owner's shard.
type Queue struct {
	pub    message.Publisher
	shards map[Type]int
}

// NewQueue creates a Queue. shards gives the topic count per type; missing types use one topic.
func NewQueue(pub message.Publisher, shards map[Type]int) *Queue {
	return &Queue{pub: pub, shards: shards}
}

// Enqueue publishes a job for p.OwnerID.
func (q *Queue) Enqueue(_ context.Context, t Type, p Payload) error {
	if p.OwnerID == "" {
		return fmt.Errorf("%w: job without owner", domain.ErrInvalidInput)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", t, err)
	}

	msg := message.NewMessage(uuid.NewString(), data)
	msg.Metadata.Set(metadataType, string(t))
	// JetStream de-duplicates redelivered publishes by this header
	msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)

	topic := Topic(t, Shard(p.OwnerID, q.shards[t]))
	if err := q.pub.Publish(topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// EnqueueRebuild schedules a ranking pool rebuild.
func (q *Queue) EnqueueRebuild(ctx context.Context, ownerID string) error {
	return q.Enqueue(ctx, TypePoolRebuild, Payload{OwnerID: ownerID})
}

// EnqueueRefill schedules a swipe feed refill.
func (q *Queue) EnqueueRefill(ctx context.Context, ownerID string) error {
	return q.Enqueue(ctx, TypeFeedRefill, Payload{OwnerID: ownerID})
}

// EnqueueSwipe schedules swipe persistence on the swiping owner's shard.
func (q *Queue) EnqueueSwipe(ctx context.Context, s domain.Swipe) error {
	return q.Enqueue(ctx, TypeSwipeRecord, Payload{OwnerID: s.OwnerID, Swipe: &s})
}

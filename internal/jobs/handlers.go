package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchfeed/internal/domain"
	logpkg "github.com/kailas-cloud/matchfeed/internal/logger"
	"github.com/kailas-cloud/matchfeed/internal/metrics"
	"github.com/kailas-cloud/matchfeed/internal/usecase/interaction"
)

// PoolRebuilder rebuilds ranking pools.
type PoolRebuilder interface {
	Rebuild(ctx context.Context, ownerID string) (int, error)
}

// FeedRefiller refills swipe feeds.
type FeedRefiller interface {
	Refill(ctx context.Context, ownerID string) (int, error)
}

// SwipeApplier persists swipes.
type SwipeApplier interface {
	Apply(ctx context.Context, s domain.Swipe) (interaction.Result, error)
}

// Handlers executes jobs against the use cases.
type Handlers struct {
	pools  PoolRebuilder
	feeds  FeedRefiller
	swipes SwipeApplier
	logger *zap.Logger
}

// NewHandlers creates job handlers.
func NewHandlers(pools PoolRebuilder, feeds FeedRefiller, swipes SwipeApplier, logger *zap.Logger) *Handlers {
	return &Handlers{pools: pools, feeds: feeds, swipes: swipes, logger: logger}
}

// errPermanent marks jobs that will never succeed. They are acked and dropped.
var errPermanent = errors.New("permanent job failure")

// Handle returns the watermill handler for t. Transient failures are returned
// so the retry middleware can redeliver.
func (h *Handlers) Handle(t Type) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		ctx := logpkg.ContextWithLogger(msg.Context(), h.logger.With(
			zap.String("type", string(t)),
			zap.String("message_uuid", msg.UUID),
		))
		err := h.run(ctx, t, msg.Payload)

		outcome := "ok"
		switch {
		case err == nil:
		case errors.Is(err, errPermanent):
			outcome = "dropped"
			logpkg.FromContext(ctx).Warn("Dropping job", zap.Error(err))
			err = nil
		default:
			outcome = "error"
		}
		metrics.JobsTotal.WithLabelValues(string(t), outcome).Inc()
		return err
	}
}

func (h *Handlers) run(ctx context.Context, t Type, data []byte) error {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: decode payload: %w", errPermanent, err)
	}
	if p.OwnerID == "" {
		return fmt.Errorf("%w: missing owner", errPermanent)
	}
	ctx = logpkg.With(ctx, zap.String("owner", p.OwnerID))
	logpkg.FromContext(ctx).Debug("Running job")

	var err error
	switch t {
	case TypePoolRebuild:
		_, err = h.pools.Rebuild(ctx, p.OwnerID)
	case TypeFeedRefill:
		_, err = h.feeds.Refill(ctx, p.OwnerID)
	case TypeSwipeRecord:
		if p.Swipe == nil {
			return fmt.Errorf("%w: missing swipe", errPermanent)
		}
		_, err = h.swipes.Apply(ctx, *p.Swipe)
	default:
		return fmt.Errorf("%w: unknown job type %q", errPermanent, t)
	}

	if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrSelfInteraction) {
		return fmt.Errorf("%w: %w", errPermanent, err)
	}
	return err
}

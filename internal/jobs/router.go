package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// RouterConfig tunes delivery and retries.
type RouterConfig struct {
	CloseTimeout         time.Duration
	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
	PoisonQueueTopic     string // empty disables the poison queue
	Shards               map[Type]int
}

// DefaultRouterConfig returns production defaults.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 500 * time.Millisecond,
		RetryMaxInterval:     10 * time.Second,
		RetryMultiplier:      2.0,
		PoisonQueueTopic:     topicPrefix + "poison",
		Shards: map[Type]int{
			TypePoolRebuild: 4,
			TypeFeedRefill:  8,
			TypeSwipeRecord: 8,
		},
	}
}

// Router consumes every shard of every job type.
type Router struct {
	router *message.Router
}

// NewRouter wires handlers onto all shard topics of sub.
func NewRouter(
	cfg RouterConfig, sub message.Subscriber, poisonPub message.Publisher,
	h *Handlers, logger watermill.LoggerAdapter,
) (*Router, error) {
	wmRouter, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// first added is outermost: exhausted retries reach the poison queue,
	// panics become errors that are retried
	if poisonPub != nil && cfg.PoisonQueueTopic != "" {
		poisonQueue, err := middleware.PoisonQueue(poisonPub, cfg.PoisonQueueTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		wmRouter.AddMiddleware(poisonQueue)
	}

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		Logger:          logger,
	}
	wmRouter.AddMiddleware(retry.Middleware, middleware.Recoverer)

	for _, t := range Types {
		n := max(cfg.Shards[t], 1)
		for i := range n {
			wmRouter.AddConsumerHandler(
				fmt.Sprintf("%s-%d", t, i),
				Topic(t, i),
				sub,
				h.Handle(t),
			)
		}
	}

	return &Router{router: wmRouter}, nil
}

// Run blocks until ctx is canceled or the router is closed.
func (r *Router) Run(ctx context.Context) error {
	return r.router.Run(ctx)
}

// Running is closed once all handlers are subscribed.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Close stops consuming, waiting up to CloseTimeout for in-flight jobs.
func (r *Router) Close() error {
	return r.router.Close()
}

package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
)

// Queue drivers.
const (
	DriverMemory = "memory"
	DriverNATS   = "nats"
)

// TransportConfig selects and tunes the message transport.
type TransportConfig struct {
	Driver        string
	NATSURL       string
	MaxReconnects int
	ReconnectWait time.Duration
	AckWait       time.Duration
	MaxDeliver    int
	CloseTimeout  time.Duration
}

// Transport bundles a publisher and subscriber pair.
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
	conn       *natsgo.Conn // health probe, nil for memory
}

// NewTransport builds the in-process or NATS JetStream transport.
func NewTransport(cfg TransportConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 256,
			Persistent:          false,
		}, logger)
		return &Transport{Publisher: ch, Subscriber: ch}, nil
	case DriverNATS:
		return newNATSTransport(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown queue driver %q", cfg.Driver)
	}
}

func newNATSTransport(cfg TransportConfig, logger watermill.LoggerAdapter) (*Transport, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	conn, err := natsgo.Connect(cfg.NATSURL, natsOpts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         cfg.NATSURL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.NATSURL,
		QueueGroupPrefix: "matchfeed",
		SubscribersCount: 1, // one consumer per shard keeps an owner's jobs serial
		AckWaitTimeout:   cfg.AckWait,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: true,
			AckAsync:      false,
			DurablePrefix: "matchfeed",
			SubscribeOptions: []natsgo.SubOpt{
				natsgo.MaxDeliver(cfg.MaxDeliver),
				natsgo.MaxAckPending(1),
				natsgo.AckWait(cfg.AckWait),
			},
		},
	}, logger)
	if err != nil {
		_ = pub.Close()
		conn.Close()
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}

	return &Transport{Publisher: pub, Subscriber: sub, conn: conn}, nil
}

// HealthCheck reports whether the broker connection is up.
func (t *Transport) HealthCheck(_ context.Context) error {
	if t.conn != nil && !t.conn.IsConnected() {
		return fmt.Errorf("nats: %s", t.conn.Status())
	}
	return nil
}

// Close shuts down both sides of the transport.
func (t *Transport) Close() error {
	err := errors.Join(t.Publisher.Close(), t.Subscriber.Close())
	if t.conn != nil {
		t.conn.Close()
	}
	return err
}

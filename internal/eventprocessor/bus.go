// SitePulse - Lightweight Behavioral Telemetry Collection
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sitepulse

package eventprocessor

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

	"github.com/tomtom215/sitepulse/internal/config"
)

const (
	memoryOutputBuffer = 256
	natsAckWait        = 30 * time.Second
	natsCloseTimeout   = 10 * time.Second
	natsSubscribers    = 1
)

// Bus bundles the raw publisher and subscriber for one backend plus the
// embedded server when this process runs one.
type Bus struct {
	Backend    string
	Topic      string
	Publisher  message.Publisher
	Subscriber message.Subscriber

	embedded *EmbeddedServer
}

// NewBus builds the transport named by cfg.Backend. The memory backend is
// a single gochannel acting as both ends. The nats backend uses core NATS
// with an empty queue group so every instance sees every event.
func NewBus(cfg config.EventBusConfig, logger watermill.LoggerAdapter) (*Bus, error) {
	switch cfg.Backend {
	case config.BusMemory, "":
		ch := gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: memoryOutputBuffer,
		}, logger)
		return &Bus{Backend: config.BusMemory, Topic: cfg.Topic, Publisher: ch, Subscriber: ch}, nil

	case config.BusNATS:
		return newNATSBus(cfg, logger)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

func newNATSBus(cfg config.EventBusConfig, logger watermill.LoggerAdapter) (*Bus, error) {
	bus := &Bus{Backend: config.BusNATS, Topic: cfg.Topic}
	url := cfg.NATSURL

	if cfg.Embedded {
		srv, err := NewEmbeddedServer(cfg.EmbeddedHost, cfg.EmbeddedPort)
		if err != nil {
			return nil, err
		}
		bus.embedded = srv
		url = srv.ClientURL()
	}

	opts := natsOptions(cfg, logger)

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: opts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream:   wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		bus.shutdownEmbedded()
		return nil, fmt.Errorf("create NATS publisher: %w", err)
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              url,
		QueueGroupPrefix: "",
		SubscribersCount: natsSubscribers,
		AckWaitTimeout:   natsAckWait,
		CloseTimeout:     natsCloseTimeout,
		NatsOptions:      opts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		_ = pub.Close()
		bus.shutdownEmbedded()
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}

	bus.Publisher = pub
	bus.Subscriber = sub
	return bus, nil
}

func natsOptions(cfg config.EventBusConfig, logger watermill.LoggerAdapter) []natsgo.Option {
	return []natsgo.Option{
		natsgo.Name("sitepulse"),
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
}

// Close releases the subscriber, publisher and embedded server. The
// memory backend shares one object for both ends and is closed once.
func (b *Bus) Close() error {
	var errs []error
	if b.Subscriber != nil {
		if err := b.Subscriber.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close subscriber: %w", err))
		}
	}
	if b.Publisher != nil && b.Backend != config.BusMemory {
		if err := b.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if err := b.shutdownEmbedded(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (b *Bus) shutdownEmbedded() error {
	if b.embedded == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), natsCloseTimeout)
	defer cancel()
	err := b.embedded.Shutdown(ctx)
	b.embedded = nil
	return err
}

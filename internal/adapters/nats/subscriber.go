package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// SubscribeOverlayEvents delivers overlay events to handler through a durable
// consumer whose deliver group is also named durable. Every process joining
// with the same name shares the stream, each event going to one of them.
// Messages the handler fails on are redelivered up to three times.
func (s *Subscriber) SubscribeOverlayEvents(ctx context.Context, durable string, handler func(ctx context.Context, event *domain.OverlayEvent) error) error {
	sub, err := s.js.QueueSubscribe(OverlaySubjectAll, durable, func(msg *nats.Msg) {
		var event domain.OverlayEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			// Poison message: redelivery cannot fix it.
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &event); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable(durable),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}

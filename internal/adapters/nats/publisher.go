package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
)

// Subjects and stream used for overlay events.
const (
	OverlayStream      = "OVERLAY_EVENTS"
	OverlaySubjectRoot = "overlay.updated"
	OverlaySubjectAll  = OverlaySubjectRoot + ".>"
)

// OverlaySubject returns the subject events for one alignment are published on.
func OverlaySubject(alignmentID string) string {
	return OverlaySubjectRoot + "." + alignmentID
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:      OverlayStream,
		Subjects:  []string{OverlaySubjectAll},
		Retention: nats.InterestPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishOverlayEvent publishes a placement change for one alignment.
func (p *Publisher) PublishOverlayEvent(ctx context.Context, event *domain.OverlayEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(OverlaySubject(event.AlignmentID), data, nats.Context(ctx))
	return err
}

// Ready reports whether the connection is up.
func (p *Publisher) Ready() bool {
	return p.conn.IsConnected()
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}

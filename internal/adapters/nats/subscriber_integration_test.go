//go:build integration
// +build integration

package natsadapter_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	natsadapter "github.com/samirrijal/mapoverlay/internal/adapters/nats"
	"github.com/samirrijal/mapoverlay/internal/core/domain"
	"github.com/samirrijal/mapoverlay/internal/pkg/config"
)

func TestSubscribeOverlayEvents_SharedDurable_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	cfg, err := config.Load("mapoverlay-test")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		t.Fatalf("publisher: %v", err)
	}
	defer pub.Close()

	// Two API instances register the same consumer name.
	durable := fmt.Sprintf("janitor-test-%d", time.Now().UnixNano())
	var handled atomic.Int32
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
		if err != nil {
			t.Fatalf("subscriber %d: %v", i, err)
		}
		defer sub.Close()
		err = sub.SubscribeOverlayEvents(ctx, durable, func(ctx context.Context, e *domain.OverlayEvent) error {
			handled.Add(1)
			return nil
		})
		if err != nil {
			t.Fatalf("subscribe %d: %v", i, err)
		}
	}

	event := &domain.OverlayEvent{AlignmentID: durable, Kind: domain.EventDeleted, At: time.Now()}
	if err := pub.PublishOverlayEvent(ctx, event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for handled.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	// Give a duplicate delivery time to show up.
	time.Sleep(300 * time.Millisecond)
	if n := handled.Load(); n != 1 {
		t.Errorf("expected the event handled once across instances, got %d", n)
	}
}

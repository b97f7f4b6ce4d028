package ports

import (
	"context"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishOverlayEvent(ctx context.Context, event *domain.OverlayEvent) error
}

// CacheService provides read-through caching.
// Entries expire after their TTL; Delete evicts explicitly.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// EventSubscriber consumes domain events from a message broker.
type EventSubscriber interface {
	SubscribeOverlayEvents(ctx context.Context, durable string, handler func(ctx context.Context, event *domain.OverlayEvent) error) error
}

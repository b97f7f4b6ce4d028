package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
	"github.com/samirrijal/mapoverlay/internal/core/ports"
	"github.com/samirrijal/mapoverlay/internal/pkg/metrics"
)

var (
	// ErrPageImageTooLarge is returned when an upload exceeds the configured limit.
	ErrPageImageTooLarge = errors.New("page image too large")
	// ErrUnsupportedImageType is returned for anything that is not an image/* payload.
	ErrUnsupportedImageType = errors.New("unsupported page image content type")
)

// PageImageService keeps rasterized source pages in the cache. Entries are
// evicted by TTL or explicitly when the alignment is removed.
type PageImageService struct {
	alignments ports.AlignmentRepository
	cache      ports.CacheService
	ttlSeconds int
	maxBytes   int
}

// NewPageImageService creates a new PageImageService.
func NewPageImageService(alignments ports.AlignmentRepository, cache ports.CacheService, ttlSeconds, maxMB int) *PageImageService {
	return &PageImageService{
		alignments: alignments,
		cache:      cache,
		ttlSeconds: ttlSeconds,
		maxBytes:   maxMB << 20,
	}
}

// Put stores the page image of an existing alignment.
func (s *PageImageService) Put(ctx context.Context, alignmentID string, img domain.PageImage) error {
	if !strings.HasPrefix(img.ContentType, "image/") {
		return fmt.Errorf("%w: %q", ErrUnsupportedImageType, img.ContentType)
	}
	if len(img.Data) == 0 || len(img.Data) > s.maxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrPageImageTooLarge, len(img.Data), s.maxBytes)
	}
	if _, err := s.alignments.GetByID(ctx, alignmentID); err != nil {
		return err
	}

	data, err := json.Marshal(img)
	if err != nil {
		return fmt.Errorf("marshal page image: %w", err)
	}
	if err := s.cache.Set(ctx, pageImageCacheKey(alignmentID), data, s.ttlSeconds); err != nil {
		return fmt.Errorf("store page image: %w", err)
	}
	return nil
}

// Get returns the cached page image, or ports.ErrNotFound once it has expired.
func (s *PageImageService) Get(ctx context.Context, alignmentID string) (*domain.PageImage, error) {
	data, err := s.cache.Get(ctx, pageImageCacheKey(alignmentID))
	if err != nil {
		metrics.CacheMisses.WithLabelValues("page_image").Inc()
		return nil, ports.ErrNotFound
	}
	var img domain.PageImage
	if err := json.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("decode page image: %w", err)
	}
	metrics.CacheHits.WithLabelValues("page_image").Inc()
	return &img, nil
}

// Evict drops the page image of an alignment.
func (s *PageImageService) Evict(ctx context.Context, alignmentID string) error {
	return s.cache.Delete(ctx, pageImageCacheKey(alignmentID))
}

func pageImageCacheKey(id string) string {
	return "alignments:page:" + id
}

// HandleOverlayEvent drops the page image once its alignment is deleted.
func (s *PageImageService) HandleOverlayEvent(ctx context.Context, ev *domain.OverlayEvent) error {
	if ev.Kind != domain.EventDeleted {
		return nil
	}
	return s.Evict(ctx, ev.AlignmentID)
}

package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
	"github.com/samirrijal/mapoverlay/internal/core/georef"
	"github.com/samirrijal/mapoverlay/internal/core/ports"
	"github.com/samirrijal/mapoverlay/internal/pkg/geospatial"
	"github.com/samirrijal/mapoverlay/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/mapoverlay/internal/core/usecases")

const alignmentCacheTTL = 600 // seconds

// AlignmentService manages georeferencing sessions: estimating a transform
// from three reference pairs and keeping the overlay placement up to date.
type AlignmentService struct {
	alignments     ports.AlignmentRepository
	cache          ports.CacheService
	events         ports.EventPublisher
	defaultOpacity float64

	newID func() string
	now   func() time.Time
}

// NewAlignmentService creates a new AlignmentService. cache and events may be nil.
func NewAlignmentService(
	alignments ports.AlignmentRepository,
	cache ports.CacheService,
	events ports.EventPublisher,
	defaultOpacity float64,
) *AlignmentService {
	return &AlignmentService{
		alignments:     alignments,
		cache:          cache,
		events:         events,
		defaultOpacity: defaultOpacity,
		newID:          uuid.NewString,
		now:            time.Now,
	}
}

// Create estimates the transform for page from pairs and places the overlay
// on the resulting bounds at the default opacity.
func (s *AlignmentService) Create(ctx context.Context, name string, page domain.Rectangle, pairs []domain.CorrespondencePair) (*domain.Alignment, error) {
	ctx, span := tracer.Start(ctx, "AlignmentService.Create")
	defer span.End()

	if err := georef.ValidateRectangle(page); err != nil {
		return nil, err
	}

	fit, err := s.fit(ctx, page, pairs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "estimate transform")
		return nil, err
	}

	placement, err := georef.NewPlacement(fit.bounds, s.defaultOpacity)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	a := &domain.Alignment{
		ID:             s.newID(),
		Name:           name,
		Page:           page,
		Pairs:          append([]domain.CorrespondencePair(nil), pairs...),
		Transform:      fit.transform,
		OriginalBounds: fit.bounds,
		Placement:      placement,
		FitError:       fit.errorMeters,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	span.SetAttributes(attribute.String("alignment.id", a.ID))

	if err := s.alignments.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create alignment: %w", err)
	}

	s.store(ctx, a)
	s.publish(ctx, a, domain.EventCreated)
	return a, nil
}

// Get returns a single alignment.
func (s *AlignmentService) Get(ctx context.Context, id string) (*domain.Alignment, error) {
	cacheKey := alignmentCacheKey(id)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var a domain.Alignment
			if err := json.Unmarshal(data, &a); err == nil {
				metrics.CacheHits.WithLabelValues("alignment").Inc()
				return &a, nil
			}
		}
		metrics.CacheMisses.WithLabelValues("alignment").Inc()
	}

	a, err := s.alignments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.store(ctx, a)
	return a, nil
}

// List returns all alignments.
func (s *AlignmentService) List(ctx context.Context) ([]domain.Alignment, error) {
	return s.alignments.List(ctx)
}

// Move recenters the overlay on center. The spans always come from the
// bounds computed at estimation time, never from the current placement.
func (s *AlignmentService) Move(ctx context.Context, id string, center domain.GeoPoint) (*domain.Alignment, error) {
	if err := georef.ValidateGeoPoint(center); err != nil {
		return nil, err
	}

	a, err := s.alignments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.Placement = georef.MovePlacement(a.Placement, a.OriginalBounds, center)
	if err := s.update(ctx, a, domain.EventMoved); err != nil {
		return nil, err
	}
	return a, nil
}

// SetOpacity changes only the overlay opacity.
func (s *AlignmentService) SetOpacity(ctx context.Context, id string, opacity float64) (*domain.Alignment, error) {
	if err := georef.ValidateOpacity(opacity); err != nil {
		return nil, err
	}

	a, err := s.alignments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	a.Placement, err = georef.WithOpacity(a.Placement, opacity)
	if err != nil {
		return nil, err
	}
	if err := s.update(ctx, a, domain.EventOpacity); err != nil {
		return nil, err
	}
	return a, nil
}

// UpdatePairs replaces the reference pairs. The transform is re-estimated and
// the overlay goes back to the new bounds; the opacity is kept. On failure the
// stored alignment is left untouched.
func (s *AlignmentService) UpdatePairs(ctx context.Context, id string, pairs []domain.CorrespondencePair) (*domain.Alignment, error) {
	ctx, span := tracer.Start(ctx, "AlignmentService.UpdatePairs")
	defer span.End()
	span.SetAttributes(attribute.String("alignment.id", id))

	a, err := s.alignments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	fit, err := s.fit(ctx, a.Page, pairs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "estimate transform")
		return nil, err
	}

	a.Pairs = append([]domain.CorrespondencePair(nil), pairs...)
	a.Transform = fit.transform
	a.OriginalBounds = fit.bounds
	a.FitError = fit.errorMeters
	a.Placement = domain.OverlayPlacement{
		Bounds:  fit.bounds,
		Center:  fit.bounds.Center(),
		Opacity: a.Placement.Opacity,
	}
	if err := s.update(ctx, a, domain.EventRepaired); err != nil {
		return nil, err
	}
	return a, nil
}

// Accuracy reports the transform error over the alignment's own pairs
// followed by any extra held-out pairs.
func (s *AlignmentService) Accuracy(ctx context.Context, id string, extra []domain.CorrespondencePair) (domain.AccuracyReport, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return domain.AccuracyReport{}, err
	}

	all := make([]domain.CorrespondencePair, 0, len(a.Pairs)+len(extra))
	all = append(all, a.Pairs...)
	all = append(all, extra...)
	src, dst := domain.SplitPairs(all)
	return georef.Accuracy(src, dst, a.Transform)
}

// Project maps a page position to its geographic location.
func (s *AlignmentService) Project(ctx context.Context, id string, p domain.SourcePoint) (domain.GeoPoint, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return domain.GeoPoint{}, err
	}
	return georef.TransformPoint(p, a.Transform), nil
}

// Unproject maps a geographic location back onto the page.
func (s *AlignmentService) Unproject(ctx context.Context, id string, g domain.GeoPoint) (domain.SourcePoint, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return domain.SourcePoint{}, err
	}
	return georef.InvertPoint(g, a.Transform)
}

// Footprint returns the overlay geometry as a GeoJSON feature collection.
func (s *AlignmentService) Footprint(ctx context.Context, id string) (*geojson.FeatureCollection, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return georef.Footprint(a.Page, a.Transform, a.Placement), nil
}

// Containing returns the overlays whose current bounds lie within
// radiusMeters of p, nearest center first. A radius of zero returns only
// overlays that cover p.
func (s *AlignmentService) Containing(ctx context.Context, p domain.GeoPoint, radiusMeters float64, limit int) ([]domain.OverlayHit, error) {
	if err := georef.ValidateGeoPoint(p); err != nil {
		return nil, err
	}
	if radiusMeters < 0 {
		radiusMeters = 0
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	minLat, minLon, maxLat, maxLon := geospatial.BoundingBox(p.Lat, p.Lng, radiusMeters)
	box := domain.GeoBounds{North: maxLat, South: minLat, East: maxLon, West: minLon}

	candidates, err := s.alignments.FindIntersecting(ctx, box, limit)
	if err != nil {
		return nil, err
	}

	hits := make([]domain.OverlayHit, 0, len(candidates))
	for _, a := range candidates {
		if radiusMeters == 0 && !a.Placement.Bounds.Contains(p) {
			continue
		}
		hits = append(hits, domain.OverlayHit{
			Alignment:      a,
			DistanceMeters: georef.GreatCircleDistance(p, a.Placement.Center),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].DistanceMeters < hits[j].DistanceMeters
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Delete removes an alignment.
func (s *AlignmentService) Delete(ctx context.Context, id string) error {
	a, err := s.alignments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.alignments.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete alignment: %w", err)
	}
	s.evict(ctx, id)
	s.publish(ctx, a, domain.EventDeleted)
	return nil
}

type fitResult struct {
	transform   domain.AffineTransform
	bounds      domain.GeoBounds
	errorMeters float64
}

func (s *AlignmentService) fit(ctx context.Context, page domain.Rectangle, pairs []domain.CorrespondencePair) (fitResult, error) {
	src, dst := domain.SplitPairs(pairs)
	t, err := georef.EstimateTransform(src, dst)
	if err != nil {
		outcome := estimationOutcome(err)
		metrics.GeorefEstimations.WithLabelValues(outcome).Inc()
		slog.WarnContext(ctx, "transform estimation failed", "reason", outcome, "pairs", len(pairs), "error", err)
		return fitResult{}, err
	}
	metrics.GeorefEstimations.WithLabelValues("ok").Inc()

	// Both slices have three entries here, so this cannot fail.
	fitErr, _ := georef.ValidateAccuracy(src, dst, t)
	metrics.GeorefFitError.Observe(fitErr)

	return fitResult{
		transform:   t,
		bounds:      georef.TransformRectToBounds(page, t),
		errorMeters: fitErr,
	}, nil
}

func (s *AlignmentService) update(ctx context.Context, a *domain.Alignment, kind string) error {
	a.UpdatedAt = s.now().UTC()
	if err := s.alignments.Update(ctx, a); err != nil {
		return fmt.Errorf("update alignment: %w", err)
	}
	s.evict(ctx, a.ID)
	s.publish(ctx, a, kind)
	return nil
}

func (s *AlignmentService) store(ctx context.Context, a *domain.Alignment) {
	if s.cache == nil {
		return
	}
	if data, err := json.Marshal(a); err == nil {
		_ = s.cache.Set(ctx, alignmentCacheKey(a.ID), data, alignmentCacheTTL)
	}
}

func (s *AlignmentService) evict(ctx context.Context, id string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, alignmentCacheKey(id))
	}
}

// publish is best effort: a missed event only delays other viewers.
func (s *AlignmentService) publish(ctx context.Context, a *domain.Alignment, kind string) {
	metrics.OverlayUpdates.WithLabelValues(kind).Inc()
	if s.events == nil {
		return
	}
	ev := &domain.OverlayEvent{
		AlignmentID: a.ID,
		Kind:        kind,
		Placement:   a.Placement,
		At:          s.now().UTC(),
	}
	if err := s.events.PublishOverlayEvent(ctx, ev); err != nil {
		slog.WarnContext(ctx, "publish overlay event", "alignment_id", a.ID, "kind", kind, "error", err)
	}
}

func alignmentCacheKey(id string) string {
	return "alignments:id:" + id
}

func estimationOutcome(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientReferencePoints):
		return "insufficient_points"
	case errors.Is(err, domain.ErrDegenerateConfiguration):
		return "degenerate"
	default:
		return "error"
	}
}

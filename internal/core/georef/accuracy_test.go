package georef_test

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
	"github.com/samirrijal/mapoverlay/internal/core/georef"
)

func TestGreatCircleDistance(t *testing.T) {
	p := domain.GeoPoint{Lat: 34.7304, Lng: 136.5085}
	if d := georef.GreatCircleDistance(p, p); d != 0 {
		t.Errorf("expected 0 for identical points, got %g", d)
	}
	q := domain.GeoPoint{Lat: 34.7404, Lng: 136.5085}
	if d := georef.GreatCircleDistance(p, q); math.Abs(d-1113) > 1113*0.05 {
		t.Errorf("expected ~1113 m, got %.1f", d)
	}
}

func TestAccuracy_HeldOutPoint(t *testing.T) {
	tr := mustEstimate(t, pageSrc, pageDst)

	// Held-out point sits 0.01 degrees north of where the transform puts it.
	extraSrc := domain.SourcePoint{X: 300, Y: 250}
	predicted := georef.TransformPoint(extraSrc, tr)
	extraDst := domain.GeoPoint{Lat: predicted.Lat + 0.01, Lng: predicted.Lng}

	src := append(append([]domain.SourcePoint(nil), pageSrc...), extraSrc)
	dst := append(append([]domain.GeoPoint(nil), pageDst...), extraDst)

	report, err := georef.Accuracy(src, dst, tr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.Errors) != 4 {
		t.Fatalf("expected 4 per-point errors, got %d", len(report.Errors))
	}
	if math.Abs(report.MaxErrorMeters-report.Errors[3]) > 1e-9 {
		t.Errorf("expected max error from held-out point, got %g", report.MaxErrorMeters)
	}
	if math.Abs(report.MeanErrorMeters-report.Errors[3]/4) > 1e-3 {
		t.Errorf("expected mean %g, got %g", report.Errors[3]/4, report.MeanErrorMeters)
	}
}

func TestValidateAccuracy_Mismatched(t *testing.T) {
	tr := mustEstimate(t, pageSrc, pageDst)
	_, err := georef.ValidateAccuracy(pageSrc, pageDst[:2], tr)
	if !errors.Is(err, domain.ErrMismatchedPointCounts) {
		t.Fatalf("expected ErrMismatchedPointCounts, got %v", err)
	}
}

func TestValidateAccuracy_Empty(t *testing.T) {
	_, err := georef.ValidateAccuracy(nil, nil, domain.AffineTransform{A: 1, D: 1})
	if !errors.Is(err, domain.ErrInsufficientReferencePoints) {
		t.Fatalf("expected ErrInsufficientReferencePoints, got %v", err)
	}
}

func TestFootprint(t *testing.T) {
	page := domain.Rectangle{MaxX: 600, MaxY: 500}
	b := georef.TransformRectToBounds(page, rotated)
	p, _ := georef.NewPlacement(b, 0.7)

	fc := georef.Footprint(page, rotated, p)
	if len(fc.Features) != 3 {
		t.Fatalf("expected 3 features, got %d", len(fc.Features))
	}

	poly, ok := fc.Features[0].Geometry.(orb.Polygon)
	if !ok {
		t.Fatalf("expected polygon, got %T", fc.Features[0].Geometry)
	}
	if len(poly[0]) != 5 || poly[0][0] != poly[0][4] {
		t.Errorf("expected closed ring of 5 points, got %v", poly[0])
	}
	if fc.Features[1].Properties["opacity"] != 0.7 {
		t.Errorf("expected opacity property 0.7, got %v", fc.Features[1].Properties["opacity"])
	}
	if got := fc.Features[1].Geometry.Bound(); got != b.Bound() {
		t.Errorf("overlay polygon bound %v, want %v", got, b.Bound())
	}
}

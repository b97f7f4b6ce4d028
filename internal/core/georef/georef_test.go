package georef_test

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
	"github.com/samirrijal/mapoverlay/internal/core/georef"
)

// Reference pairs from a protection-area map of the Ise bay coast.
var (
	pageSrc = []domain.SourcePoint{{X: 100, Y: 100}, {X: 500, Y: 100}, {X: 100, Y: 400}}
	pageDst = []domain.GeoPoint{
		{Lat: 34.7304, Lng: 136.5085},
		{Lat: 34.7304, Lng: 136.6085},
		{Lat: 34.6304, Lng: 136.5085},
	}
)

func mustEstimate(t *testing.T, src []domain.SourcePoint, dst []domain.GeoPoint) domain.AffineTransform {
	t.Helper()
	tr, err := georef.EstimateTransform(src, dst)
	if err != nil {
		t.Fatalf("estimate: %v", err)
	}
	return tr
}

func TestEstimateTransform_ConcreteScenario(t *testing.T) {
	tr := mustEstimate(t, pageSrc, pageDst)

	got := georef.TransformPoint(domain.SourcePoint{X: 100, Y: 100}, tr)
	if math.Abs(got.Lat-34.7304) > 1e-4 || math.Abs(got.Lng-136.5085) > 1e-4 {
		t.Errorf("expected (34.7304, 136.5085), got (%g, %g)", got.Lat, got.Lng)
	}

	b := georef.TransformRectToBounds(domain.Rectangle{MinX: 0, MinY: 0, MaxX: 600, MaxY: 500}, tr)
	if b.South > 34.6304 {
		t.Errorf("expected south <= 34.6304, got %g", b.South)
	}
	if b.North < 34.7304 {
		t.Errorf("expected north >= 34.7304, got %g", b.North)
	}
}

func TestEstimateTransform_Coefficients(t *testing.T) {
	tr := mustEstimate(t, pageSrc, pageDst)

	want := domain.AffineTransform{
		A: 0.1 / 400, B: 0,
		C: 0, D: -0.1 / 300,
		E: 136.5085 - 0.1/400*100,
		F: 34.7304 + 0.1/300*100,
	}
	if diff := cmp.Diff(want, tr, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("transform mismatch (-want +got):\n%s", diff)
	}
}

func TestEstimateTransform_FitExactness(t *testing.T) {
	src := []domain.SourcePoint{{X: 12, Y: 40}, {X: 580, Y: 95}, {X: 230, Y: 760}}
	dst := []domain.GeoPoint{
		{Lat: 35.3606, Lng: 138.7274},
		{Lat: 35.3521, Lng: 138.7702},
		{Lat: 35.3105, Lng: 138.7391},
	}
	tr := mustEstimate(t, src, dst)

	for i := range src {
		got := georef.TransformPoint(src[i], tr)
		if diff := cmp.Diff(dst[i], got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("pair %d (-want +got):\n%s", i, diff)
		}
	}

	mean, err := georef.ValidateAccuracy(src, dst, tr)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if mean > 1e-3 {
		t.Errorf("expected ~0 m mean error on fitting set, got %g", mean)
	}
}

func TestEstimateTransform_WrongCount(t *testing.T) {
	cases := []struct {
		name string
		src  []domain.SourcePoint
		dst  []domain.GeoPoint
	}{
		{"two pairs", pageSrc[:2], pageDst[:2]},
		{"four pairs", append(append([]domain.SourcePoint(nil), pageSrc...), domain.SourcePoint{X: 1, Y: 1}),
			append(append([]domain.GeoPoint(nil), pageDst...), domain.GeoPoint{Lat: 1, Lng: 1})},
		{"uneven lists", pageSrc, pageDst[:2]},
		{"empty", nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := georef.EstimateTransform(tc.src, tc.dst)
			if !errors.Is(err, domain.ErrInsufficientReferencePoints) {
				t.Errorf("expected ErrInsufficientReferencePoints, got %v", err)
			}
		})
	}
}

func TestEstimateTransform_Collinear(t *testing.T) {
	cases := [][]domain.SourcePoint{
		{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}},
		{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 20}},
		{{X: 5, Y: 0}, {X: 5, Y: 100}, {X: 5, Y: 300}},
		{{X: 7, Y: 7}, {X: 7, Y: 7}, {X: 30, Y: 1}},
	}
	for i, src := range cases {
		_, err := georef.EstimateTransform(src, pageDst)
		if !errors.Is(err, domain.ErrDegenerateConfiguration) {
			t.Errorf("case %d: expected ErrDegenerateConfiguration, got %v", i, err)
		}
	}
}

func TestEstimateTransform_DoesNotModifyInputs(t *testing.T) {
	src := append([]domain.SourcePoint(nil), pageSrc...)
	dst := append([]domain.GeoPoint(nil), pageDst...)
	_ = mustEstimate(t, src, dst)

	if diff := cmp.Diff(pageSrc, src); diff != "" {
		t.Errorf("source points modified:\n%s", diff)
	}
	if diff := cmp.Diff(pageDst, dst); diff != "" {
		t.Errorf("target points modified:\n%s", diff)
	}
}

func TestEstimateLeastSquares_MatchesExactFit(t *testing.T) {
	exact := mustEstimate(t, pageSrc, pageDst)
	ls, err := georef.EstimateLeastSquares(pageSrc, pageDst)
	if err != nil {
		t.Fatalf("least squares: %v", err)
	}
	if diff := cmp.Diff(exact, ls, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("least squares differs from exact fit (-exact +ls):\n%s", diff)
	}
}

func TestEstimateLeastSquares_Overdetermined(t *testing.T) {
	truth := domain.AffineTransform{A: 2e-4, B: 1e-5, C: -1e-5, D: -3e-4, E: 136.4, F: 34.8}
	src := []domain.SourcePoint{{X: 0, Y: 0}, {X: 600, Y: 0}, {X: 600, Y: 500}, {X: 0, Y: 500}, {X: 300, Y: 250}}
	dst := make([]domain.GeoPoint, len(src))
	for i, p := range src {
		dst[i] = georef.TransformPoint(p, truth)
	}

	got, err := georef.EstimateLeastSquares(src, dst)
	if err != nil {
		t.Fatalf("least squares: %v", err)
	}
	if diff := cmp.Diff(truth, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("recovered transform mismatch (-want +got):\n%s", diff)
	}
}

func TestEstimateLeastSquares_Errors(t *testing.T) {
	if _, err := georef.EstimateLeastSquares(pageSrc, pageDst[:2]); !errors.Is(err, domain.ErrMismatchedPointCounts) {
		t.Errorf("expected ErrMismatchedPointCounts, got %v", err)
	}
	if _, err := georef.EstimateLeastSquares(pageSrc[:2], pageDst[:2]); !errors.Is(err, domain.ErrInsufficientReferencePoints) {
		t.Errorf("expected ErrInsufficientReferencePoints, got %v", err)
	}
	line := []domain.SourcePoint{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 20, Y: 0}, {X: 30, Y: 0}}
	dst := append(append([]domain.GeoPoint(nil), pageDst...), domain.GeoPoint{Lat: 34.6, Lng: 136.6})
	if _, err := georef.EstimateLeastSquares(line, dst); !errors.Is(err, domain.ErrDegenerateConfiguration) {
		t.Errorf("expected ErrDegenerateConfiguration, got %v", err)
	}
}

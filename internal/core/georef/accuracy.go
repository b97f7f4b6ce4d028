package georef

import (
	"fmt"
	"math"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
	"github.com/samirrijal/mapoverlay/internal/pkg/geospatial"
)

// GreatCircleDistance returns the haversine distance between a and b in meters.
func GreatCircleDistance(a, b domain.GeoPoint) float64 {
	return geospatial.Haversine(a.Lat, a.Lng, b.Lat, b.Lng)
}

// ValidateAccuracy returns the mean distance, in meters, between each
// transformed source point and its expected target.
func ValidateAccuracy(src []domain.SourcePoint, dst []domain.GeoPoint, t domain.AffineTransform) (float64, error) {
	report, err := Accuracy(src, dst, t)
	if err != nil {
		return 0, err
	}
	return report.MeanErrorMeters, nil
}

// Accuracy is ValidateAccuracy with per-point errors and the maximum error.
func Accuracy(src []domain.SourcePoint, dst []domain.GeoPoint, t domain.AffineTransform) (domain.AccuracyReport, error) {
	if len(src) != len(dst) {
		return domain.AccuracyReport{}, fmt.Errorf("%w: %d source vs %d target points",
			domain.ErrMismatchedPointCounts, len(src), len(dst))
	}
	if len(src) == 0 {
		return domain.AccuracyReport{}, fmt.Errorf("%w: no pairs to validate", domain.ErrInsufficientReferencePoints)
	}

	report := domain.AccuracyReport{Errors: make([]float64, len(src))}
	var total float64
	for i := range src {
		d := GreatCircleDistance(TransformPoint(src[i], t), dst[i])
		report.Errors[i] = d
		report.MaxErrorMeters = math.Max(report.MaxErrorMeters, d)
		total += d
	}
	report.MeanErrorMeters = total / float64(len(src))
	return report, nil
}

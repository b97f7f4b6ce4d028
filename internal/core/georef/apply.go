package georef

import (
	"fmt"
	"math"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
)

// DeterminantEpsilon is the smallest |det| accepted when inverting a transform.
const DeterminantEpsilon = 1e-10

// TransformPoint maps a source point to geographic space.
func TransformPoint(p domain.SourcePoint, t domain.AffineTransform) domain.GeoPoint {
	return domain.GeoPoint{
		Lng: t.A*p.X + t.B*p.Y + t.E,
		Lat: t.C*p.X + t.D*p.Y + t.F,
	}
}

// InvertPoint maps a geographic point back onto the source page.
func InvertPoint(g domain.GeoPoint, t domain.AffineTransform) (domain.SourcePoint, error) {
	det := t.Determinant()
	if math.Abs(det) < DeterminantEpsilon {
		return domain.SourcePoint{}, fmt.Errorf("%w: determinant %g", domain.ErrNonInvertibleTransform, det)
	}

	u := g.Lng - t.E
	v := g.Lat - t.F
	return domain.SourcePoint{
		X: (t.D*u - t.B*v) / det,
		Y: (t.A*v - t.C*u) / det,
	}, nil
}

// TransformCorners maps the four corners of r, in Rectangle.Corners order.
func TransformCorners(r domain.Rectangle, t domain.AffineTransform) [4]domain.GeoPoint {
	var out [4]domain.GeoPoint
	for i, c := range r.Corners() {
		out[i] = TransformPoint(c, t)
	}
	return out
}

// TransformRectToBounds returns the smallest GeoBounds enclosing all four
// transformed corners of r. Rotation or skew turns the rectangle into a
// general quadrilateral, so two opposite corners are not enough.
func TransformRectToBounds(r domain.Rectangle, t domain.AffineTransform) domain.GeoBounds {
	corners := TransformCorners(r, t)

	b := domain.GeoBounds{
		North: corners[0].Lat, South: corners[0].Lat,
		East: corners[0].Lng, West: corners[0].Lng,
	}
	for _, c := range corners[1:] {
		b.North = math.Max(b.North, c.Lat)
		b.South = math.Min(b.South, c.Lat)
		b.East = math.Max(b.East, c.Lng)
		b.West = math.Min(b.West, c.Lng)
	}
	return b
}

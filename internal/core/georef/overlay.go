package georef

import (
	"fmt"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
)

// RecenterBounds returns bounds with the same latitude and longitude spans as
// original, centered on center.
//
// Always pass the first bounds computed for a page, not the result of a
// previous recenter, so that spans cannot drift across repeated moves.
func RecenterBounds(original domain.GeoBounds, center domain.GeoPoint) domain.GeoBounds {
	halfLat := original.LatSpan() / 2
	halfLng := original.LngSpan() / 2
	return domain.GeoBounds{
		North: center.Lat + halfLat,
		South: center.Lat - halfLat,
		East:  center.Lng + halfLng,
		West:  center.Lng - halfLng,
	}
}

// ValidateOpacity rejects values outside [0, 1].
func ValidateOpacity(opacity float64) error {
	if !(opacity >= 0 && opacity <= 1) {
		return fmt.Errorf("%w: got %g", domain.ErrInvalidOpacity, opacity)
	}
	return nil
}

// ValidateRectangle rejects page extents without positive area.
func ValidateRectangle(r domain.Rectangle) error {
	if !(r.Width() > 0 && r.Height() > 0) {
		return fmt.Errorf("%w: got %gx%g", domain.ErrInvalidRectangle, r.Width(), r.Height())
	}
	return nil
}

// ValidateGeoPoint rejects coordinates off the WGS 84 globe.
func ValidateGeoPoint(p domain.GeoPoint) error {
	if !(p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180) {
		return fmt.Errorf("%w: lat=%g lng=%g", domain.ErrInvalidCoordinate, p.Lat, p.Lng)
	}
	return nil
}

// ValidateBounds rejects inverted or NaN bounds.
func ValidateBounds(b domain.GeoBounds) error {
	if !(b.North >= b.South && b.East >= b.West) {
		return fmt.Errorf("%w: got north=%g south=%g east=%g west=%g",
			domain.ErrInvalidBounds, b.North, b.South, b.East, b.West)
	}
	return nil
}

// NewPlacement places the overlay on bounds, centered on their midpoint.
func NewPlacement(bounds domain.GeoBounds, opacity float64) (domain.OverlayPlacement, error) {
	if err := ValidateOpacity(opacity); err != nil {
		return domain.OverlayPlacement{}, err
	}
	return domain.OverlayPlacement{
		Bounds:  bounds,
		Center:  bounds.Center(),
		Opacity: opacity,
	}, nil
}

// MovePlacement recenters p on center using the spans of original.
// Opacity is carried over unchanged.
func MovePlacement(p domain.OverlayPlacement, original domain.GeoBounds, center domain.GeoPoint) domain.OverlayPlacement {
	return domain.OverlayPlacement{
		Bounds:  RecenterBounds(original, center),
		Center:  center,
		Opacity: p.Opacity,
	}
}

// WithOpacity returns p with a new opacity; bounds and center are unchanged.
func WithOpacity(p domain.OverlayPlacement, opacity float64) (domain.OverlayPlacement, error) {
	if err := ValidateOpacity(opacity); err != nil {
		return domain.OverlayPlacement{}, err
	}
	p.Opacity = opacity
	return p, nil
}

package georef

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
)

// Footprint describes an overlay as GeoJSON: the exact quadrilateral covered
// by the transformed page and the axis-aligned bounds it is draped on.
func Footprint(page domain.Rectangle, t domain.AffineTransform, placement domain.OverlayPlacement) *geojson.FeatureCollection {
	corners := TransformCorners(page, t)
	ring := make(orb.Ring, 0, len(corners)+1)
	for _, c := range corners {
		ring = append(ring, orb.Point{c.Lng, c.Lat})
	}
	ring = append(ring, ring[0])

	quad := geojson.NewFeature(orb.Polygon{ring})
	quad.Properties = geojson.Properties{"kind": "page"}

	bounds := geojson.NewFeature(placement.Bounds.Bound().ToPolygon())
	bounds.Properties = geojson.Properties{
		"kind":    "overlay",
		"opacity": placement.Opacity,
	}

	center := geojson.NewFeature(orb.Point{placement.Center.Lng, placement.Center.Lat})
	center.Properties = geojson.Properties{"kind": "center"}

	fc := geojson.NewFeatureCollection()
	fc.Append(quad)
	fc.Append(bounds)
	fc.Append(center)
	return fc
}

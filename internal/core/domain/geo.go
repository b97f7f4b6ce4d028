package domain

import "github.com/paulmach/orb"

// GeoPoint represents a geographic coordinate in degrees (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SourcePoint is a position on the flat source page, in page units.
type SourcePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CorrespondencePair ties a page location to the real-world location it depicts.
type CorrespondencePair struct {
	Source SourcePoint `json:"source"`
	Target GeoPoint    `json:"target"`
}

// SplitPairs returns the source and target points of pairs as parallel slices.
func SplitPairs(pairs []CorrespondencePair) ([]SourcePoint, []GeoPoint) {
	src := make([]SourcePoint, len(pairs))
	dst := make([]GeoPoint, len(pairs))
	for i, p := range pairs {
		src[i] = p.Source
		dst[i] = p.Target
	}
	return src, dst
}

// Rectangle is the extent of a source page.
type Rectangle struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Corners returns the four corners in the order
// (minX,minY), (maxX,minY), (maxX,maxY), (minX,maxY).
func (r Rectangle) Corners() [4]SourcePoint {
	return [4]SourcePoint{
		{X: r.MinX, Y: r.MinY},
		{X: r.MaxX, Y: r.MinY},
		{X: r.MaxX, Y: r.MaxY},
		{X: r.MinX, Y: r.MaxY},
	}
}

// Width returns the horizontal extent.
func (r Rectangle) Width() float64 { return r.MaxX - r.MinX }

// Height returns the vertical extent.
func (r Rectangle) Height() float64 { return r.MaxY - r.MinY }

// GeoBounds is an axis-aligned geographic rectangle.
// North >= South and East >= West always hold for values built by this module.
type GeoBounds struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// LatSpan returns North - South.
func (b GeoBounds) LatSpan() float64 { return b.North - b.South }

// LngSpan returns East - West.
func (b GeoBounds) LngSpan() float64 { return b.East - b.West }

// Center returns the midpoint of the bounds.
func (b GeoBounds) Center() GeoPoint {
	return GeoPoint{Lat: (b.North + b.South) / 2, Lng: (b.East + b.West) / 2}
}

// Contains reports whether p lies inside or on the boundary.
func (b GeoBounds) Contains(p GeoPoint) bool {
	return p.Lat >= b.South && p.Lat <= b.North && p.Lng >= b.West && p.Lng <= b.East
}

// Bound converts to an orb.Bound (x = lng, y = lat).
func (b GeoBounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// AffineTransform maps source space to geographic space:
//
//	lng = A*x + B*y + E
//	lat = C*x + D*y + F
//
// Values are immutable once estimated; a change to any correspondence
// requires a new estimate.
type AffineTransform struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
	C float64 `json:"c"`
	D float64 `json:"d"`
	E float64 `json:"e"`
	F float64 `json:"f"`
}

// Determinant returns A*D - B*C.
func (t AffineTransform) Determinant() float64 {
	return t.A*t.D - t.B*t.C
}

// OverlayPlacement is where and how the page image is draped on the map.
type OverlayPlacement struct {
	Bounds  GeoBounds `json:"bounds"`
	Center  GeoPoint  `json:"center"`
	Opacity float64   `json:"opacity"`
}

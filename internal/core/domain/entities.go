package domain

import (
	"time"
)

// Alignment is one georeferencing session: a source page, the three
// reference pairs picked on it, the transform estimated from them and the
// overlay currently draped on the map.
type Alignment struct {
	ID        string               `json:"id"`
	Name      string               `json:"name"`
	Page      Rectangle            `json:"page"`
	Pairs     []CorrespondencePair `json:"pairs"`
	Transform AffineTransform      `json:"transform"`
	// OriginalBounds is the first bounds computed from Page and Transform.
	// Recentering always derives spans from it to avoid drift.
	OriginalBounds GeoBounds        `json:"original_bounds"`
	Placement      OverlayPlacement `json:"placement"`
	FitError       float64          `json:"fit_error_m"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// OverlayEvent is published whenever an alignment's placement changes.
type OverlayEvent struct {
	AlignmentID string           `json:"alignment_id"`
	Kind        string           `json:"kind"` // created | moved | opacity | repaired | deleted
	Placement   OverlayPlacement `json:"placement"`
	At          time.Time        `json:"at"`
}

// Overlay event kinds.
const (
	EventCreated  = "created"
	EventMoved    = "moved"
	EventOpacity  = "opacity"
	EventRepaired = "repaired"
	EventDeleted  = "deleted"
)

// AccuracyReport summarises how well a transform reproduces known pairs.
type AccuracyReport struct {
	MeanErrorMeters float64   `json:"mean_error_m"`
	MaxErrorMeters  float64   `json:"max_error_m"`
	Errors          []float64 `json:"errors_m"`
}

// OverlayHit is an alignment whose overlay covers a queried location.
type OverlayHit struct {
	Alignment      Alignment `json:"alignment"`
	DistanceMeters float64   `json:"distance_to_center_m"`
}

// PageImage is a rasterized source page kept in the page-image cache.
type PageImage struct {
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

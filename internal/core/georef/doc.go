// Package georef is the coordinate-transform and overlay-geometry engine.
//
// It fits a 6-parameter affine transform from page-space reference points to
// geographic coordinates, applies it to points and page rectangles, reports
// how well a transform reproduces known pairs, and recenters overlay bounds.
// Every function is pure: inputs are never modified and no state is shared,
// so callers may use the package from any goroutine without locking.
package georef

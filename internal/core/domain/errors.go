package domain

import "errors"

// Errors raised by the georeferencing engine. All of them are recoverable by
// asking the user for different input; none should be retried as-is.
var (
	// ErrInsufficientReferencePoints is returned when estimation is not given
	// exactly three correspondence pairs.
	ErrInsufficientReferencePoints = errors.New("insufficient reference points")

	// ErrDegenerateConfiguration is returned when the reference points are
	// collinear and no unique affine transform exists.
	ErrDegenerateConfiguration = errors.New("degenerate configuration: reference points are collinear")

	// ErrNonInvertibleTransform is returned when the linear part of a
	// transform has a near-zero determinant.
	ErrNonInvertibleTransform = errors.New("non-invertible transform")

	// ErrMismatchedPointCounts is returned when source and target lists differ in length.
	ErrMismatchedPointCounts = errors.New("mismatched point counts")

	// ErrInvalidOpacity is returned for opacity values outside [0, 1].
	ErrInvalidOpacity = errors.New("opacity must be between 0 and 1")

	// ErrInvalidRectangle is returned for page extents with non-positive width or height.
	ErrInvalidRectangle = errors.New("page rectangle must have positive width and height")

	// ErrInvalidCoordinate is returned for latitudes outside [-90, 90] or
	// longitudes outside [-180, 180].
	ErrInvalidCoordinate = errors.New("coordinate out of range")

	// ErrInvalidBounds is returned for bounds with north below south or east below west.
	ErrInvalidBounds = errors.New("bounds must have north >= south and east >= west")
)

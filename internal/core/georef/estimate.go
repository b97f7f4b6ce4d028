package georef

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/samirrijal/mapoverlay/internal/core/domain"
	"github.com/samirrijal/mapoverlay/internal/pkg/linalg"
)

// RequiredPairs is the number of correspondences EstimateTransform accepts.
const RequiredPairs = 3

// EstimateTransform computes the affine transform mapping src[i] onto dst[i]
// from exactly three correspondences.
//
// It fails with domain.ErrInsufficientReferencePoints when either list does
// not hold exactly three points, and with domain.ErrDegenerateConfiguration
// when the source points are collinear.
func EstimateTransform(src []domain.SourcePoint, dst []domain.GeoPoint) (domain.AffineTransform, error) {
	if len(src) != RequiredPairs || len(dst) != RequiredPairs {
		return domain.AffineTransform{}, fmt.Errorf("%w: need exactly %d pairs, got %d source and %d target points",
			domain.ErrInsufficientReferencePoints, RequiredPairs, len(src), len(dst))
	}

	a, b := buildSystem(src, dst)

	params, err := linalg.Solve(a, b)
	if err != nil {
		if errors.Is(err, linalg.ErrSingular) {
			return domain.AffineTransform{}, fmt.Errorf("%w (%w)", domain.ErrDegenerateConfiguration, err)
		}
		return domain.AffineTransform{}, err
	}
	return fromParams(params), nil
}

// EstimateLeastSquares fits an affine transform to three or more
// correspondences by minimising the squared residuals over all 2N equations.
// With exactly three non-collinear pairs it agrees with EstimateTransform.
func EstimateLeastSquares(src []domain.SourcePoint, dst []domain.GeoPoint) (domain.AffineTransform, error) {
	if len(src) != len(dst) {
		return domain.AffineTransform{}, fmt.Errorf("%w: %d source vs %d target points",
			domain.ErrMismatchedPointCounts, len(src), len(dst))
	}
	if len(src) < RequiredPairs {
		return domain.AffineTransform{}, fmt.Errorf("%w: need at least %d pairs, got %d",
			domain.ErrInsufficientReferencePoints, RequiredPairs, len(src))
	}

	a, b := buildSystem(src, dst)

	var qr mat.QR
	qr.Factorize(a)

	var params mat.VecDense
	if err := qr.SolveVecTo(&params, false, b); err != nil {
		return domain.AffineTransform{}, fmt.Errorf("%w (%w)", domain.ErrDegenerateConfiguration, err)
	}
	return fromParams(&params), nil
}

// buildSystem encodes lng = a·x + b·y + e and lat = c·x + d·y + f for every
// pair, with unknowns ordered (a, b, c, d, e, f).
func buildSystem(src []domain.SourcePoint, dst []domain.GeoPoint) (*mat.Dense, *mat.VecDense) {
	n := len(src)
	a := mat.NewDense(n*2, 6, nil)
	b := mat.NewVecDense(n*2, nil)

	for i := 0; i < n; i++ {
		x, y := src[i].X, src[i].Y

		a.Set(i*2, 0, x)
		a.Set(i*2, 1, y)
		a.Set(i*2, 4, 1)
		b.SetVec(i*2, dst[i].Lng)

		a.Set(i*2+1, 2, x)
		a.Set(i*2+1, 3, y)
		a.Set(i*2+1, 5, 1)
		b.SetVec(i*2+1, dst[i].Lat)
	}
	return a, b
}

func fromParams(p mat.Vector) domain.AffineTransform {
	return domain.AffineTransform{
		A: p.AtVec(0),
		B: p.AtVec(1),
		C: p.AtVec(2),
		D: p.AtVec(3),
		E: p.AtVec(4),
		F: p.AtVec(5),
	}
}

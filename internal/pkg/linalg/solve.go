// Package linalg holds the small dense linear-algebra routines used by the
// georeferencing engine.
package linalg

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// PivotEpsilon is the smallest pivot magnitude accepted before a system is
// declared singular.
const PivotEpsilon = 1e-10

var (
	// ErrSingular is returned when a pivot falls below PivotEpsilon.
	ErrSingular = errors.New("singular system")

	// ErrDimension is returned when A is not square or B does not match it.
	ErrDimension = errors.New("dimension mismatch")
)

// Solve solves A·x = B using Gaussian elimination with partial pivoting.
//
// A and B are left untouched; elimination runs on private copies.
func Solve(a mat.Matrix, b mat.Vector) (*mat.VecDense, error) {
	n, c := a.Dims()
	if n == 0 || n != c {
		return nil, fmt.Errorf("%w: coefficient matrix is %dx%d", ErrDimension, n, c)
	}
	if b.Len() != n {
		return nil, fmt.Errorf("%w: %d equations, %d right-hand values", ErrDimension, n, b.Len())
	}

	m := mat.DenseCopyOf(a)
	v := mat.VecDenseCopyOf(b)

	for col := 0; col < n; col++ {
		pivot := col
		best := math.Abs(m.At(col, col))
		for r := col + 1; r < n; r++ {
			if abs := math.Abs(m.At(r, col)); abs > best {
				best = abs
				pivot = r
			}
		}
		if pivot != col {
			swapRows(m, v, pivot, col)
		}

		p := m.At(col, col)
		if math.Abs(p) < PivotEpsilon {
			return nil, fmt.Errorf("%w: pivot %g in column %d", ErrSingular, p, col)
		}

		for r := col + 1; r < n; r++ {
			f := m.At(r, col) / p
			if f == 0 {
				continue
			}
			for k := col; k < n; k++ {
				m.Set(r, k, m.At(r, k)-f*m.At(col, k))
			}
			v.SetVec(r, v.AtVec(r)-f*v.AtVec(col))
		}
	}

	x := mat.NewVecDense(n, nil)
	for i := n - 1; i >= 0; i-- {
		s := v.AtVec(i)
		for k := i + 1; k < n; k++ {
			s -= m.At(i, k) * x.AtVec(k)
		}
		x.SetVec(i, s/m.At(i, i))
	}
	return x, nil
}

func swapRows(m *mat.Dense, v *mat.VecDense, i, j int) {
	ri := m.RawRowView(i)
	rj := m.RawRowView(j)
	for k := range ri {
		ri[k], rj[k] = rj[k], ri[k]
	}
	vi, vj := v.AtVec(i), v.AtVec(j)
	v.SetVec(i, vj)
	v.SetVec(j, vi)
}

package linalg_test

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/samirrijal/mapoverlay/internal/pkg/linalg"
)

func TestSolve_3x3(t *testing.T) {
	// 2x + y - z = 8, -3x - y + 2z = -11, -2x + y + 2z = -3  =>  (2, 3, -1)
	a := mat.NewDense(3, 3, []float64{
		2, 1, -1,
		-3, -1, 2,
		-2, 1, 2,
	})
	b := mat.NewVecDense(3, []float64{8, -11, -3})

	x, err := linalg.Solve(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{2, 3, -1}
	for i, w := range want {
		if math.Abs(x.AtVec(i)-w) > 1e-9 {
			t.Errorf("x[%d]: expected %g, got %g", i, w, x.AtVec(i))
		}
	}
}

func TestSolve_NeedsPivoting(t *testing.T) {
	// Zero in the leading position: fails without a row swap.
	a := mat.NewDense(2, 2, []float64{
		0, 1,
		1, 1,
	})
	b := mat.NewVecDense(2, []float64{3, 5})

	x, err := linalg.Solve(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(x.AtVec(0)-2) > 1e-12 || math.Abs(x.AtVec(1)-3) > 1e-12 {
		t.Errorf("expected (2, 3), got (%g, %g)", x.AtVec(0), x.AtVec(1))
	}
}

func TestSolve_Singular(t *testing.T) {
	a := mat.NewDense(3, 3, []float64{
		1, 2, 3,
		2, 4, 6,
		1, 0, 1,
	})
	b := mat.NewVecDense(3, []float64{1, 2, 3})

	_, err := linalg.Solve(a, b)
	if !errors.Is(err, linalg.ErrSingular) {
		t.Fatalf("expected ErrSingular, got %v", err)
	}
}

func TestSolve_DoesNotMutateInputs(t *testing.T) {
	data := []float64{
		0, 2,
		3, 1,
	}
	a := mat.NewDense(2, 2, append([]float64(nil), data...))
	b := mat.NewVecDense(2, []float64{4, 5})

	if _, err := linalg.Solve(a, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range data {
		if a.RawMatrix().Data[i] != v {
			t.Fatalf("coefficient matrix modified at %d: %g", i, a.RawMatrix().Data[i])
		}
	}
	if b.AtVec(0) != 4 || b.AtVec(1) != 5 {
		t.Errorf("right-hand side modified: (%g, %g)", b.AtVec(0), b.AtVec(1))
	}
}

func TestSolve_DimensionMismatch(t *testing.T) {
	a := mat.NewDense(2, 3, nil)
	b := mat.NewVecDense(2, nil)
	if _, err := linalg.Solve(a, b); !errors.Is(err, linalg.ErrDimension) {
		t.Errorf("expected ErrDimension for non-square matrix, got %v", err)
	}

	sq := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	if _, err := linalg.Solve(sq, mat.NewVecDense(3, nil)); !errors.Is(err, linalg.ErrDimension) {
		t.Errorf("expected ErrDimension for short vector, got %v", err)
	}
}

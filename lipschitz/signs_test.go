package lipschitz

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestFixSubspaceSignsGradientOrientation(t *testing.T) {
	// a column anti-parallel to the observed gradient must flip
	u := mat.NewDense(2, 2, []float64{
		-1, 0,
		0, 1,
	})
	grads := mat.NewDense(1, 2, []float64{3, 0})

	FixSubspaceSigns(u, nil, nil, grads)

	if u.At(0, 0) != 1 {
		t.Errorf("column 0 should flip toward the gradient, got %g", u.At(0, 0))
	}
	// column 1 is orthogonal to the gradient; the tie-break keeps the
	// positive leading component
	if u.At(1, 1) != 1 {
		t.Errorf("column 1 changed unexpectedly: %g", u.At(1, 1))
	}
}

func TestFixSubspaceSignsSampleOrientation(t *testing.T) {
	// increasing f along +x orients the column toward +x
	u := mat.NewDense(1, 1, []float64{-1})
	X := mat.NewDense(2, 1, []float64{0, 1})
	fX := []float64{0, 5}

	FixSubspaceSigns(u, X, fX, nil)
	if u.At(0, 0) != 1 {
		t.Errorf("column should flip, got %g", u.At(0, 0))
	}
}

func TestFixSubspaceSignsTieBreak(t *testing.T) {
	// no data at all: the largest-magnitude component becomes positive
	u := mat.NewDense(3, 1, []float64{0.1, -0.9, 0.2})

	FixSubspaceSigns(u, nil, nil, nil)
	if u.At(1, 0) != 0.9 {
		t.Errorf("leading component should be positive, got %g", u.At(1, 0))
	}
}

func TestFixSubspaceSignsIdempotent(t *testing.T) {
	u := mat.NewDense(2, 2, []float64{
		0.6, -0.8,
		0.8, 0.6,
	})
	X := mat.NewDense(3, 2, []float64{0, 0, 1, 0.5, 0.2, 1})
	fX := []float64{0, 1, 0.3}

	FixSubspaceSigns(u, X, fX, nil)
	snapshot := mat.DenseCopyOf(u)
	FixSubspaceSigns(u, X, fX, nil)

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(u.At(i, j)-snapshot.At(i, j)) > 0 {
				t.Fatalf("second pass changed the basis at (%d,%d)", i, j)
			}
		}
	}
}

func TestFitSignReproducibility(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
		1, 1,
	})
	fX := []float64{0, 2, 0.5, 2.4}

	a := NewLipschitzMatrix()
	if err := a.Fit(X, fX, nil); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	b := NewLipschitzMatrix()
	if err := b.Fit(X, fX, nil); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	ua, _ := a.U()
	ub, _ := b.U()
	var diff mat.Dense
	diff.Sub(ua, ub)
	if nrm := mat.Norm(&diff, 2); nrm > 1e-9 {
		t.Errorf("subspace bases differ between identical fits: %g", nrm)
	}
}

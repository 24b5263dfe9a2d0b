package sdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// isPSD reports whether h has no eigenvalue below -tol.
func isPSD(t *testing.T, h *mat.SymDense, tol float64) bool {
	t.Helper()
	var eig mat.EigenSym
	require.True(t, eig.Factorize(h, false))
	for _, v := range eig.Values(nil) {
		if v < -tol {
			return false
		}
	}
	return true
}

func TestAugLagSolverNoConstraints(t *testing.T) {
	p := &Problem{Dim: 3}
	h, err := NewAugLagSolver().Solve(p, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0, mat.Norm(h, 2), 1e-12, "unconstrained minimum trace is the zero matrix")
}

func TestAugLagSolverSinglePair(t *testing.T) {
	// one unit-direction pair constraint d^T H d >= 9 in 1-D: H = [9]
	X := mat.NewDense(2, 1, []float64{0, 1})
	p, err := NewProblem(X, []float64{0, 3}, nil, 0)
	require.NoError(t, err)

	h, err := NewAugLagSolver().Solve(p, nil)
	require.NoError(t, err)
	assert.InDelta(t, 9, h.At(0, 0), 1e-3)
}

func TestAugLagSolverGradientDominance(t *testing.T) {
	// a single gradient constraint g g^T <= H is tight at H = g g^T
	grads := mat.NewDense(1, 2, []float64{4, 0})
	p, err := NewProblem(nil, nil, grads, 0)
	require.NoError(t, err)

	h, err := NewAugLagSolver().Solve(p, nil)
	require.NoError(t, err)

	assert.True(t, isPSD(t, h, 1e-6))
	assert.InDelta(t, 16, h.At(0, 0), 1e-2)
	assert.InDelta(t, 0, h.At(1, 1), 1e-2)
	assert.InDelta(t, 16, trace(h), 5e-2, "trace is not wasted off the gradient direction")
}

func TestAugLagSolverAxisPairs(t *testing.T) {
	// slopes 2 along x and 1 along y with axis-aligned pairs; the
	// minimal-trace metric is diag(4, 1)
	X := mat.NewDense(3, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
	})
	fX := []float64{0, 2, 1}

	p, err := NewProblem(X, fX, nil, 0)
	require.NoError(t, err)

	h, err := NewAugLagSolver().Solve(p, nil)
	require.NoError(t, err)

	assert.True(t, isPSD(t, h, 1e-6))
	// every pair constraint holds up to feasibility tolerance
	for _, pair := range p.Pairs {
		q := quadForm(h, pair.Direction)
		assert.GreaterOrEqual(t, q, pair.RHS-1e-3, "pair constraint violated")
	}
	assert.InDelta(t, 4, h.At(0, 0), 5e-2)
	assert.InDelta(t, 1, h.At(1, 1), 5e-2)
}

func TestAugLagSolverFeasibilityLargerInstance(t *testing.T) {
	// quadratic ridge f(x) = x_0^2 sampled on a small grid
	var xs []float64
	var fs []float64
	for i := 0; i < 5; i++ {
		for j := 0; j < 3; j++ {
			x0 := float64(i) / 4
			x1 := float64(j) / 2
			xs = append(xs, x0, x1)
			fs = append(fs, x0*x0)
		}
	}
	X := mat.NewDense(15, 2, xs)

	p, err := NewProblem(X, fs, nil, 0)
	require.NoError(t, err)

	h, err := NewAugLagSolver().Solve(p, nil)
	require.NoError(t, err)

	assert.True(t, isPSD(t, h, 1e-6))
	for r, pair := range p.Pairs {
		q := quadForm(h, pair.Direction)
		assert.GreaterOrEqual(t, q, pair.RHS-1e-3, "pair %d violated", r)
	}
	// the ridge is flat in x_1, so an optimal metric concentrates there
	assert.Greater(t, h.At(0, 0), 10*h.At(1, 1))
}

func TestSolversAgree(t *testing.T) {
	if testing.Short() {
		t.Skip("cross-validation solve is slow")
	}
	X := mat.NewDense(4, 2, []float64{
		0, 0,
		1, 0,
		0, 1,
		0.5, 0.5,
	})
	fX := []float64{0, 1.5, 0.5, 1.1}
	grads := mat.NewDense(1, 2, []float64{1, 0.25})

	p, err := NewProblem(X, fX, grads, 0)
	require.NoError(t, err)

	hA, err := NewAugLagSolver().Solve(p, nil)
	require.NoError(t, err)
	hP, err := NewParametrizedSolver().Solve(p, nil)
	require.NoError(t, err)

	// both formulations solve the same program; optima agree loosely
	assert.InDelta(t, trace(hA), trace(hP), 1e-1*mat.Norm(hA, 2)+1e-2)
	diff := subSym(hA, hP)
	assert.Less(t, mat.Norm(diff, 2), 1e-1*mat.Norm(hA, 2)+5e-2)
}

func TestSubSym(t *testing.T) {
	a := mat.NewSymDense(2, []float64{4, 1, 1, 3})
	b := mat.NewSymDense(2, []float64{1, -2, -2, 5})

	d := subSym(a, b)
	want := mat.NewSymDense(2, []float64{3, 3, 3, -2})
	assert.InDelta(t, 0, mat.Norm(subSym(d, want), 2), 1e-15)

	// inputs untouched
	assert.Equal(t, 4.0, a.At(0, 0))
	assert.Equal(t, 1.0, b.At(0, 0))
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 1e-7, s.AbsTol)
	assert.Equal(t, 1e-6, s.RelTol)
	assert.Equal(t, 1e-7, s.FeasTol)
	assert.Equal(t, 1, s.Refinement)
}

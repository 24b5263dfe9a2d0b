// Package sdp formulates and solves the semidefinite program at the heart
// of Lipschitz matrix estimation.
//
// The program seeks the smallest (in trace) symmetric positive
// semidefinite matrix H consistent with finite-difference constraints from
// sample pairs and dominance constraints from observed gradients. The
// package provides:
//
//   - Basis: the rank-1/rank-2 symmetric basis spanning candidate matrices
//   - Problem/NewProblem: constraint assembly from scaled observations
//   - Solver: the solver contract, with AugLagSolver as the primary
//     implementation and ParametrizedSolver as a basis-parametrized
//     cross-check formulation
//
// Solvers are interchangeable strategies behind the same contract; the
// estimator defaults to AugLagSolver.
package sdp

import (
	"gonum.org/v1/gonum/mat"

	psdrErrors "github.com/vishalbelsare/PSDR/pkg/errors"
)

// Settings carries solver configuration. Tolerances mirror the
// conventional interior-point knobs: absolute and relative convergence
// tolerances, a feasibility tolerance, and a count of refinement passes
// run after convergence.
type Settings struct {
	AbsTol     float64
	RelTol     float64
	FeasTol    float64
	Refinement int
	Verbose    bool

	// MaxOuterIterations bounds multiplier updates; MaxInnerIterations
	// bounds gradient steps per subproblem.
	MaxOuterIterations int
	MaxInnerIterations int

	// InitialPenalty is the starting augmented-Lagrangian penalty weight.
	InitialPenalty float64
}

// DefaultSettings returns the documented solver defaults.
func DefaultSettings() *Settings {
	return &Settings{
		AbsTol:             1e-7,
		RelTol:             1e-6,
		FeasTol:            1e-7,
		Refinement:         1,
		MaxOuterIterations: 200,
		MaxInnerIterations: 4000,
		InitialPenalty:     10,
	}
}

// Solver solves the trace-minimization program for a fixed Problem. A
// failure to reach the feasibility tolerance is fatal for the caller's
// fit: no partial H is returned.
type Solver interface {
	Solve(p *Problem, settings *Settings) (*mat.SymDense, error)
}

// projectPSD returns the projection of h onto the PSD cone under the
// Frobenius norm, along with the largest eigenvalue of h.
func projectPSD(h *mat.SymDense) (*mat.SymDense, float64, error) {
	var es mat.EigenSym
	if !es.Factorize(h, true) {
		return nil, 0, psdrErrors.NewModelError("sdp.projectPSD", "eigendecomposition failed", psdrErrors.ErrSolverFailure)
	}
	vals := es.Values(nil)
	var u mat.Dense
	es.VectorsTo(&u)

	m := h.SymmetricDim()
	proj := mat.NewSymDense(m, nil)
	col := mat.NewVecDense(m, nil)
	for k := 0; k < m; k++ {
		if vals[k] <= 0 {
			continue
		}
		for r := 0; r < m; r++ {
			col.SetVec(r, u.At(r, k))
		}
		proj.SymRankOne(proj, vals[k], col)
	}
	return proj, vals[m-1], nil
}

// maxEigenvalue returns the largest eigenvalue of h.
func maxEigenvalue(h *mat.SymDense) (float64, error) {
	var es mat.EigenSym
	if !es.Factorize(h, false) {
		return 0, psdrErrors.NewModelError("sdp.maxEigenvalue", "eigendecomposition failed", psdrErrors.ErrSolverFailure)
	}
	vals := es.Values(nil)
	return vals[len(vals)-1], nil
}

// trace returns the trace of h.
func trace(h *mat.SymDense) float64 {
	t := 0.0
	for i := 0; i < h.SymmetricDim(); i++ {
		t += h.At(i, i)
	}
	return t
}

// quadForm computes d^T h d for a plain slice direction.
func quadForm(h *mat.SymDense, d []float64) float64 {
	v := mat.NewVecDense(len(d), d)
	return mat.Inner(v, h, v)
}

// subSym returns a - b as a new symmetric matrix.
func subSym(a, b *mat.SymDense) *mat.SymDense {
	m := a.SymmetricDim()
	out := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			out.SetSym(i, j, a.At(i, j)-b.At(i, j))
		}
	}
	return out
}

// Package lipschitz estimates Lipschitz matrices and uses them to bound
// black-box functions.
//
// The Lipschitz matrix L generalizes the scalar Lipschitz constant to a
// direction-aware metric: the estimator finds the symmetric positive
// semidefinite matrix H of minimal trace such that
//
//	|f(x_i) - f(x_j)|^2 <= (x_i - x_j)^T H (x_i - x_j)   for sample pairs
//	grad_k grad_k^T     <= H                             for gradients
//
// and exposes L as the PSD square root of H, so that
// |f(x_1) - f(x_2)| <= ||L (x_1 - x_2)|| for every function consistent
// with the observations. The eigenvectors of H, ordered by decreasing
// eigenvalue, give the directions the function is most sensitive to.
//
// Beyond estimation, the package bounds function values: Bounds computes
// the two-sided Lipschitz envelope at query points, and BoundsDomain finds
// the extremal attainable bound anywhere in a continuous domain via a
// candidate-seeded minimax search.
//
// Example usage:
//
//	lm := lipschitz.NewLipschitzMatrix()
//	err := lm.Fit(X, fX, grads)
//	if err != nil {
//		log.Fatal(err)
//	}
//	lb, ub, err := lm.Bounds(X, fX, Xtest)
package lipschitz

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/PSDR/core/model"
	psdrErrors "github.com/vishalbelsare/PSDR/pkg/errors"
	"github.com/vishalbelsare/PSDR/pkg/log"
	"github.com/vishalbelsare/PSDR/sdp"
)

// LipschitzMatrix estimates the Lipschitz matrix of a function from
// samples of its values and (optionally) gradients.
type LipschitzMatrix struct {
	state  *model.StateManager
	logger log.Logger

	epsilon  float64
	dim      int
	solver   sdp.Solver
	settings *sdp.Settings

	// Derived state, recomputed on every Fit.
	h *mat.SymDense
	l *mat.Dense
	u *mat.Dense
}

// Option is a functional option for LipschitzMatrix.
type Option func(*LipschitzMatrix)

// WithEpsilon sets the noise tolerance: sample pairs whose value gap is
// within epsilon impose no constraint on H. Must be nonnegative.
func WithEpsilon(epsilon float64) Option {
	return func(lm *LipschitzMatrix) { lm.epsilon = epsilon }
}

// WithSolver overrides the SDP solver strategy.
func WithSolver(s sdp.Solver) Option {
	return func(lm *LipschitzMatrix) { lm.solver = s }
}

// WithDimension fixes the input dimension up front, allowing a degenerate
// fit with neither samples nor gradients to succeed with a zero matrix.
func WithDimension(m int) Option {
	return func(lm *LipschitzMatrix) { lm.dim = m }
}

// WithTolerances sets the solver's absolute, relative and feasibility
// tolerances. Defaults are 1e-7, 1e-6 and 1e-7.
func WithTolerances(absTol, relTol, feasTol float64) Option {
	return func(lm *LipschitzMatrix) {
		lm.settings.AbsTol = absTol
		lm.settings.RelTol = relTol
		lm.settings.FeasTol = feasTol
	}
}

// WithRefinement sets the solver's refinement pass count. Default 1.
func WithRefinement(n int) Option {
	return func(lm *LipschitzMatrix) { lm.settings.Refinement = n }
}

// WithVerbose enables solver and search debug logging.
func WithVerbose(v bool) Option {
	return func(lm *LipschitzMatrix) { lm.settings.Verbose = v }
}

// NewLipschitzMatrix creates an unfitted estimator with the default
// augmented Lagrangian solver.
func NewLipschitzMatrix(opts ...Option) *LipschitzMatrix {
	lm := &LipschitzMatrix{
		state:    model.NewStateManager(),
		settings: sdp.DefaultSettings(),
	}
	lm.logger = log.GetLoggerWithName("lipschitz").With(
		log.ModelNameKey, "LipschitzMatrix",
		log.ComponentKey, "lipschitz",
	)

	for _, opt := range opts {
		opt(lm)
	}
	if lm.solver == nil {
		lm.solver = sdp.NewAugLagSolver()
	}
	return lm
}

// Fit estimates the Lipschitz matrix from the given data and replaces any
// previously fitted state. X (N x m) and fX (length N) must be supplied
// together or not at all; grads (K x m) is independent and optional. A fit
// with no data at all succeeds with a zero matrix when the dimension is
// known (WithDimension), since any function consistent with no
// observations is unconstrained.
//
// Fit reads the caller's data but never mutates it.
func (lm *LipschitzMatrix) Fit(X mat.Matrix, fX []float64, grads mat.Matrix) (err error) {
	defer psdrErrors.Recover(&err, "LipschitzMatrix.Fit")

	startTime := time.Now()

	if lm.epsilon < 0 {
		return psdrErrors.NewValueError("LipschitzMatrix.Fit", "epsilon must be nonnegative")
	}
	if (X == nil) != (fX == nil) {
		return psdrErrors.NewValueError("LipschitzMatrix.Fit",
			"X and fX must both be specified simultaneously or not at all")
	}

	n := 0
	dim := lm.dim
	if X != nil {
		var mx int
		n, mx = X.Dims()
		if len(fX) != n {
			return psdrErrors.NewDimensionError("LipschitzMatrix.Fit", n, len(fX), 0)
		}
		if dim != 0 && mx != dim {
			return psdrErrors.NewDimensionError("LipschitzMatrix.Fit", dim, mx, 1)
		}
		dim = mx
	}
	k := 0
	if grads != nil {
		var mg int
		k, mg = grads.Dims()
		if dim != 0 && mg != dim {
			return psdrErrors.NewDimensionError("LipschitzMatrix.Fit", dim, mg, 1)
		}
		dim = mg
	}
	if dim == 0 {
		return psdrErrors.NewModelError("LipschitzMatrix.Fit",
			"input dimension unknown: supply samples, gradients, or WithDimension",
			psdrErrors.ErrEmptyData)
	}

	lm.logger.Info("Fit started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, n,
		log.GradientsKey, k,
		log.FeaturesKey, dim,
	)

	// Degenerate fit: nothing observed, so the zero matrix is the
	// minimal consistent metric.
	if n == 0 && k == 0 {
		lm.publish(dim, n, identity(dim), mat.NewSymDense(dim, nil), mat.NewDense(dim, dim, nil))
		return nil
	}

	// Scale outputs for solver conditioning; the scale is inverted when
	// publishing so results are scale-invariant to the caller.
	scale := outputScale(fX, grads)
	fXScaled := make([]float64, n)
	for i := range fXScaled {
		fXScaled[i] = fX[i] / scale
	}
	var gradsScaled *mat.Dense
	if k > 0 {
		gradsScaled = mat.NewDense(k, dim, nil)
		for i := 0; i < k; i++ {
			for j := 0; j < dim; j++ {
				gradsScaled.Set(i, j, grads.At(i, j)/scale)
			}
		}
	}

	var xArg mat.Matrix
	var fxArg []float64
	if n > 0 {
		xArg, fxArg = X, fXScaled
	}
	var gradsArg mat.Matrix
	if gradsScaled != nil {
		gradsArg = gradsScaled
	}
	prob, err := sdp.NewProblem(xArg, fxArg, gradsArg, lm.epsilon/scale)
	if err != nil {
		return psdrErrors.NewModelError("LipschitzMatrix.Fit", "constraint assembly failed", err)
	}

	hRaw, err := lm.solver.Solve(prob, lm.settings)
	if err != nil {
		return psdrErrors.NewModelError("LipschitzMatrix.Fit", "semidefinite solve failed", err)
	}

	// Eigendecompose, clip solver roundoff, order by decreasing
	// eigenvalue and fix signs from the data.
	var es mat.EigenSym
	if !es.Factorize(hRaw, true) {
		return psdrErrors.NewModelError("LipschitzMatrix.Fit", "eigendecomposition failed",
			psdrErrors.ErrSolverFailure)
	}
	valsAsc := es.Values(nil)
	var vecsAsc mat.Dense
	es.VectorsTo(&vecsAsc)

	u := mat.NewDense(dim, dim, nil)
	vals := make([]float64, dim)
	for j := 0; j < dim; j++ {
		src := dim - 1 - j
		vals[j] = math.Max(valsAsc[src], 0)
		for r := 0; r < dim; r++ {
			u.Set(r, j, vecsAsc.At(r, src))
		}
	}
	FixSubspaceSigns(u, xArg, fxArg, gradsArg)

	h := mat.NewSymDense(dim, nil)
	l := mat.NewDense(dim, dim, nil)
	col := mat.NewVecDense(dim, nil)
	for j := 0; j < dim; j++ {
		for r := 0; r < dim; r++ {
			col.SetVec(r, u.At(r, j))
		}
		h.SymRankOne(h, scale*scale*vals[j], col)
		sq := scale * math.Sqrt(vals[j])
		for r := 0; r < dim; r++ {
			for c := 0; c < dim; c++ {
				l.Set(r, c, l.At(r, c)+sq*col.AtVec(r)*col.AtVec(c))
			}
		}
	}

	lm.publish(dim, n, u, h, l)

	lm.logger.Info("Fit completed",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
		log.PairsKey, len(prob.Pairs),
		log.GradientsKey, k,
	)
	return nil
}

// publish installs freshly derived state and marks the estimator fitted.
func (lm *LipschitzMatrix) publish(dim, n int, u *mat.Dense, h *mat.SymDense, l *mat.Dense) {
	lm.dim = dim
	lm.u = u
	lm.h = h
	lm.l = l
	lm.state.SetFitted()
	lm.state.SetDimensions(dim, n)
}

// IsFitted reports whether Fit has succeeded.
func (lm *LipschitzMatrix) IsFitted() bool {
	return lm.state.IsFitted()
}

// Dim returns the input dimension after a fit, zero before.
func (lm *LipschitzMatrix) Dim() int {
	return lm.dim
}

// Epsilon returns the configured noise tolerance.
func (lm *LipschitzMatrix) Epsilon() float64 {
	return lm.epsilon
}

// H returns a copy of the solved symmetric positive semidefinite matrix.
func (lm *LipschitzMatrix) H() (*mat.SymDense, error) {
	if !lm.state.IsFitted() {
		return nil, psdrErrors.NewNotFittedError("LipschitzMatrix", "H")
	}
	out := mat.NewSymDense(lm.dim, nil)
	out.CopySym(lm.h)
	return out, nil
}

// L returns a copy of the Lipschitz matrix, the PSD square root of H.
func (lm *LipschitzMatrix) L() (*mat.Dense, error) {
	if !lm.state.IsFitted() {
		return nil, psdrErrors.NewNotFittedError("LipschitzMatrix", "L")
	}
	return mat.DenseCopyOf(lm.l), nil
}

// U returns a copy of the subspace basis: eigenvectors of H ordered by
// decreasing eigenvalue with deterministically fixed signs.
func (lm *LipschitzMatrix) U() (*mat.Dense, error) {
	if !lm.state.IsFitted() {
		return nil, psdrErrors.NewNotFittedError("LipschitzMatrix", "U")
	}
	return mat.DenseCopyOf(lm.u), nil
}

// outputScale computes max(range of fX, max gradient norm), defaulting to
// 1 for degenerate data.
func outputScale(fX []float64, grads mat.Matrix) float64 {
	scale := 0.0
	if len(fX) > 0 {
		lo, hi := fX[0], fX[0]
		for _, v := range fX[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		scale = hi - lo
	}
	if grads != nil {
		k, m := grads.Dims()
		for i := 0; i < k; i++ {
			sum := 0.0
			for j := 0; j < m; j++ {
				g := grads.At(i, j)
				sum += g * g
			}
			if nrm := math.Sqrt(sum); nrm > scale {
				scale = nrm
			}
		}
	}
	if scale <= 0 {
		return 1
	}
	return scale
}

func identity(m int) *mat.Dense {
	id := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		id.Set(i, i, 1)
	}
	return id
}

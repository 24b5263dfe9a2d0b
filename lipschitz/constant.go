package lipschitz

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/PSDR/core/model"
	"github.com/vishalbelsare/PSDR/domain"
	psdrErrors "github.com/vishalbelsare/PSDR/pkg/errors"
	"github.com/vishalbelsare/PSDR/pkg/log"
)

// LipschitzConstant estimates the scalar Lipschitz constant of a function
// from samples and gradients. It is the one-number specialization of
// LipschitzMatrix: the implied metric is the scaled identity, so every
// direction is treated alike. No semidefinite solve is involved; the
// estimate is a closed-form maximum over pairwise slopes and gradient
// norms.
type LipschitzConstant struct {
	state  *model.StateManager
	logger log.Logger

	epsilon float64
	scalar  float64
	dim     int
}

// ConstantOption configures a LipschitzConstant.
type ConstantOption func(*LipschitzConstant)

// WithConstantEpsilon sets the deadband subtracted from pairwise function
// differences before the slope is taken. Gradients cannot be combined
// with a positive epsilon.
func WithConstantEpsilon(epsilon float64) ConstantOption {
	return func(lc *LipschitzConstant) { lc.epsilon = epsilon }
}

// NewLipschitzConstant creates an unfitted scalar estimator.
func NewLipschitzConstant(opts ...ConstantOption) *LipschitzConstant {
	lc := &LipschitzConstant{
		state:  model.NewStateManager(),
		logger: log.GetLoggerWithName("lipschitz"),
	}
	for _, opt := range opts {
		opt(lc)
	}
	return lc
}

// Fit computes the scalar estimate
//
//	max( max_{i<j} (|fX_i - fX_j| - epsilon) / ||x_i - x_j||, max_k ||g_k|| )
//
// over all unordered sample pairs and all gradient rows. Either samples
// or gradients may be omitted; at least one sample or gradient fixes the
// dimension. Coincident samples whose function values differ by more
// than epsilon make the problem infeasible.
func (lc *LipschitzConstant) Fit(X mat.Matrix, fX []float64, grads mat.Matrix) (err error) {
	defer psdrErrors.Recover(&err, "LipschitzConstant.Fit")

	if lc.epsilon < 0 {
		return psdrErrors.NewValueError("LipschitzConstant.Fit", "epsilon must be non-negative")
	}
	if grads != nil && lc.epsilon > 0 {
		return psdrErrors.NewValueError("LipschitzConstant.Fit",
			"gradients cannot be combined with a positive epsilon")
	}
	if (X == nil) != (fX == nil) {
		return psdrErrors.NewValueError("LipschitzConstant.Fit",
			"X and fX must both be specified simultaneously or not at all")
	}

	n, dim := 0, 0
	if X != nil {
		var mx int
		n, mx = X.Dims()
		if len(fX) != n {
			return psdrErrors.NewDimensionError("LipschitzConstant.Fit", n, len(fX), 0)
		}
		dim = mx
	}
	ng := 0
	if grads != nil {
		var mg int
		ng, mg = grads.Dims()
		if dim != 0 && mg != dim {
			return psdrErrors.NewDimensionError("LipschitzConstant.Fit", dim, mg, 1)
		}
		dim = mg
	}
	if dim == 0 {
		return psdrErrors.NewModelError("LipschitzConstant.Fit",
			"no samples or gradients provided", psdrErrors.ErrEmptyData)
	}

	startTime := time.Now()
	lc.logger.Info("Starting LipschitzConstant fit",
		log.ModelNameKey, "LipschitzConstant",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, n,
		log.GradientsKey, ng,
		log.FeaturesKey, dim,
	)

	scalar := 0.0
	xi := make([]float64, dim)
	xj := make([]float64, dim)
	for i := 0; i < n; i++ {
		mat.Row(xi, i, X)
		for j := i + 1; j < n; j++ {
			mat.Row(xj, j, X)
			slack := math.Abs(fX[i]-fX[j]) - lc.epsilon
			if slack <= 0 {
				continue
			}
			dist := floats.Distance(xi, xj, 2)
			if dist == 0 {
				return psdrErrors.NewModelError("LipschitzConstant.Fit",
					"coincident samples with differing function values", psdrErrors.ErrInfeasible)
			}
			if s := slack / dist; s > scalar {
				scalar = s
			}
		}
	}
	g := make([]float64, dim)
	for k := 0; k < ng; k++ {
		mat.Row(g, k, grads)
		if s := floats.Norm(g, 2); s > scalar {
			scalar = s
		}
	}

	lc.scalar = scalar
	lc.dim = dim
	lc.state.SetDimensions(dim, n)
	lc.state.SetFitted()

	lc.logger.Info("LipschitzConstant fit completed",
		log.ModelNameKey, "LipschitzConstant",
		log.OperationKey, log.OperationFit,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
	)
	return nil
}

// IsFitted reports whether Fit has completed successfully.
func (lc *LipschitzConstant) IsFitted() bool { return lc.state.IsFitted() }

// Dim returns the input dimension seen during Fit.
func (lc *LipschitzConstant) Dim() int { return lc.dim }

// Epsilon returns the configured deadband.
func (lc *LipschitzConstant) Epsilon() float64 { return lc.epsilon }

// Scalar returns the fitted Lipschitz constant.
func (lc *LipschitzConstant) Scalar() (float64, error) {
	if !lc.state.IsFitted() {
		return 0, psdrErrors.NewNotFittedError("LipschitzConstant", "Scalar")
	}
	return lc.scalar, nil
}

// L returns the scalar metric as a matrix, the constant times the
// identity, for interchangeability with LipschitzMatrix.
func (lc *LipschitzConstant) L() (*mat.Dense, error) {
	if !lc.state.IsFitted() {
		return nil, psdrErrors.NewNotFittedError("LipschitzConstant", "L")
	}
	l := identity(lc.dim)
	l.Scale(lc.scalar, l)
	return l, nil
}

// Bounds computes the scalar Lipschitz envelope at every row of Xtest,
// with the same conventions as LipschitzMatrix.Bounds.
func (lc *LipschitzConstant) Bounds(X mat.Matrix, fX []float64, Xtest mat.Matrix) (lb, ub []float64, err error) {
	defer psdrErrors.Recover(&err, "LipschitzConstant.Bounds")
	if !lc.state.IsFitted() {
		return nil, nil, psdrErrors.NewNotFittedError("LipschitzConstant", "Bounds")
	}
	if Xtest == nil {
		return nil, nil, psdrErrors.NewValueError("LipschitzConstant.Bounds", "Xtest must not be nil")
	}
	if _, mt := Xtest.Dims(); mt != lc.dim {
		return nil, nil, psdrErrors.NewDimensionError("LipschitzConstant.Bounds", lc.dim, mt, 1)
	}
	if (X == nil) != (fX == nil) {
		return nil, nil, psdrErrors.NewValueError("LipschitzConstant.Bounds",
			"X and fX must both be specified simultaneously or not at all")
	}
	if X != nil {
		n, mx := X.Dims()
		if mx != lc.dim {
			return nil, nil, psdrErrors.NewDimensionError("LipschitzConstant.Bounds", lc.dim, mx, 1)
		}
		if len(fX) != n {
			return nil, nil, psdrErrors.NewDimensionError("LipschitzConstant.Bounds", n, len(fX), 0)
		}
	}
	l := identity(lc.dim)
	l.Scale(lc.scalar, l)
	lb, ub = envelopeBounds(l, X, fX, Xtest)
	return lb, ub, nil
}

// BoundsDomain finds the extremal attainable envelope values anywhere in
// dom under the scalar metric, with the same conventions as
// LipschitzMatrix.BoundsDomain.
func (lc *LipschitzConstant) BoundsDomain(X mat.Matrix, fX []float64, dom domain.Domain) (lb, ub float64, err error) {
	defer psdrErrors.Recover(&err, "LipschitzConstant.BoundsDomain")
	if !lc.state.IsFitted() {
		return 0, 0, psdrErrors.NewNotFittedError("LipschitzConstant", "BoundsDomain")
	}
	if dom == nil {
		return 0, 0, psdrErrors.NewValueError("LipschitzConstant.BoundsDomain", "domain must not be nil")
	}
	if dom.Len() != lc.dim {
		return 0, 0, psdrErrors.NewDimensionError("LipschitzConstant.BoundsDomain", lc.dim, dom.Len(), 1)
	}
	if (X == nil) != (fX == nil) {
		return 0, 0, psdrErrors.NewValueError("LipschitzConstant.BoundsDomain",
			"X and fX must both be specified simultaneously or not at all")
	}
	n := 0
	if X != nil {
		var mx int
		n, mx = X.Dims()
		if mx != lc.dim {
			return 0, 0, psdrErrors.NewDimensionError("LipschitzConstant.BoundsDomain", lc.dim, mx, 1)
		}
		if len(fX) != n {
			return 0, 0, psdrErrors.NewDimensionError("LipschitzConstant.BoundsDomain", n, len(fX), 0)
		}
	}
	if n == 0 {
		return math.Inf(-1), math.Inf(1), nil
	}

	startTime := time.Now()

	l := identity(lc.dim)
	l.Scale(lc.scalar, l)
	lb, ub, nc, err := domainBounds("LipschitzConstant.BoundsDomain", l, X, fX, dom, false)
	if err != nil {
		return 0, 0, err
	}

	lc.logger.Debug("BoundsDomain completed",
		log.OperationKey, log.OperationBounds,
		log.CandidatesKey, nc,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
	)
	return lb, ub, nil
}

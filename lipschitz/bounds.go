package lipschitz

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/PSDR/core/parallel"
	"github.com/vishalbelsare/PSDR/domain"
	"github.com/vishalbelsare/PSDR/geometry"
	"github.com/vishalbelsare/PSDR/minimax"
	psdrErrors "github.com/vishalbelsare/PSDR/pkg/errors"
	"github.com/vishalbelsare/PSDR/pkg/log"
)

// Bounds computes the two-sided Lipschitz envelope at every row of Xtest:
//
//	lb(x) = max_i fX_i - ||L (x_i - x)||
//	ub(x) = min_i fX_i + ||L (x_i - x)||
//
// No function consistent with L can escape this envelope, so lb <= ub
// whenever the data itself satisfies the Lipschitz bound under L. An
// empty sample set yields (-Inf, +Inf) everywhere. The estimator must be
// fitted; caller data is read, never mutated.
func (lm *LipschitzMatrix) Bounds(X mat.Matrix, fX []float64, Xtest mat.Matrix) (lb, ub []float64, err error) {
	defer psdrErrors.Recover(&err, "LipschitzMatrix.Bounds")
	if !lm.state.IsFitted() {
		return nil, nil, psdrErrors.NewNotFittedError("LipschitzMatrix", "Bounds")
	}
	if Xtest == nil {
		return nil, nil, psdrErrors.NewValueError("LipschitzMatrix.Bounds", "Xtest must not be nil")
	}
	nt, mt := Xtest.Dims()
	if mt != lm.dim {
		return nil, nil, psdrErrors.NewDimensionError("LipschitzMatrix.Bounds", lm.dim, mt, 1)
	}
	if (X == nil) != (fX == nil) {
		return nil, nil, psdrErrors.NewValueError("LipschitzMatrix.Bounds",
			"X and fX must both be specified simultaneously or not at all")
	}
	if X != nil {
		n, mx := X.Dims()
		if mx != lm.dim {
			return nil, nil, psdrErrors.NewDimensionError("LipschitzMatrix.Bounds", lm.dim, mx, 1)
		}
		if len(fX) != n {
			return nil, nil, psdrErrors.NewDimensionError("LipschitzMatrix.Bounds", n, len(fX), 0)
		}
	}

	lm.logger.Debug("Bounds query",
		log.OperationKey, log.OperationBounds,
		log.PhaseKey, log.PhaseInference,
		log.SamplesKey, nt,
	)

	lb, ub = envelopeBounds(lm.l, X, fX, Xtest)
	return lb, ub, nil
}

// envelopeBounds evaluates the pointwise envelope under metric l. X may
// be nil for the trivial infinite envelope.
func envelopeBounds(l *mat.Dense, X mat.Matrix, fX []float64, Xtest mat.Matrix) (lb, ub []float64) {
	nt, _ := Xtest.Dims()
	lb = make([]float64, nt)
	ub = make([]float64, nt)
	for t := range lb {
		lb[t] = math.Inf(-1)
		ub[t] = math.Inf(1)
	}
	if X == nil {
		return lb, ub
	}
	n, _ := X.Dims()
	if n == 0 {
		return lb, ub
	}

	y := metricRows(l, X)
	yTest := metricRows(l, Xtest)

	for i := 0; i < n; i++ {
		for t := 0; t < nt; t++ {
			dist := floats.Distance(y[i], yTest[t], 2)
			if v := fX[i] - dist; v > lb[t] {
				lb[t] = v
			}
			if v := fX[i] + dist; v < ub[t] {
				ub[t] = v
			}
		}
	}
	return lb, ub
}

// metricRows returns the rows of X mapped through the metric l.
func metricRows(l *mat.Dense, X mat.Matrix) [][]float64 {
	n, m := X.Dims()
	out := make([][]float64, n)
	row := make([]float64, m)
	for i := 0; i < n; i++ {
		for c := 0; c < m; c++ {
			row[c] = X.At(i, c)
		}
		out[i] = applyMetric(l, row)
	}
	return out
}

// applyMetric computes l*x as a fresh slice.
func applyMetric(l *mat.Dense, x []float64) []float64 {
	lr, _ := l.Dims()
	y := make([]float64, lr)
	for r := 0; r < lr; r++ {
		y[r] = floats.Dot(l.RawRowView(r), x)
	}
	return y
}

// BoundsDomain finds the extremal attainable envelope values anywhere in
// dom: the global minimum of the lower envelope and the global maximum of
// the upper envelope, approximated by minimax searches from candidate
// points far from the samples under the L metric. Each local search only
// certifies a local extremum, so the final answer reduces over all
// candidates: the minimum of per-candidate lower results and the maximum
// of per-candidate upper results. In-domain sample points join the
// reduction directly, since the envelope pinches to the observed value
// there.
//
// The per-candidate searches are independent and run in parallel; the
// reduction is order-independent.
func (lm *LipschitzMatrix) BoundsDomain(X mat.Matrix, fX []float64, dom domain.Domain) (lb, ub float64, err error) {
	defer psdrErrors.Recover(&err, "LipschitzMatrix.BoundsDomain")
	if !lm.state.IsFitted() {
		return 0, 0, psdrErrors.NewNotFittedError("LipschitzMatrix", "BoundsDomain")
	}
	if dom == nil {
		return 0, 0, psdrErrors.NewValueError("LipschitzMatrix.BoundsDomain", "domain must not be nil")
	}
	if dom.Len() != lm.dim {
		return 0, 0, psdrErrors.NewDimensionError("LipschitzMatrix.BoundsDomain", lm.dim, dom.Len(), 1)
	}
	if (X == nil) != (fX == nil) {
		return 0, 0, psdrErrors.NewValueError("LipschitzMatrix.BoundsDomain",
			"X and fX must both be specified simultaneously or not at all")
	}
	n := 0
	if X != nil {
		var mx int
		n, mx = X.Dims()
		if mx != lm.dim {
			return 0, 0, psdrErrors.NewDimensionError("LipschitzMatrix.BoundsDomain", lm.dim, mx, 1)
		}
		if len(fX) != n {
			return 0, 0, psdrErrors.NewDimensionError("LipschitzMatrix.BoundsDomain", n, len(fX), 0)
		}
	}
	if n == 0 {
		return math.Inf(-1), math.Inf(1), nil
	}

	startTime := time.Now()

	lb, ub, nc, err := domainBounds("LipschitzMatrix.BoundsDomain", lm.l, X, fX, dom, lm.settings.Verbose)
	if err != nil {
		return 0, 0, err
	}

	lm.logger.Debug("BoundsDomain completed",
		log.OperationKey, log.OperationBounds,
		log.CandidatesKey, nc,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
	)
	return lb, ub, nil
}

// domainBounds runs the candidate-seeded minimax search for the extremal
// envelope values under metric l. X must be non-empty with rows matching
// l's column count; callers validate. Returns the candidate count for
// logging.
func domainBounds(op string, l *mat.Dense, X mat.Matrix, fX []float64, dom domain.Domain, verbose bool) (lb, ub float64, nc int, err error) {
	candidates, err := geometry.CandidateFurthestPoints(X, dom, l, nil)
	if err != nil {
		return 0, 0, 0, psdrErrors.NewModelError(op, "candidate generation failed", err)
	}
	nc, _ = candidates.Dims()

	lower := newBoundObjective(l, X, fX, false)
	upper := newBoundObjective(l, X, fX, true)
	searchOpts := &minimax.Options{TrustRegion: false, Verbose: verbose}

	lbs := make([]float64, nc)
	ubs := make([]float64, nc)
	errs := make([]error, nc)
	parallel.Parallelize(nc, func(start, end int) {
		for c := start; c < end; c++ {
			x0 := mat.Row(nil, c, candidates)

			xl, err := minimax.Minimize(lower, x0, dom, searchOpts)
			if err != nil {
				errs[c] = err
				continue
			}
			lbs[c] = floats.Max(lower.Eval(xl))

			xu, err := minimax.Minimize(upper, x0, dom, searchOpts)
			if err != nil {
				errs[c] = err
				continue
			}
			// upper components are negated, so the candidate's bound is
			// the smallest un-negated value.
			ubs[c] = -floats.Max(upper.Eval(xu))
		}
	})
	for _, e := range errs {
		if e != nil {
			return 0, 0, 0, psdrErrors.NewModelError(op, "minimax search failed", e)
		}
	}

	lb = floats.Min(lbs)
	ub = floats.Max(ubs)

	// Envelope values at in-domain samples are attained by definition.
	n, m := X.Dims()
	x := make([]float64, m)
	for i := 0; i < n; i++ {
		for c := 0; c < m; c++ {
			x[c] = X.At(i, c)
		}
		if !dom.IsInside(x) {
			continue
		}
		if v := floats.Max(lower.Eval(x)); v < lb {
			lb = v
		}
		if v := -floats.Max(upper.Eval(x)); v > ub {
			ub = v
		}
	}
	return lb, ub, nc, nil
}

// boundObjective implements the minimax.Objective for one side of the
// envelope. Components are fX_i - dist_i for the lower side and
// -(fX_i + dist_i) for the upper side, so minimizing the maximum
// component drives toward the envelope's extremum.
type boundObjective struct {
	l     *mat.Dense
	y     [][]float64
	fX    []float64
	upper bool
}

func newBoundObjective(l *mat.Dense, X mat.Matrix, fX []float64, upper bool) *boundObjective {
	return &boundObjective{
		l:     l,
		y:     metricRows(l, X),
		fX:    append([]float64(nil), fX...),
		upper: upper,
	}
}

// Eval returns the component values at x.
func (b *boundObjective) Eval(x []float64) []float64 {
	y := applyMetric(b.l, x)
	vals := make([]float64, len(b.y))
	for i := range b.y {
		dist := floats.Distance(y, b.y[i], 2)
		if b.upper {
			vals[i] = -(b.fX[i] + dist)
		} else {
			vals[i] = b.fX[i] - dist
		}
	}
	return vals
}

// Jacobian writes the componentwise gradients at x. Both sides share the
// same rows, -L^T (Lx - Lx_i) / dist_i; rows for coincident points, where
// the norm is not differentiable, are zeroed rather than NaN.
func (b *boundObjective) Jacobian(dst *mat.Dense, x []float64) {
	m := len(x)
	y := applyMetric(b.l, x)
	v := make([]float64, len(y))
	for i := range b.y {
		dist := floats.Distance(y, b.y[i], 2)
		if dist == 0 {
			for c := 0; c < m; c++ {
				dst.Set(i, c, 0)
			}
			continue
		}
		for r := range v {
			v[r] = (y[r] - b.y[i][r]) / dist
		}
		for c := 0; c < m; c++ {
			sum := 0.0
			for r := range v {
				sum += b.l.At(r, c) * v[r]
			}
			dst.Set(i, c, -sum)
		}
	}
}

// Package minimax provides a local search minimizing the maximum component
// of a vector-valued objective over a domain.
//
// The objectives this package serves are non-smooth pointwise maxima of
// distance-based terms, so the search uses projected subgradient descent:
// at each iterate the subgradient is a convex combination of the Jacobian
// rows of the near-active components, the step follows a diminishing
// schedule, and every iterate is projected back into the domain. The best
// point seen is returned, which is all a caller performing a
// best-of-multiple-starts reduction needs.
package minimax

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/PSDR/domain"
	"github.com/vishalbelsare/PSDR/pkg/log"
)

// Objective is a vector-valued function with componentwise gradients.
// Implementations define their own gradient rule at non-differentiable
// points; rows there are expected to be zeroed, not NaN.
type Objective interface {
	// Eval returns the component values at x.
	Eval(x []float64) []float64

	// Jacobian writes the n x m Jacobian at x into dst, one row per
	// component.
	Jacobian(dst *mat.Dense, x []float64)
}

// Options configures the search.
type Options struct {
	// MaxIterations bounds subgradient steps. Defaults to 500.
	MaxIterations int

	// Tol stops the search when the best max-component value stagnates
	// below this amount over a full patience window. Defaults to 1e-8.
	Tol float64

	// InitialStep scales the first step length. Defaults to 1.
	InitialStep float64

	// ActiveTol treats components within this distance of the maximum as
	// active for the convex-combination subgradient. Defaults to 1e-8
	// relative to the value scale.
	ActiveTol float64

	// TrustRegion clamps each step to a shrinking radius. Disabled by
	// the Lipschitz bounding engine.
	TrustRegion bool

	// Verbose enables per-iteration debug logging.
	Verbose bool
}

func (o *Options) withDefaults() Options {
	out := Options{
		MaxIterations: 500,
		Tol:           1e-8,
		InitialStep:   1,
		ActiveTol:     1e-8,
	}
	if o == nil {
		return out
	}
	if o.MaxIterations > 0 {
		out.MaxIterations = o.MaxIterations
	}
	if o.Tol > 0 {
		out.Tol = o.Tol
	}
	if o.InitialStep > 0 {
		out.InitialStep = o.InitialStep
	}
	if o.ActiveTol > 0 {
		out.ActiveTol = o.ActiveTol
	}
	out.TrustRegion = o != nil && o.TrustRegion
	out.Verbose = o != nil && o.Verbose
	return out
}

// stagnation window before declaring convergence
const patience = 25

// Minimize searches from x0 for a point of dom approximately minimizing
// the maximum component of obj. The starting point is projected into the
// domain first; the returned point is always feasible.
func Minimize(obj Objective, x0 []float64, dom domain.Domain, opts *Options) ([]float64, error) {
	if dom == nil {
		return nil, errors.New("minimax: nil domain")
	}
	m := dom.Len()
	if len(x0) != m {
		return nil, errors.Newf("minimax: start point has dimension %d, domain has %d", len(x0), m)
	}
	o := opts.withDefaults()

	var logger log.Logger
	if o.Verbose {
		logger = log.GetLoggerWithName("minimax")
	}

	x := make([]float64, m)
	dom.Project(x, x0)

	best := append([]float64(nil), x...)
	bestVal := maxComponent(obj.Eval(x))
	lastImprove := 0
	prevBest := bestVal

	n := len(obj.Eval(x))
	jac := mat.NewDense(n, m, nil)
	g := make([]float64, m)
	trial := make([]float64, m)
	radius := o.InitialStep

	for it := 0; it < o.MaxIterations; it++ {
		vals := obj.Eval(x)
		fmax := maxComponent(vals)

		obj.Jacobian(jac, x)
		subgradient(g, jac, vals, fmax, o.ActiveTol)

		gn := floats.Norm(g, 2)
		if gn == 0 {
			break
		}

		// Diminishing step, scaled against the subgradient norm.
		step := o.InitialStep / (math.Sqrt(float64(it)+1) * gn)
		if o.TrustRegion && step*gn > radius {
			step = radius / gn
		}

		floats.ScaleTo(trial, -step, g)
		floats.Add(trial, x)
		dom.Project(x, trial)

		fTrial := maxComponent(obj.Eval(x))
		if fTrial < bestVal {
			bestVal = fTrial
			copy(best, x)
			lastImprove = it
		} else if o.TrustRegion {
			radius *= 0.7
		}

		if o.Verbose {
			logger.Debug("iteration", log.IterationsKey, it, "fmax", fTrial, "best", bestVal)
		}

		if it-lastImprove >= patience {
			if prevBest-bestVal <= o.Tol {
				break
			}
			prevBest = bestVal
			lastImprove = it
		}
	}

	return best, nil
}

// subgradient writes the convex combination of near-active Jacobian rows
// into g. Components within tol of the maximum share equal weight.
func subgradient(g []float64, jac *mat.Dense, vals []float64, fmax, tol float64) {
	for i := range g {
		g[i] = 0
	}
	scale := tol * math.Max(1, math.Abs(fmax))
	active := 0
	for i, v := range vals {
		if fmax-v <= scale {
			active++
			floats.Add(g, jac.RawRowView(i))
		}
	}
	if active > 1 {
		floats.Scale(1/float64(active), g)
	}
}

func maxComponent(vals []float64) float64 {
	fmax := math.Inf(-1)
	for _, v := range vals {
		if v > fmax {
			fmax = v
		}
	}
	return fmax
}

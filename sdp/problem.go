package sdp

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	psdrErrors "github.com/vishalbelsare/PSDR/pkg/errors"
)

// PairConstraint is one finite-difference constraint
//
//	rhs <= d^T H d
//
// where d is the unit-normalized difference between two sample points.
// The right-hand side has been divided by the squared distance so the
// constraint is mathematically unchanged but numerically conditioned.
type PairConstraint struct {
	Direction []float64
	RHS       float64
}

// Problem is the trace-minimization semidefinite program solved during a
// Lipschitz matrix fit:
//
//	minimize   trace(H)
//	such that  rhs_r <= d_r^T H d_r        (sample pairs)
//	           g_k g_k^T <= H              (gradients, PSD order)
//	           0 <= H                      (PSD order)
type Problem struct {
	// Dim is the input dimension m; H is m x m.
	Dim int

	// Pairs holds the finite-difference constraints, one per unordered
	// sample pair with nontrivial slack.
	Pairs []PairConstraint

	// Gradients holds one outer product g g^T per observed gradient.
	Gradients []*mat.SymDense
}

// NumConstraints returns the number of pair plus gradient constraints.
func (p *Problem) NumConstraints() int {
	return len(p.Pairs) + len(p.Gradients)
}

// NewProblem assembles the semidefinite program from scaled sample and
// gradient data. X is N x m (may be nil together with fX), grads is K x m
// (may be nil), epsilon >= 0 relaxes pair constraints by the
// epsilon-insensitive rule: the slack |fX_i - fX_j| - epsilon clamps at
// zero, so pairs whose value gap is within epsilon impose no constraint.
//
// Pairs at zero distance with a positive slack are infeasible; they make
// the whole program infeasible and are reported as ErrInfeasible rather
// than silently producing an unbounded constraint.
func NewProblem(X mat.Matrix, fX []float64, grads mat.Matrix, epsilon float64) (*Problem, error) {
	if epsilon < 0 {
		return nil, psdrErrors.NewValueError("sdp.NewProblem", "epsilon must be nonnegative")
	}

	dim := 0
	var n int
	if X != nil {
		var mx int
		n, mx = X.Dims()
		if len(fX) != n {
			return nil, psdrErrors.NewDimensionError("sdp.NewProblem", n, len(fX), 0)
		}
		dim = mx
	}
	if grads != nil {
		_, mg := grads.Dims()
		if dim != 0 && mg != dim {
			return nil, psdrErrors.NewDimensionError("sdp.NewProblem", dim, mg, 1)
		}
		dim = mg
	}
	if dim == 0 {
		return nil, psdrErrors.NewModelError("sdp.NewProblem", "no data to infer dimension", psdrErrors.ErrEmptyData)
	}

	prob := &Problem{Dim: dim}

	if X != nil {
		diff := make([]float64, dim)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				slack := math.Abs(fX[i]-fX[j]) - epsilon
				if slack <= 0 {
					// Epsilon-insensitive: trivially satisfied by any PSD H.
					continue
				}
				for c := 0; c < dim; c++ {
					diff[c] = X.At(i, c) - X.At(j, c)
				}
				dist := floats.Norm(diff, 2)
				if dist == 0 {
					return nil, psdrErrors.NewModelError("sdp.NewProblem",
						"coincident samples with differing values beyond epsilon",
						psdrErrors.ErrInfeasible)
				}
				dir := make([]float64, dim)
				floats.ScaleTo(dir, 1/dist, diff)
				prob.Pairs = append(prob.Pairs, PairConstraint{
					Direction: dir,
					RHS:       slack * slack / (dist * dist),
				})
			}
		}
	}

	if grads != nil {
		k, _ := grads.Dims()
		for r := 0; r < k; r++ {
			g := mat.NewVecDense(dim, nil)
			for c := 0; c < dim; c++ {
				g.SetVec(c, grads.At(r, c))
			}
			gg := mat.NewSymDense(dim, nil)
			gg.SymRankOne(gg, 1, g)
			prob.Gradients = append(prob.Gradients, gg)
		}
	}

	return prob, nil
}

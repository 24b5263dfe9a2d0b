package sdp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	psdrErrors "github.com/vishalbelsare/PSDR/pkg/errors"
	"github.com/vishalbelsare/PSDR/pkg/log"
)

// ParametrizedSolver solves the same program as AugLagSolver but over the
// explicit coefficient vector alpha with H = sum_i alpha_i E_i for the
// symmetric Basis. The objective becomes the coefficient sum (every basis
// element has unit trace) and the pairwise constraints become a dense
// linear system over alpha, mirroring the explicit parameterization the
// direct low-level formulation uses.
//
// It converges more slowly than AugLagSolver and exists for
// cross-validation of the primary solver, not for production fits.
type ParametrizedSolver struct {
	logger log.Logger
}

// NewParametrizedSolver creates the cross-check solver.
func NewParametrizedSolver() *ParametrizedSolver {
	return &ParametrizedSolver{
		logger: log.GetLoggerWithName("sdp").With(log.ComponentKey, "param"),
	}
}

// Solve runs the augmented Lagrangian iteration in coefficient space. The
// H >= 0 constraint is handled as one more dominance constraint with a
// zero right-hand matrix, so no projection in alpha space is needed.
func (s *ParametrizedSolver) Solve(p *Problem, settings *Settings) (*mat.SymDense, error) {
	if settings == nil {
		settings = DefaultSettings()
	}
	m := p.Dim
	if p.NumConstraints() == 0 {
		return mat.NewSymDense(m, nil), nil
	}

	basis := Basis(m)
	np := len(basis)
	alpha := make([]float64, np)

	// Pair constraints as linear rows over alpha.
	rows := make([][]float64, len(p.Pairs))
	rowSq := 0.0
	for r, pc := range p.Pairs {
		row := make([]float64, np)
		for i, e := range basis {
			row[i] = quadFormSym(e, pc.Direction)
		}
		rows[r] = row
		rowSq += floats.Dot(row, row)
	}

	// Dominance constraints: observed gradients plus the zero matrix
	// enforcing H >= 0.
	doms := make([]*mat.SymDense, 0, len(p.Gradients)+1)
	doms = append(doms, p.Gradients...)
	doms = append(doms, mat.NewSymDense(m, nil))

	lam := make([]float64, len(rows))
	lamMat := make([]*mat.SymDense, len(doms))
	for k := range lamMat {
		lamMat[k] = mat.NewSymDense(m, nil)
	}

	mu := settings.InitialPenalty
	feasPrev := math.Inf(1)
	objPrev := math.Inf(1)
	refinement := settings.Refinement

	for outer := 0; outer < settings.MaxOuterIterations; outer++ {
		if err := s.minimizeSubproblem(alpha, basis, rows, rowSq, doms, p, lam, lamMat, mu, settings); err != nil {
			return nil, err
		}

		h, err := Reconstruct(alpha, m)
		if err != nil {
			return nil, err
		}

		feas := 0.0
		for r, pc := range p.Pairs {
			if v := pc.RHS - floats.Dot(rows[r], alpha); v > feas {
				feas = v
			}
		}
		for _, g := range doms {
			diff := subSym(g, h)
			ev, err := maxEigenvalue(diff)
			if err != nil {
				return nil, err
			}
			if ev > feas {
				feas = ev
			}
		}
		obj := floats.Sum(alpha)

		if settings.Verbose {
			s.logger.Debug("outer iteration",
				log.IterationsKey, outer,
				log.ResidualKey, feas,
				"objective", obj,
				"penalty", mu,
			)
		}

		if feas <= settings.FeasTol && math.Abs(obj-objPrev) <= settings.RelTol*math.Max(1, math.Abs(obj)) {
			if refinement <= 0 {
				return h, nil
			}
			refinement--
		}

		for r, pc := range p.Pairs {
			v := pc.RHS - floats.Dot(rows[r], alpha)
			lam[r] = math.Max(0, lam[r]+mu*v)
		}
		for k, g := range doms {
			shifted := subSym(g, h)
			shifted.ScaleSym(mu, shifted)
			shifted.AddSym(shifted, lamMat[k])
			proj, _, err := projectPSD(shifted)
			if err != nil {
				return nil, err
			}
			lamMat[k] = proj
		}

		if feas > violationShrink*feasPrev {
			mu = math.Min(mu*penaltyGrowth, penaltyMax)
		}
		feasPrev = feas
		objPrev = obj
	}

	return nil, psdrErrors.NewModelError("SDP.Solve",
		fmt.Sprintf("parametrized solve residual %.3e above tolerance %.3e", feasPrev, settings.FeasTol),
		psdrErrors.ErrSolverFailure)
}

// minimizeSubproblem runs gradient descent with Armijo backtracking on the
// augmented Lagrangian in alpha space.
func (s *ParametrizedSolver) minimizeSubproblem(alpha []float64, basis []*mat.SymDense, rows [][]float64, rowSq float64, doms []*mat.SymDense, p *Problem, lam []float64, lamMat []*mat.SymDense, mu float64, settings *Settings) error {
	step := 1.0 / (1.0 + mu*(rowSq+float64(len(doms))))

	f, grad, err := s.evalAugLag(alpha, basis, rows, doms, p, lam, lamMat, mu)
	if err != nil {
		return err
	}

	trial := make([]float64, len(alpha))
	for it := 0; it < settings.MaxInnerIterations; it++ {
		accepted := false
		var fTrial float64
		var gradTrial []float64
		var moved float64

		for bt := 0; bt < maxBacktracks; bt++ {
			floats.ScaleTo(trial, -step, grad)
			floats.Add(trial, alpha)
			fCand, gCand, err := s.evalAugLag(trial, basis, rows, doms, p, lam, lamMat, mu)
			if err != nil {
				return err
			}
			d := floats.Distance(trial, alpha, 2)
			if fCand <= f-armijoSlope/step*d*d {
				fTrial, gradTrial, moved = fCand, gCand, d
				accepted = true
				break
			}
			step /= 2
		}
		if !accepted {
			return nil
		}

		copy(alpha, trial)
		f, grad = fTrial, gradTrial
		step *= 2

		if moved <= settings.AbsTol*(1+floats.Norm(alpha, 2)) {
			return nil
		}
	}
	return nil
}

// evalAugLag computes the augmented Lagrangian value and alpha gradient.
func (s *ParametrizedSolver) evalAugLag(alpha []float64, basis []*mat.SymDense, rows [][]float64, doms []*mat.SymDense, p *Problem, lam []float64, lamMat []*mat.SymDense, mu float64) (float64, []float64, error) {
	m := p.Dim
	h, err := Reconstruct(alpha, m)
	if err != nil {
		return 0, nil, err
	}

	val := floats.Sum(alpha)
	grad := make([]float64, len(alpha))
	for i := range grad {
		grad[i] = 1
	}

	for r, pc := range p.Pairs {
		v := pc.RHS - floats.Dot(rows[r], alpha)
		a := lam[r] + mu*v
		if a > 0 {
			val += (a*a - lam[r]*lam[r]) / (2 * mu)
			floats.AddScaled(grad, -a, rows[r])
		} else {
			val -= lam[r] * lam[r] / (2 * mu)
		}
	}

	for k, g := range doms {
		shifted := subSym(g, h)
		shifted.ScaleSym(mu, shifted)
		shifted.AddSym(shifted, lamMat[k])
		proj, _, err := projectPSD(shifted)
		if err != nil {
			return 0, nil, err
		}
		pn := mat.Norm(proj, 2)
		ln := mat.Norm(lamMat[k], 2)
		val += (pn*pn - ln*ln) / (2 * mu)
		// Adjoint of alpha -> H maps the matrix gradient back through
		// Frobenius inner products with each basis element.
		for i, e := range basis {
			grad[i] -= frobeniusInner(e, proj)
		}
	}

	return val, grad, nil
}

// quadFormSym computes d^T e d for a symmetric matrix and slice direction.
func quadFormSym(e *mat.SymDense, d []float64) float64 {
	v := mat.NewVecDense(len(d), d)
	return mat.Inner(v, e, v)
}

// frobeniusInner computes <a, b>_F for symmetric matrices.
func frobeniusInner(a, b *mat.SymDense) float64 {
	m := a.SymmetricDim()
	sum := 0.0
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			sum += a.At(i, j) * b.At(i, j)
		}
	}
	return sum
}

package sdp

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	psdrErrors "github.com/vishalbelsare/PSDR/pkg/errors"
	"github.com/vishalbelsare/PSDR/pkg/log"
)

// AugLagSolver solves the trace-minimization program with a first-order
// augmented Lagrangian method. Scalar multipliers track the pairwise
// constraints, matrix multipliers track the gradient-dominance
// constraints, and the H >= 0 constraint is kept exact by projecting every
// iterate onto the PSD cone. Each subproblem is minimized by projected
// gradient descent with Armijo backtracking.
//
// This is the primary solver strategy; see ParametrizedSolver for the
// basis-parametrized cross-check.
type AugLagSolver struct {
	logger log.Logger
}

// NewAugLagSolver creates the default solver.
func NewAugLagSolver() *AugLagSolver {
	return &AugLagSolver{
		logger: log.GetLoggerWithName("sdp").With(log.ComponentKey, "auglag"),
	}
}

const (
	penaltyGrowth = 5.0
	penaltyMax    = 1e9
	// Outer violation must shrink by this factor per pass, or the
	// penalty weight grows.
	violationShrink = 0.25
	armijoSlope     = 1e-4
	maxBacktracks   = 60
)

// Solve runs the augmented Lagrangian iteration. The zero matrix is
// returned immediately for unconstrained problems. A run that exhausts
// MaxOuterIterations above the feasibility tolerance fails with
// ErrSolverFailure and no partial result.
func (s *AugLagSolver) Solve(p *Problem, settings *Settings) (*mat.SymDense, error) {
	if settings == nil {
		settings = DefaultSettings()
	}
	m := p.Dim
	h := mat.NewSymDense(m, nil)
	if p.NumConstraints() == 0 {
		return h, nil
	}

	lam := make([]float64, len(p.Pairs))
	lamMat := make([]*mat.SymDense, len(p.Gradients))
	for k := range lamMat {
		lamMat[k] = mat.NewSymDense(m, nil)
	}

	mu := settings.InitialPenalty
	feasPrev := math.Inf(1)
	trPrev := math.Inf(1)
	refinement := settings.Refinement

	for outer := 0; outer < settings.MaxOuterIterations; outer++ {
		if err := s.minimizeSubproblem(h, p, lam, lamMat, mu, settings); err != nil {
			return nil, err
		}

		feas, err := s.violation(h, p)
		if err != nil {
			return nil, err
		}
		tr := trace(h)

		if settings.Verbose {
			s.logger.Debug("outer iteration",
				log.IterationsKey, outer,
				log.ResidualKey, feas,
				"trace", tr,
				"penalty", mu,
			)
		}

		if feas <= settings.FeasTol && math.Abs(tr-trPrev) <= settings.RelTol*math.Max(1, math.Abs(tr)) {
			if refinement <= 0 {
				return h, nil
			}
			refinement--
		}

		// Multiplier updates.
		for r, pc := range p.Pairs {
			v := pc.RHS - quadForm(h, pc.Direction)
			lam[r] = math.Max(0, lam[r]+mu*v)
		}
		for k, g := range p.Gradients {
			shifted := mat.NewSymDense(m, nil)
			for i := 0; i < m; i++ {
				for j := i; j < m; j++ {
					shifted.SetSym(i, j, lamMat[k].At(i, j)+mu*(g.At(i, j)-h.At(i, j)))
				}
			}
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
		trPrev = tr
	}

	return nil, psdrErrors.NewModelError("SDP.Solve",
		fmt.Sprintf("feasibility residual %.3e above tolerance %.3e after %d iterations",
			feasPrev, settings.FeasTol, settings.MaxOuterIterations),
		psdrErrors.ErrSolverFailure)
}

// violation returns the worst constraint violation of h.
func (s *AugLagSolver) violation(h *mat.SymDense, p *Problem) (float64, error) {
	feas := 0.0
	for _, pc := range p.Pairs {
		if v := pc.RHS - quadForm(h, pc.Direction); v > feas {
			feas = v
		}
	}
	m := p.Dim
	for _, g := range p.Gradients {
		diff := mat.NewSymDense(m, nil)
		for i := 0; i < m; i++ {
			for j := i; j < m; j++ {
				diff.SetSym(i, j, g.At(i, j)-h.At(i, j))
			}
		}
		ev, err := maxEigenvalue(diff)
		if err != nil {
			return 0, err
		}
		if ev > feas {
			feas = ev
		}
	}
	return feas, nil
}

// minimizeSubproblem minimizes the augmented Lagrangian over the PSD cone
// for fixed multipliers, updating h in place.
func (s *AugLagSolver) minimizeSubproblem(h *mat.SymDense, p *Problem, lam []float64, lamMat []*mat.SymDense, mu float64, settings *Settings) error {
	m := p.Dim
	step := 1.0 / (1.0 + mu*float64(p.NumConstraints()))

	f, grad, err := evalAugLag(h, p, lam, lamMat, mu)
	if err != nil {
		return err
	}

	for it := 0; it < settings.MaxInnerIterations; it++ {
		accepted := false
		var trial *mat.SymDense
		var fTrial float64
		var gradTrial *mat.SymDense
		var moved float64

		for bt := 0; bt < maxBacktracks; bt++ {
			cand := mat.NewSymDense(m, nil)
			for i := 0; i < m; i++ {
				for j := i; j < m; j++ {
					cand.SetSym(i, j, h.At(i, j)-step*grad.At(i, j))
				}
			}
			proj, _, err := projectPSD(cand)
			if err != nil {
				return err
			}
			d := froDistance(proj, h)
			fCand, gCand, err := evalAugLag(proj, p, lam, lamMat, mu)
			if err != nil {
				return err
			}
			if fCand <= f-armijoSlope/step*d*d {
				trial, fTrial, gradTrial, moved = proj, fCand, gCand, d
				accepted = true
				break
			}
			step /= 2
		}
		if !accepted {
			// No descent direction at machine precision.
			return nil
		}

		h.CopySym(trial)
		f, grad = fTrial, gradTrial
		step *= 2

		if moved <= settings.AbsTol*(1+mat.Norm(h, 2)) {
			return nil
		}
	}
	return nil
}

// evalAugLag computes the augmented Lagrangian value and gradient at h.
func evalAugLag(h *mat.SymDense, p *Problem, lam []float64, lamMat []*mat.SymDense, mu float64) (float64, *mat.SymDense, error) {
	m := p.Dim
	val := trace(h)
	grad := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		grad.SetSym(i, i, 1)
	}

	for r, pc := range p.Pairs {
		v := pc.RHS - quadForm(h, pc.Direction)
		a := lam[r] + mu*v
		if a > 0 {
			val += (a*a - lam[r]*lam[r]) / (2 * mu)
			grad.SymRankOne(grad, -a, mat.NewVecDense(m, pc.Direction))
		} else {
			val -= lam[r] * lam[r] / (2 * mu)
		}
	}

	for k, g := range p.Gradients {
		shifted := mat.NewSymDense(m, nil)
		for i := 0; i < m; i++ {
			for j := i; j < m; j++ {
				shifted.SetSym(i, j, lamMat[k].At(i, j)+mu*(g.At(i, j)-h.At(i, j)))
			}
		}
		proj, _, err := projectPSD(shifted)
		if err != nil {
			return 0, nil, err
		}
		pn := mat.Norm(proj, 2)
		ln := mat.Norm(lamMat[k], 2)
		val += (pn*pn - ln*ln) / (2 * mu)
		grad = subSym(grad, proj)
	}

	return val, grad, nil
}

// froDistance is the Frobenius distance between two symmetric matrices.
func froDistance(a, b *mat.SymDense) float64 {
	m := a.SymmetricDim()
	sum := 0.0
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			d := a.At(i, j) - b.At(i, j)
			sum += d * d
		}
	}
	return math.Sqrt(sum)
}

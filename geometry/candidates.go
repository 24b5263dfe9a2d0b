// Package geometry generates candidate points for seeding domain-wide
// bound searches.
//
// The bounding engine wants starting points that sit far, under the metric
// induced by the Lipschitz matrix, from the existing samples and from each
// other: such points are where the uncertainty envelope is widest and
// where its extrema tend to live. Candidate quality affects the tightness
// of the reported bound, never its validity, so a randomized greedy
// maximin selection over a sampled pool is sufficient.
package geometry

import (
	"math"
	"math/rand/v2"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/PSDR/domain"
	psdrErrors "github.com/vishalbelsare/PSDR/pkg/errors"
)

// Options configures candidate generation.
type Options struct {
	// Count is the number of candidates to return. Defaults to 10.
	Count int

	// PoolPerCandidate scales the random pool drawn from the domain.
	// Defaults to 50 pool points per requested candidate.
	PoolPerCandidate int

	// Seed fixes the sampling randomness for reproducible candidate
	// sets. Zero selects a fixed default seed.
	Seed uint64
}

func (o *Options) withDefaults() Options {
	out := Options{Count: 10, PoolPerCandidate: 50, Seed: 1}
	if o == nil {
		return out
	}
	if o.Count > 0 {
		out.Count = o.Count
	}
	if o.PoolPerCandidate > 0 {
		out.PoolPerCandidate = o.PoolPerCandidate
	}
	if o.Seed != 0 {
		out.Seed = o.Seed
	}
	return out
}

// CandidateFurthestPoints returns points of dom far from the rows of X and
// from each other under the metric x -> ||L x||. X may be nil or empty, in
// which case distances to samples are ignored and the selection spreads
// candidates across the domain alone. A nil L means the Euclidean metric.
//
// The pool is drawn from dom.Sample plus the domain corners along the
// dominant metric directions; candidates are then chosen greedily,
// each maximizing its minimum metric distance to samples and
// already-chosen candidates.
func CandidateFurthestPoints(X mat.Matrix, dom domain.Domain, L *mat.Dense, opts *Options) (*mat.Dense, error) {
	if dom == nil {
		return nil, errors.New("geometry: nil domain")
	}
	o := opts.withDefaults()
	m := dom.Len()

	if L != nil {
		lr, lc := L.Dims()
		if lc != m {
			return nil, psdrErrors.NewDimensionError("geometry.CandidateFurthestPoints", m, lc, 1)
		}
		// corner seeding reads one metric row per input dimension
		if lr != m {
			return nil, psdrErrors.NewDimensionError("geometry.CandidateFurthestPoints", m, lr, 0)
		}
	}

	rng := rand.New(rand.NewPCG(o.Seed, o.Seed))
	pool, err := dom.Sample(rng, o.Count*o.PoolPerCandidate)
	if err != nil {
		return nil, errors.Wrap(err, "geometry: sampling candidate pool")
	}
	nPool, _ := pool.Dims()
	if nPool == 0 {
		return nil, psdrErrors.NewModelError("geometry.CandidateFurthestPoints",
			"domain produced no feasible candidates", psdrErrors.ErrInfeasible)
	}

	// Seed the pool with the extreme corners along each metric row
	// direction, which often realize the furthest points of a box.
	points := make([][]float64, 0, nPool+2*m)
	for i := 0; i < nPool; i++ {
		points = append(points, mat.Row(nil, i, pool))
	}
	dir := make([]float64, m)
	for j := 0; j < m; j++ {
		for c := 0; c < m; c++ {
			if L != nil {
				dir[c] = L.At(j, c)
			} else if c == j {
				dir[c] = 1
			} else {
				dir[c] = 0
			}
		}
		points = append(points, dom.Corner(dir))
		floats.Scale(-1, dir)
		points = append(points, dom.Corner(dir))
	}

	// Metric-transformed copies of pool and samples.
	yPoints := make([][]float64, len(points))
	for i, p := range points {
		yPoints[i] = applyMetric(L, p)
	}
	var ySamples [][]float64
	if X != nil {
		n, xc := X.Dims()
		if n > 0 && xc != m {
			return nil, psdrErrors.NewDimensionError("geometry.CandidateFurthestPoints", m, xc, 1)
		}
		for i := 0; i < n; i++ {
			ySamples = append(ySamples, applyMetric(L, mat.Row(nil, i, X)))
		}
	}

	// minDist[i] tracks the distance from pool point i to the nearest
	// sample or previously chosen candidate.
	minDist := make([]float64, len(points))
	for i := range minDist {
		minDist[i] = math.Inf(1)
		for _, ys := range ySamples {
			if d := floats.Distance(yPoints[i], ys, 2); d < minDist[i] {
				minDist[i] = d
			}
		}
	}

	count := o.Count
	if count > len(points) {
		count = len(points)
	}
	out := mat.NewDense(count, m, nil)
	for c := 0; c < count; c++ {
		bestIdx := 0
		for i := 1; i < len(points); i++ {
			if minDist[i] > minDist[bestIdx] {
				bestIdx = i
			}
		}
		out.SetRow(c, points[bestIdx])
		chosen := yPoints[bestIdx]
		minDist[bestIdx] = math.Inf(-1)
		for i := range points {
			if minDist[i] == math.Inf(-1) {
				continue
			}
			if d := floats.Distance(yPoints[i], chosen, 2); d < minDist[i] {
				minDist[i] = d
			}
		}
	}
	return out, nil
}

// applyMetric returns L*x, or a copy of x when L is nil.
func applyMetric(L *mat.Dense, x []float64) []float64 {
	if L == nil {
		return append([]float64(nil), x...)
	}
	lr, _ := L.Dims()
	y := make([]float64, lr)
	for r := 0; r < lr; r++ {
		y[r] = floats.Dot(L.RawRowView(r), x)
	}
	return y
}

// Package domain provides the input-domain abstraction consumed by the
// Lipschitz bounding engine.
//
// A Domain supplies membership testing, feasible-point sampling and
// projection; the estimator treats it as an opaque collaborator. BoxDomain
// implements the interface for axis-aligned boxes, which covers the design
// domains of the bundled test problems.
package domain

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	psdrErrors "github.com/vishalbelsare/PSDR/pkg/errors"
)

// Domain describes a compact feasible region in R^m.
type Domain interface {
	// Len returns the dimension m of the domain.
	Len() int

	// IsInside reports whether x lies in the domain (within a small
	// boundary tolerance).
	IsInside(x []float64) bool

	// Sample draws n feasible points, one per row of the returned matrix.
	Sample(rng *rand.Rand, n int) (*mat.Dense, error)

	// Project writes the closest feasible point to x into dst.
	// dst and x must both have length Len.
	Project(dst, x []float64)

	// Corner returns an extreme point of the domain maximizing <d, x>.
	Corner(d []float64) []float64
}

const insideTol = 1e-10

// BoxDomain is the axis-aligned box { x : lb <= x <= ub }.
type BoxDomain struct {
	lb, ub []float64
}

// NewBoxDomain creates a box domain from lower and upper bounds. The
// bounds must have equal length and satisfy lb[i] <= ub[i].
func NewBoxDomain(lb, ub []float64) (*BoxDomain, error) {
	if len(lb) == 0 {
		return nil, psdrErrors.NewValueError("NewBoxDomain", "empty bounds")
	}
	if len(lb) != len(ub) {
		return nil, psdrErrors.NewDimensionError("NewBoxDomain", len(lb), len(ub), 0)
	}
	for i := range lb {
		if lb[i] > ub[i] {
			return nil, psdrErrors.NewValueError("NewBoxDomain", "lower bound exceeds upper bound")
		}
	}
	b := &BoxDomain{
		lb: append([]float64(nil), lb...),
		ub: append([]float64(nil), ub...),
	}
	return b, nil
}

// MustBoxDomain is NewBoxDomain that panics on invalid bounds. Intended
// for fixed domains in demos and tests.
func MustBoxDomain(lb, ub []float64) *BoxDomain {
	b, err := NewBoxDomain(lb, ub)
	if err != nil {
		panic(err)
	}
	return b
}

// UnitBox returns the box [-1, 1]^m.
func UnitBox(m int) *BoxDomain {
	lb := make([]float64, m)
	ub := make([]float64, m)
	for i := 0; i < m; i++ {
		lb[i] = -1
		ub[i] = 1
	}
	return &BoxDomain{lb: lb, ub: ub}
}

// Len returns the dimension of the box.
func (b *BoxDomain) Len() int { return len(b.lb) }

// Bounds returns copies of the lower and upper bound vectors.
func (b *BoxDomain) Bounds() (lb, ub []float64) {
	return append([]float64(nil), b.lb...), append([]float64(nil), b.ub...)
}

// IsInside reports whether x lies in the box.
func (b *BoxDomain) IsInside(x []float64) bool {
	if len(x) != len(b.lb) {
		return false
	}
	for i := range x {
		if x[i] < b.lb[i]-insideTol || x[i] > b.ub[i]+insideTol {
			return false
		}
	}
	return true
}

// Sample draws n points uniformly from the box.
func (b *BoxDomain) Sample(rng *rand.Rand, n int) (*mat.Dense, error) {
	if n <= 0 {
		return nil, psdrErrors.NewValueError("BoxDomain.Sample", "sample count must be positive")
	}
	m := len(b.lb)
	X := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < m; j++ {
			X.Set(i, j, b.lb[j]+rng.Float64()*(b.ub[j]-b.lb[j]))
		}
	}
	return X, nil
}

// Project clamps x into the box coordinate-wise.
func (b *BoxDomain) Project(dst, x []float64) {
	for i := range x {
		v := x[i]
		if v < b.lb[i] {
			v = b.lb[i]
		} else if v > b.ub[i] {
			v = b.ub[i]
		}
		dst[i] = v
	}
}

// Corner returns the vertex of the box maximizing <d, x>. Zero components
// of d resolve to the lower bound.
func (b *BoxDomain) Corner(d []float64) []float64 {
	c := make([]float64, len(b.lb))
	for i := range c {
		if d[i] > 0 {
			c[i] = b.ub[i]
		} else {
			c[i] = b.lb[i]
		}
	}
	return c
}

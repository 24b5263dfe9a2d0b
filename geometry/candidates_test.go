package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/PSDR/domain"
)

func TestCandidateFurthestPointsFeasible(t *testing.T) {
	dom := domain.MustBoxDomain([]float64{0, 0}, []float64{1, 1})
	X := mat.NewDense(1, 2, []float64{0.5, 0.5})

	cands, err := CandidateFurthestPoints(X, dom, nil, &Options{Count: 8})
	require.NoError(t, err)

	n, m := cands.Dims()
	require.Equal(t, 8, n)
	require.Equal(t, 2, m)
	for i := 0; i < n; i++ {
		x := mat.Row(nil, i, cands)
		assert.True(t, dom.IsInside(x), "candidate %d outside domain: %v", i, x)
	}
}

func TestCandidateFurthestPointsAvoidsSample(t *testing.T) {
	// with one central sample the first greedy pick is a corner
	dom := domain.MustBoxDomain([]float64{0, 0}, []float64{1, 1})
	X := mat.NewDense(1, 2, []float64{0.5, 0.5})

	cands, err := CandidateFurthestPoints(X, dom, nil, &Options{Count: 1})
	require.NoError(t, err)

	x := mat.Row(nil, 0, cands)
	d := floats.Distance(x, []float64{0.5, 0.5}, 2)
	assert.Greater(t, d, 0.6, "first candidate should be near a corner, got %v", x)
}

func TestCandidateFurthestPointsMetric(t *testing.T) {
	// a metric that collapses the second coordinate; separation is then
	// judged on the first coordinate alone
	dom := domain.MustBoxDomain([]float64{0, 0}, []float64{1, 1})
	X := mat.NewDense(1, 2, []float64{0, 0.5})
	L := mat.NewDense(2, 2, []float64{1, 0, 0, 0})

	cands, err := CandidateFurthestPoints(X, dom, L, &Options{Count: 1})
	require.NoError(t, err)

	x := mat.Row(nil, 0, cands)
	assert.Greater(t, x[0], 0.9, "candidate should sit at the far end of the active direction")
}

func TestCandidateFurthestPointsNilSamples(t *testing.T) {
	dom := domain.UnitBox(3)
	cands, err := CandidateFurthestPoints(nil, dom, nil, &Options{Count: 5})
	require.NoError(t, err)
	n, m := cands.Dims()
	assert.Equal(t, 5, n)
	assert.Equal(t, 3, m)
}

func TestCandidateFurthestPointsReproducible(t *testing.T) {
	dom := domain.UnitBox(2)
	X := mat.NewDense(1, 2, []float64{0, 0})

	a, err := CandidateFurthestPoints(X, dom, nil, &Options{Count: 4, Seed: 11})
	require.NoError(t, err)
	b, err := CandidateFurthestPoints(X, dom, nil, &Options{Count: 4, Seed: 11})
	require.NoError(t, err)
	assert.Equal(t, a.RawMatrix().Data, b.RawMatrix().Data)
}

func TestCandidateFurthestPointsErrors(t *testing.T) {
	dom := domain.UnitBox(2)

	_, err := CandidateFurthestPoints(nil, nil, nil, nil)
	assert.Error(t, err)

	badL := mat.NewDense(2, 3, nil)
	_, err = CandidateFurthestPoints(nil, dom, badL, nil)
	assert.Error(t, err)

	shortL := mat.NewDense(1, 2, []float64{1, 0})
	_, err = CandidateFurthestPoints(nil, dom, shortL, nil)
	assert.Error(t, err, "metric with fewer rows than the input dimension must be rejected")

	badX := mat.NewDense(1, 3, []float64{0, 0, 0})
	_, err = CandidateFurthestPoints(badX, dom, nil, nil)
	assert.Error(t, err)
}

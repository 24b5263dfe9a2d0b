package sdp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestBasisSize(t *testing.T) {
	assert.Equal(t, 1, BasisSize(1))
	assert.Equal(t, 3, BasisSize(2))
	assert.Equal(t, 6, BasisSize(3))
	assert.Equal(t, 21, BasisSize(6))
}

func TestBasisElementsArePSDUnitTrace(t *testing.T) {
	for _, m := range []int{1, 2, 4} {
		elems := Basis(m)
		require.Len(t, elems, BasisSize(m))
		for k, e := range elems {
			var eig mat.EigenSym
			require.True(t, eig.Factorize(e, false))
			vals := eig.Values(nil)
			tr := 0.0
			for _, v := range vals {
				assert.GreaterOrEqual(t, v, -1e-12, "m=%d element %d not PSD", m, k)
				tr += v
			}
			assert.InDelta(t, 1.0, tr, 1e-12, "m=%d element %d trace", m, k)
		}
	}
}

func TestDecomposeReconstruct(t *testing.T) {
	h := mat.NewSymDense(3, []float64{
		4, 1, -2,
		1, 3, 0.5,
		-2, 0.5, 6,
	})

	alpha := Decompose(h)
	require.Len(t, alpha, BasisSize(3))

	got, err := Reconstruct(alpha, 3)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.InDelta(t, h.At(i, j), got.At(i, j), 1e-12, "entry (%d,%d)", i, j)
		}
	}
}

func TestDecomposeDiagonal(t *testing.T) {
	h := mat.NewSymDense(2, []float64{2, 0, 0, 5})
	alpha := Decompose(h)
	// diagonal coefficients carry the full diagonal, off-diagonal is zero
	assert.InDelta(t, 2, alpha[0], 1e-12)
	assert.InDelta(t, 0, alpha[1], 1e-12)
	assert.InDelta(t, 5, alpha[2], 1e-12)
}

func TestReconstructBadLength(t *testing.T) {
	_, err := Reconstruct([]float64{1, 2}, 3)
	assert.Error(t, err)
}

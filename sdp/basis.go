package sdp

import (
	"gonum.org/v1/gonum/mat"

	psdrErrors "github.com/vishalbelsare/PSDR/pkg/errors"
)

// BasisSize returns the dimension m(m+1)/2 of the space of m x m
// symmetric matrices.
func BasisSize(m int) int {
	return m * (m + 1) / 2
}

// Basis enumerates a basis {E_1, ..., E_p}, p = m(m+1)/2, of the m x m
// symmetric matrices built from rank-1 and rank-2 outer products:
//
//	E = e_i e_i^T                          for each i
//	E = (e_i + e_j)(e_i + e_j)^T / 2       for each i < j
//
// Every element is positive semidefinite, so nonnegative combinations of
// them stay inside the PSD cone; together they span all symmetric
// matrices. The ordering is e_0 e_0^T followed by its rank-2 partners,
// then e_1 e_1^T, and so on.
func Basis(m int) []*mat.SymDense {
	basis := make([]*mat.SymDense, 0, BasisSize(m))
	for i := 0; i < m; i++ {
		e := mat.NewSymDense(m, nil)
		e.SetSym(i, i, 1)
		basis = append(basis, e)
		for j := i + 1; j < m; j++ {
			e := mat.NewSymDense(m, nil)
			e.SetSym(i, i, 0.5)
			e.SetSym(j, j, 0.5)
			e.SetSym(i, j, 0.5)
			basis = append(basis, e)
		}
	}
	return basis
}

// Decompose expresses a symmetric matrix in the Basis ordering, returning
// the unique coefficient vector alpha with H = sum_i alpha_i E_i.
func Decompose(h mat.Symmetric) []float64 {
	m := h.SymmetricDim()
	alpha := make([]float64, 0, BasisSize(m))
	for i := 0; i < m; i++ {
		// The rank-2 elements leak 1/2 of each off-diagonal coefficient
		// onto the diagonal; the pure diagonal coefficient absorbs it.
		aii := h.At(i, i)
		for j := 0; j < m; j++ {
			if j != i {
				aii -= h.At(i, j)
			}
		}
		alpha = append(alpha, aii)
		for j := i + 1; j < m; j++ {
			alpha = append(alpha, 2*h.At(i, j))
		}
	}
	return alpha
}

// Reconstruct rebuilds the symmetric matrix with the given Basis
// coefficients.
func Reconstruct(alpha []float64, m int) (*mat.SymDense, error) {
	if len(alpha) != BasisSize(m) {
		return nil, psdrErrors.NewDimensionError("sdp.Reconstruct", BasisSize(m), len(alpha), 0)
	}
	h := mat.NewSymDense(m, nil)
	idx := 0
	for i := 0; i < m; i++ {
		h.SetSym(i, i, h.At(i, i)+alpha[idx])
		idx++
		for j := i + 1; j < m; j++ {
			a := alpha[idx]
			idx++
			h.SetSym(i, i, h.At(i, i)+0.5*a)
			h.SetSym(j, j, h.At(j, j)+0.5*a)
			h.SetSym(i, j, h.At(i, j)+0.5*a)
		}
	}
	return h, nil
}

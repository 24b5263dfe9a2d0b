package lipschitz

import "gonum.org/v1/gonum/mat"

// signTol treats correlation scores below this magnitude as ties.
const signTol = 1e-12

// FixSubspaceSigns deterministically orients the columns of the subspace
// basis u in place. Raw symmetric eigensolvers choose column signs
// arbitrarily, so repeated fits on equivalent data could disagree; this
// fixes each column's sign from the data instead:
//
//   - with gradients, a column flips so its summed inner product with the
//     observed gradients is nonnegative;
//   - otherwise, with samples, so its value-weighted correlation with the
//     pairwise sample differences is nonnegative;
//   - a zero score falls back to making the column's largest-magnitude
//     component positive.
//
// Columns spanning an eigenspace with near-equal eigenvalues remain
// individually ill-conditioned; the rule is still deterministic for fixed
// input data, which is the guarantee callers rely on.
func FixSubspaceSigns(u *mat.Dense, X mat.Matrix, fX []float64, grads mat.Matrix) {
	m, cols := u.Dims()

	for j := 0; j < cols; j++ {
		score := 0.0

		if grads != nil {
			k, _ := grads.Dims()
			for r := 0; r < k; r++ {
				dot := 0.0
				for c := 0; c < m; c++ {
					dot += grads.At(r, c) * u.At(c, j)
				}
				score += dot
			}
		}

		if score == 0 && X != nil {
			n, _ := X.Dims()
			for a := 0; a < n; a++ {
				for b := a + 1; b < n; b++ {
					dot := 0.0
					for c := 0; c < m; c++ {
						dot += (X.At(a, c) - X.At(b, c)) * u.At(c, j)
					}
					score += (fX[a] - fX[b]) * dot
				}
			}
		}

		if score > signTol {
			continue
		}
		if score < -signTol {
			flipColumn(u, j)
			continue
		}

		// Tie-break on the largest-magnitude component.
		lead := 0
		for c := 1; c < m; c++ {
			if abs(u.At(c, j)) > abs(u.At(lead, j)) {
				lead = c
			}
		}
		if u.At(lead, j) < 0 {
			flipColumn(u, j)
		}
	}
}

func flipColumn(u *mat.Dense, j int) {
	m, _ := u.Dims()
	for r := 0; r < m; r++ {
		u.Set(r, j, -u.At(r, j))
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

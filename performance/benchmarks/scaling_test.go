// Package benchmarks measures how Lipschitz estimation scales with sample
// count and input dimension. The SDP has one constraint per sample pair,
// so fit cost grows quadratically in samples; these benchmarks keep that
// growth visible.
package benchmarks

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/PSDR/domain"
	"github.com/vishalbelsare/PSDR/lipschitz"
)

// syntheticData samples a smooth anisotropic test function on the unit box.
func syntheticData(n, m int, seed uint64) (*mat.Dense, []float64, *mat.Dense) {
	rng := rand.New(rand.NewPCG(seed, seed))
	dom := domain.UnitBox(m)
	X, err := dom.Sample(rng, n)
	if err != nil {
		panic(err)
	}

	fX := make([]float64, n)
	grads := mat.NewDense(n, m, nil)
	for i := 0; i < n; i++ {
		v := 0.0
		for j := 0; j < m; j++ {
			w := 1.0 / float64(j+1)
			x := X.At(i, j)
			v += w * x * x
			grads.Set(i, j, 2*w*x)
		}
		fX[i] = v
	}
	return X, fX, grads
}

func BenchmarkFitScaling(b *testing.B) {
	sizes := []struct {
		name     string
		samples  int
		features int
	}{
		{"10_2", 10, 2},
		{"20_2", 20, 2},
		{"20_6", 20, 6},
		{"40_6", 40, 6},
	}

	for _, size := range sizes {
		size := size
		b.Run(size.name, func(b *testing.B) {
			b.ReportAllocs()
			X, fX, _ := syntheticData(size.samples, size.features, 1)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				lm := lipschitz.NewLipschitzMatrix()
				if err := lm.Fit(X, fX, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkFitWithGradients(b *testing.B) {
	b.ReportAllocs()
	X, fX, grads := syntheticData(15, 4, 2)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		lm := lipschitz.NewLipschitzMatrix()
		if err := lm.Fit(X, fX, grads); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBounds(b *testing.B) {
	X, fX, _ := syntheticData(40, 4, 3)
	lm := lipschitz.NewLipschitzMatrix()
	if err := lm.Fit(X, fX, nil); err != nil {
		b.Fatal(err)
	}
	Xtest, _, _ := syntheticData(1000, 4, 4)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := lm.Bounds(X, fX, Xtest); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBoundsDomain(b *testing.B) {
	X, fX, _ := syntheticData(20, 3, 5)
	lm := lipschitz.NewLipschitzMatrix()
	if err := lm.Fit(X, fX, nil); err != nil {
		b.Fatal(err)
	}
	dom := domain.UnitBox(3)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := lm.BoundsDomain(X, fX, dom); err != nil {
			b.Fatal(err)
		}
	}
}

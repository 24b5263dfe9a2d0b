// Package demos provides benchmark test functions with analytic gradients
// for exercising Lipschitz estimation on realistic engineering models.
package demos

import (
	"math"

	"github.com/vishalbelsare/PSDR/domain"
)

// The Golinski gearbox (speed reducer) design problem seeks a gearbox of
// minimal volume subject to stress, deflection and geometry constraints.
// The classical formulation has seven variables, one of which counts
// gear teeth and is an integer; it is fixed at 17 here so the problem
// lives on a continuous box. The remaining six are, in order: gear face
// width, teeth module, the two shaft lengths and the two shaft diameters.
const golinskiTeeth = 17.0

// GolinskiDesignDomain returns the design box, in centimeters.
func GolinskiDesignDomain() *domain.BoxDomain {
	return domain.MustBoxDomain(
		[]float64{2.6, 0.7, 7.3, 7.3, 2.9, 5.0},
		[]float64{3.6, 0.8, 8.3, 8.3, 3.9, 5.5},
	)
}

// GolinskiFunc is one function of the gearbox problem together with its
// analytic gradient. Constraints are satisfied when non-negative.
type GolinskiFunc struct {
	Name string
	Eval func(x []float64) float64
	Grad func(x []float64) []float64
}

// GolinskiFunctions returns the volume objective followed by the eleven
// constraints retained by Ray's formulation of the problem.
func GolinskiFunctions() []GolinskiFunc {
	return []GolinskiFunc{
		{"volume", GolinskiVolume, GolinskiVolumeGrad},
		{"constraint1", GolinskiConstraint1, GolinskiConstraint1Grad},
		{"constraint2", GolinskiConstraint2, GolinskiConstraint2Grad},
		{"constraint3", GolinskiConstraint3, GolinskiConstraint3Grad},
		{"constraint4", GolinskiConstraint4, GolinskiConstraint4Grad},
		{"constraint5", GolinskiConstraint5, GolinskiConstraint5Grad},
		{"constraint6", GolinskiConstraint6, GolinskiConstraint6Grad},
		{"constraint7", GolinskiConstraint7, GolinskiConstraint7Grad},
		{"constraint8", GolinskiConstraint8, GolinskiConstraint8Grad},
		{"constraint9", GolinskiConstraint9, GolinskiConstraint9Grad},
		{"constraint24", GolinskiConstraint24, GolinskiConstraint24Grad},
		{"constraint25", GolinskiConstraint25, GolinskiConstraint25Grad},
	}
}

func golinskiVars(x []float64) (x1, x2, x3, x4, x5, x6, x7 float64) {
	if len(x) != 6 {
		panic("demos: golinski functions require 6 variables")
	}
	return x[0], x[1], golinskiTeeth, x[2], x[3], x[4], x[5]
}

// GolinskiVolume is the gearbox volume objective.
func GolinskiVolume(x []float64) float64 {
	x1, x2, x3, x4, x5, x6, x7 := golinskiVars(x)
	poly := 3.3333*x3*x3 + 14.9334*x3 - 43.0934
	return 0.7854*x1*x2*x2*poly -
		1.5079*x1*(x6*x6+x7*x7) +
		7.477*(x6*x6*x6+x7*x7*x7) +
		0.7854*(x4*x6*x6+x5*x7*x7)
}

// GolinskiVolumeGrad is the analytic gradient of GolinskiVolume.
func GolinskiVolumeGrad(x []float64) []float64 {
	x1, x2, x3, x4, x5, x6, x7 := golinskiVars(x)
	poly := 3.3333*x3*x3 + 14.9334*x3 - 43.0934
	return []float64{
		0.7854*x2*x2*poly - 1.5079*x6*x6 - 1.5079*x7*x7,
		1.5708 * x1 * x2 * poly,
		0.7854 * x6 * x6,
		0.7854 * x7 * x7,
		-3.0158*x1*x6 + 1.5708*x4*x6 + 22.431*x6*x6,
		-3.0158*x1*x7 + 1.5708*x5*x7 + 22.431*x7*x7,
	}
}

// GolinskiConstraint1 bounds the bending stress of the gear tooth.
func GolinskiConstraint1(x []float64) float64 {
	x1, x2, x3, _, _, _, _ := golinskiVars(x)
	return 1 - 27/(x1*x2*x2*x3)
}

func GolinskiConstraint1Grad(x []float64) []float64 {
	x1, x2, x3, _, _, _, _ := golinskiVars(x)
	return []float64{
		27 / (x1 * x1 * x2 * x2 * x3),
		54 / (x1 * x2 * x2 * x2 * x3),
		0, 0, 0, 0,
	}
}

// GolinskiConstraint2 bounds the contact stress of the gear tooth.
func GolinskiConstraint2(x []float64) float64 {
	x1, x2, x3, _, _, _, _ := golinskiVars(x)
	return 1 - 397.5/(x1*x2*x2*x3*x3)
}

func GolinskiConstraint2Grad(x []float64) []float64 {
	x1, x2, x3, _, _, _, _ := golinskiVars(x)
	return []float64{
		397.5 / (x1 * x1 * x2 * x2 * x3 * x3),
		795.0 / (x1 * x2 * x2 * x2 * x3 * x3),
		0, 0, 0, 0,
	}
}

// GolinskiConstraint3 bounds the transverse deflection of the first shaft.
func GolinskiConstraint3(x []float64) float64 {
	_, x2, x3, x4, _, x6, _ := golinskiVars(x)
	return 1 - 1.93*x4*x4*x4/(x2*x3*x6*x6*x6*x6)
}

func GolinskiConstraint3Grad(x []float64) []float64 {
	_, x2, x3, x4, _, x6, _ := golinskiVars(x)
	x6p4 := x6 * x6 * x6 * x6
	return []float64{
		0,
		1.93 * x4 * x4 * x4 / (x2 * x2 * x3 * x6p4),
		-5.79 * x4 * x4 / (x2 * x3 * x6p4),
		0,
		7.72 * x4 * x4 * x4 / (x2 * x3 * x6p4 * x6),
		0,
	}
}

// GolinskiConstraint4 bounds the transverse deflection of the second shaft.
func GolinskiConstraint4(x []float64) float64 {
	_, x2, x3, _, x5, _, x7 := golinskiVars(x)
	return 1 - 1.93*x5*x5*x5/(x2*x3*x7*x7*x7*x7)
}

func GolinskiConstraint4Grad(x []float64) []float64 {
	_, x2, x3, _, x5, _, x7 := golinskiVars(x)
	x7p4 := x7 * x7 * x7 * x7
	return []float64{
		0,
		1.93 * x5 * x5 * x5 / (x2 * x2 * x3 * x7p4),
		0,
		-5.79 * x5 * x5 / (x2 * x3 * x7p4),
		0,
		7.72 * x5 * x5 * x5 / (x2 * x3 * x7p4 * x7),
	}
}

// GolinskiConstraint5 bounds the stress in the first shaft.
func GolinskiConstraint5(x []float64) float64 {
	_, x2, x3, x4, _, x6, _ := golinskiVars(x)
	r := 745 * x4 / (x2 * x3)
	return 1 - math.Sqrt(r*r+16.9e6)/(110.0*x6*x6*x6)
}

func GolinskiConstraint5Grad(x []float64) []float64 {
	_, x2, x3, x4, _, x6, _ := golinskiVars(x)
	root := math.Sqrt(16.9e6 + 555025*x4*x4/(x2*x2*x3*x3))
	x6p3 := x6 * x6 * x6
	return []float64{
		0,
		5045.68181818182 * x4 * x4 / (x2 * x2 * x2 * x3 * x3 * x6p3 * root),
		-5045.68181818182 * x4 / (x2 * x2 * x3 * x3 * x6p3 * root),
		0,
		0.0272727272727273 * root / (x6p3 * x6),
		0,
	}
}

// GolinskiConstraint6 bounds the stress in the second shaft.
func GolinskiConstraint6(x []float64) float64 {
	_, x2, x3, _, x5, _, x7 := golinskiVars(x)
	r := 745 * x5 / (x2 * x3)
	return 1 - math.Sqrt(r*r+157.5e6)/(85.0*x7*x7*x7)
}

func GolinskiConstraint6Grad(x []float64) []float64 {
	_, x2, x3, _, x5, _, x7 := golinskiVars(x)
	root := math.Sqrt(157.5e6 + 555025*x5*x5/(x2*x2*x3*x3))
	x7p3 := x7 * x7 * x7
	return []float64{
		0,
		6529.70588235294 * x5 * x5 / (x2 * x2 * x2 * x3 * x3 * x7p3 * root),
		0,
		-6529.70588235294 * x5 / (x2 * x2 * x3 * x3 * x7p3 * root),
		0,
		0.0352941176470588 * root / (x7p3 * x7),
	}
}

// GolinskiConstraint7 limits the teeth module times tooth count.
func GolinskiConstraint7(x []float64) float64 {
	_, x2, x3, _, _, _, _ := golinskiVars(x)
	return 1 - x2*x3/40
}

func GolinskiConstraint7Grad(x []float64) []float64 {
	_, _, x3, _, _, _, _ := golinskiVars(x)
	return []float64{0, -x3 / 40, 0, 0, 0, 0}
}

// GolinskiConstraint8 is the lower limit on the width-to-module ratio.
func GolinskiConstraint8(x []float64) float64 {
	x1, x2, _, _, _, _, _ := golinskiVars(x)
	return 1 - 5*x2/x1
}

func GolinskiConstraint8Grad(x []float64) []float64 {
	x1, x2, _, _, _, _, _ := golinskiVars(x)
	return []float64{5 * x2 / (x1 * x1), -5 / x1, 0, 0, 0, 0}
}

// GolinskiConstraint9 is the upper limit on the width-to-module ratio.
func GolinskiConstraint9(x []float64) float64 {
	x1, x2, _, _, _, _, _ := golinskiVars(x)
	return 1 - x1/(12*x2)
}

func GolinskiConstraint9Grad(x []float64) []float64 {
	x1, x2, _, _, _, _, _ := golinskiVars(x)
	return []float64{-1 / (12 * x2), x1 / (12 * x2 * x2), 0, 0, 0, 0}
}

// GolinskiConstraint24 is the space requirement of the first shaft.
func GolinskiConstraint24(x []float64) float64 {
	_, _, _, x4, _, x6, _ := golinskiVars(x)
	return 1 - (1.5*x6+1.9)/x4
}

func GolinskiConstraint24Grad(x []float64) []float64 {
	_, _, _, x4, _, x6, _ := golinskiVars(x)
	return []float64{0, 0, (1.5*x6 + 1.9) / (x4 * x4), 0, -1.5 / x4, 0}
}

// GolinskiConstraint25 is the space requirement of the second shaft.
func GolinskiConstraint25(x []float64) float64 {
	_, _, _, _, x5, _, x7 := golinskiVars(x)
	return 1 - (1.1*x7+1.9)/x5
}

func GolinskiConstraint25Grad(x []float64) []float64 {
	_, _, _, _, x5, _, x7 := golinskiVars(x)
	return []float64{0, 0, 0, (1.1*x7 + 1.9) / (x5 * x5), 0, -1.1 / x5}
}

package lipschitz

import (
	"io"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/vishalbelsare/PSDR/core/model"
	psdrErrors "github.com/vishalbelsare/PSDR/pkg/errors"
)

const (
	matrixModelName     = "LipschitzMatrix"
	matrixFormatVersion = "1"
)

// matrixParams is the serialized form of a fitted LipschitzMatrix.
type matrixParams struct {
	Dim      int       `json:"dim"`
	NSamples int       `json:"n_samples"`
	Epsilon  float64   `json:"epsilon"`
	H        []float64 `json:"h"`
	L        []float64 `json:"l"`
	U        []float64 `json:"u"`
}

// Save writes the fitted estimator as a JSON model envelope.
func (lm *LipschitzMatrix) Save(w io.Writer) error {
	if !lm.state.IsFitted() {
		return psdrErrors.NewNotFittedError(matrixModelName, "Save")
	}
	m := lm.dim
	p := matrixParams{
		Dim:      m,
		NSamples: lm.state.NSamples(),
		Epsilon:  lm.epsilon,
		H:        make([]float64, m*m),
		L:        make([]float64, m*m),
		U:        make([]float64, m*m),
	}
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			p.H[i*m+j] = lm.h.At(i, j)
			p.L[i*m+j] = lm.l.At(i, j)
			p.U[i*m+j] = lm.u.At(i, j)
		}
	}
	spec := model.ModelSpec{Name: matrixModelName, FormatVersion: matrixFormatVersion}
	return model.SaveModel(w, spec, p)
}

// Load restores a previously saved estimator, replacing any fitted state.
// Solver configuration is not persisted and keeps its current settings.
func (lm *LipschitzMatrix) Load(r io.Reader) error {
	var p matrixParams
	if _, err := model.LoadModel(r, matrixModelName, &p); err != nil {
		return err
	}
	m := p.Dim
	if m <= 0 || len(p.H) != m*m || len(p.L) != m*m || len(p.U) != m*m {
		return psdrErrors.NewValueError("LipschitzMatrix.Load", "inconsistent stored dimensions")
	}

	h := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			h.SetSym(i, j, p.H[i*m+j])
		}
	}
	lm.epsilon = p.Epsilon
	lm.publish(m, p.NSamples, mat.NewDense(m, m, p.U), h, mat.NewDense(m, m, p.L))
	return nil
}

// SaveToFile writes the fitted estimator to a file.
func (lm *LipschitzMatrix) SaveToFile(filename string) error {
	if !lm.state.IsFitted() {
		return psdrErrors.NewNotFittedError(matrixModelName, "SaveToFile")
	}
	f, err := os.Create(filename)
	if err != nil {
		return psdrErrors.NewModelError("LipschitzMatrix.SaveToFile", "creating file", err)
	}
	defer func() { _ = f.Close() }()
	return lm.Save(f)
}

// LoadFromFile restores an estimator from a file written by SaveToFile.
func (lm *LipschitzMatrix) LoadFromFile(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return psdrErrors.NewModelError("LipschitzMatrix.LoadFromFile", "opening file", err)
	}
	defer func() { _ = f.Close() }()
	return lm.Load(f)
}

package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"

	psdrErrors "github.com/vishalbelsare/PSDR/pkg/errors"
)

// ModelSpec identifies a persisted model.
type ModelSpec struct {
	Name          string `json:"name"`
	FormatVersion string `json:"format_version"`
}

// Envelope is the on-disk form of a persisted model: the spec, the
// model-specific parameters, and an integrity checksum over the raw
// parameter bytes.
type Envelope struct {
	Spec     ModelSpec       `json:"model_spec"`
	Params   json.RawMessage `json:"params"`
	Checksum string          `json:"checksum"`
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SaveModel writes a model envelope as JSON. params must be JSON
// marshalable; the checksum is computed over its serialized bytes.
func SaveModel(w io.Writer, spec ModelSpec, params interface{}) error {
	raw, err := json.Marshal(params)
	if err != nil {
		return psdrErrors.NewModelError("model.SaveModel", "encoding parameters", err)
	}
	env := Envelope{
		Spec:     spec,
		Params:   raw,
		Checksum: checksum(raw),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return psdrErrors.NewModelError("model.SaveModel", "writing envelope", err)
	}
	return nil
}

// LoadModel reads a model envelope, verifies the checksum and the model
// name, and unmarshals the parameters into params. The stored spec is
// returned so callers can inspect the format version.
func LoadModel(r io.Reader, wantName string, params interface{}) (ModelSpec, error) {
	var env Envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return ModelSpec{}, psdrErrors.NewModelError("model.LoadModel", "decoding envelope", err)
	}
	if env.Spec.Name != wantName {
		return ModelSpec{}, psdrErrors.NewValueError("model.LoadModel",
			"model name mismatch: stored "+env.Spec.Name+", want "+wantName)
	}
	if env.Checksum != "" && env.Checksum != checksum(env.Params) {
		return ModelSpec{}, psdrErrors.NewValidationError("checksum",
			"stored parameters fail integrity check", env.Checksum)
	}
	if err := json.Unmarshal(env.Params, params); err != nil {
		return ModelSpec{}, psdrErrors.NewModelError("model.LoadModel", "decoding parameters", err)
	}
	return env.Spec, nil
}

// SaveModelToFile saves a model envelope to a file.
func SaveModelToFile(filename string, spec ModelSpec, params interface{}) error {
	f, err := os.Create(filename)
	if err != nil {
		return psdrErrors.NewModelError("model.SaveModelToFile", "creating file", err)
	}
	defer func() { _ = f.Close() }()
	return SaveModel(f, spec, params)
}

// LoadModelFromFile loads a model envelope from a file.
func LoadModelFromFile(filename, wantName string, params interface{}) (ModelSpec, error) {
	f, err := os.Open(filename)
	if err != nil {
		return ModelSpec{}, psdrErrors.NewModelError("model.LoadModelFromFile", "opening file", err)
	}
	defer func() { _ = f.Close() }()
	return LoadModel(f, wantName, params)
}

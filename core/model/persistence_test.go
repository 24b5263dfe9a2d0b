package model

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParams struct {
	Dim    int       `json:"dim"`
	Values []float64 `json:"values"`
}

func TestSaveLoadModelRoundtrip(t *testing.T) {
	spec := ModelSpec{Name: "LipschitzMatrix", FormatVersion: "1"}
	in := fakeParams{Dim: 2, Values: []float64{1, 2, 3}}

	var buf bytes.Buffer
	require.NoError(t, SaveModel(&buf, spec, in))

	var out fakeParams
	got, err := LoadModel(&buf, "LipschitzMatrix", &out)
	require.NoError(t, err)
	assert.Equal(t, spec, got)
	assert.Equal(t, in, out)
}

func TestLoadModelNameMismatch(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SaveModel(&buf, ModelSpec{Name: "A", FormatVersion: "1"}, fakeParams{}))

	var out fakeParams
	_, err := LoadModel(&buf, "B", &out)
	assert.Error(t, err)
}

func TestLoadModelCorruptedParams(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SaveModel(&buf, ModelSpec{Name: "A", FormatVersion: "1"},
		fakeParams{Dim: 2, Values: []float64{5}}))

	// tamper with a parameter byte without fixing the checksum
	var env Envelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	env.Params = bytes.Replace(env.Params, []byte(`"dim":2`), []byte(`"dim":3`), 1)
	tampered, err := json.Marshal(env)
	require.NoError(t, err)

	var out fakeParams
	_, err = LoadModel(bytes.NewReader(tampered), "A", &out)
	assert.Error(t, err, "checksum must reject tampered parameters")
}

func TestLoadModelGarbage(t *testing.T) {
	var out fakeParams
	_, err := LoadModel(bytes.NewReader([]byte("not json")), "A", &out)
	assert.Error(t, err)
}

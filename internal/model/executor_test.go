package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/drive-api/internal/batch"
)

func TestRowsFrom(t *testing.T) {
	rows, err := rowsFrom([]float32{0.1, 0.2, 0.3, 0.4}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, []batch.PredictionRow{{Steering: 0.1, Throttle: 0.2}, {Steering: 0.3, Throttle: 0.4}}, rows)

	// extra output columns are ignored
	rows, err = rowsFrom([]float32{1, 2, 9, 3, 4, 9}, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []batch.PredictionRow{{Steering: 1, Throttle: 2}, {Steering: 3, Throttle: 4}}, rows)

	_, err = rowsFrom([]float32{1, 2, 3}, 2, 2)
	assert.ErrorIs(t, err, ErrExecution)

	_, err = rowsFrom([]float32{1, 2}, 2, 1)
	assert.ErrorIs(t, err, ErrExecution)
}

func TestNewServerMissingModel(t *testing.T) {
	_, err := NewServer(filepath.Join(t.TempDir(), "missing.onnx"), Metadata{Width: 4, Height: 4}, Options{Precision: FP32})
	assert.ErrorIs(t, err, ErrLoad)
}

func TestLoadMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model_metadata.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"width": 224, "height": 224}`), 0o644))

	m, err := LoadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, Metadata{
		InputName:   "input",
		OutputName:  "output",
		Width:       224,
		Height:      224,
		Channels:    3,
		OutputWidth: 2,
	}, m)
	assert.True(t, m.Stats().IsZero())

	require.NoError(t, os.WriteFile(path, []byte(`{"channels": 1, "mean": [0.5], "std": [0.25]}`), 0o644))
	m, err = LoadMetadata(path)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5}, m.Stats().Mean)

	require.NoError(t, os.WriteFile(path, []byte(`{`), 0o644))
	_, err = LoadMetadata(path)
	assert.Error(t, err)
}

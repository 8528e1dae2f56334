package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/drive-api/internal/preprocess"
)

func TestReduceSingleRow(t *testing.T) {
	est, err := Reduce([]PredictionRow{{Steering: 0.5, Throttle: 0.2}}, false, 1)
	require.NoError(t, err)
	assert.Equal(t, Estimate{Steering: 0.5, Throttle: 0.2}, est)
}

func TestReduceAugmentedNegatesMirroredSteering(t *testing.T) {
	rows := []PredictionRow{
		{Steering: 0.5, Throttle: 0.2},
		{Steering: -0.5, Throttle: 0.3},
	}
	est, err := Reduce(rows, true, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, est.Steering, 1e-6)
	assert.InDelta(t, 0.25, est.Throttle, 1e-6)
}

func TestReduceStereo(t *testing.T) {
	rows := []PredictionRow{
		{Steering: 0.2, Throttle: 0.4},
		{Steering: 0.4, Throttle: 0.6},
	}
	est, err := Reduce(rows, false, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, est.Steering, 1e-6)
	assert.InDelta(t, 0.5, est.Throttle, 1e-6)

	rows = append(rows,
		PredictionRow{Steering: -0.2, Throttle: 0.4},
		PredictionRow{Steering: 0.6, Throttle: 0.6},
	)
	est, err = Reduce(rows, true, 2)
	require.NoError(t, err)
	// (0.2 + 0.4 + 0.2 - 0.6) / 4
	assert.InDelta(t, 0.05, est.Steering, 1e-6)
	assert.InDelta(t, 0.5, est.Throttle, 1e-6)
}

func TestReduceEmpty(t *testing.T) {
	for _, tta := range []bool{false, true} {
		est, err := Reduce(nil, tta, 2)
		require.NoError(t, err)
		assert.Equal(t, Estimate{}, est)
	}
}

func TestReduceRowCountMismatch(t *testing.T) {
	_, err := Reduce([]PredictionRow{{}, {}}, true, 2)
	assert.ErrorIs(t, err, preprocess.ErrConfiguration)

	_, err = Reduce([]PredictionRow{{}}, false, 2)
	assert.ErrorIs(t, err, preprocess.ErrConfiguration)
}

func TestReduceVariant(t *testing.T) {
	v := Variant{Layout: Mono, Mode: Augmented}
	est, err := ReduceVariant([]PredictionRow{{Steering: 0.1, Throttle: 1}, {Steering: 0.3, Throttle: 1}}, v)
	require.NoError(t, err)
	assert.InDelta(t, -0.1, est.Steering, 1e-6)
	assert.InDelta(t, 1, est.Throttle, 1e-6)
}

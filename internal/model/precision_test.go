package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrecision(t *testing.T) {
	p, err := ParsePrecision("FP32")
	require.NoError(t, err)
	assert.Equal(t, FP32, p)

	p, err = ParsePrecision("")
	require.NoError(t, err)
	assert.Equal(t, FP16, p)

	_, err = ParsePrecision("int8")
	assert.Error(t, err)
}

func TestHalfCodec(t *testing.T) {
	values := []float32{0, 1, -2.5, 0.5, 65504}
	data := encodeHalf(values)
	require.Len(t, data, 2*len(values))

	// 1.0 is 0x3c00 in half precision
	assert.Equal(t, []byte{0x00, 0x3c}, data[2:4])
	assert.Equal(t, values, decodeHalf(data))

	// values that need rounding stay close
	got := decodeHalf(encodeHalf([]float32{-2.117904}))
	assert.InDelta(t, -2.117904, got[0], 2e-3)
}

package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Brownie44l1/drive-api/internal/preprocess"
)

// seqTensor returns a [1, c, h, w] tensor whose values count up from start.
func seqTensor(c, h, w int, start float32) preprocess.Tensor {
	t := preprocess.Tensor{Shape: [4]int{1, c, h, w}, Data: make([]float32, c*h*w)}
	for i := range t.Data {
		t.Data[i] = start + float32(i)
	}
	return t
}

func TestBuildPlain(t *testing.T) {
	left := seqTensor(3, 2, 4, 0)
	right := seqTensor(3, 2, 4, 100)

	b, err := Build([]preprocess.Tensor{left}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Rows)
	assert.Equal(t, []int64{1, 3, 2, 4}, b.Shape())
	assert.Equal(t, left.Data, b.Row(0))

	b, err = Build([]preprocess.Tensor{left, right}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Rows)
	assert.Equal(t, left.Data, b.Row(0))
	assert.Equal(t, right.Data, b.Row(1))
}

func TestBuildAugmented(t *testing.T) {
	left := seqTensor(3, 2, 4, 0)
	right := seqTensor(3, 2, 4, 100)

	b, err := Build([]preprocess.Tensor{left, right}, true)
	require.NoError(t, err)
	require.Equal(t, 4, b.Rows)

	assert.Equal(t, left.Data, b.Row(0))
	assert.Equal(t, right.Data, b.Row(1))
	assert.Equal(t, Flip(left).Data, b.Row(2))
	assert.Equal(t, Flip(right).Data, b.Row(3))

	for i, src := range []preprocess.Tensor{left, right} {
		mirrored := preprocess.Tensor{Shape: src.Shape, Data: b.Row(2 + i)}
		for c := 0; c < 3; c++ {
			for y := 0; y < 2; y++ {
				for x := 0; x < 4; x++ {
					assert.Equal(t, src.At(c, y, x), mirrored.At(c, y, 3-x))
				}
			}
		}
	}
}

func TestBuildMonoAugmented(t *testing.T) {
	b, err := Build([]preprocess.Tensor{seqTensor(1, 1, 3, 1)}, true)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Rows)
	assert.Equal(t, []float32{1, 2, 3, 3, 2, 1}, b.Data)
}

func TestBuildRejects(t *testing.T) {
	_, err := Build(nil, false)
	assert.ErrorIs(t, err, preprocess.ErrConfiguration)

	_, err = Build([]preprocess.Tensor{seqTensor(3, 2, 4, 0), seqTensor(1, 2, 4, 0)}, true)
	assert.ErrorIs(t, err, preprocess.ErrConfiguration)
}

func TestFlipIsInvolution(t *testing.T) {
	src := seqTensor(3, 3, 5, 0)
	flipped := Flip(src)
	assert.NotEqual(t, src.Data, flipped.Data)
	assert.Equal(t, src.Data, Flip(flipped).Data)
}

func TestMirrorBounds(t *testing.T) {
	b := New(2, 1, 1, 2)
	assert.ErrorIs(t, b.Mirror(2), preprocess.ErrConfiguration)
	assert.NoError(t, b.Mirror(1))
}

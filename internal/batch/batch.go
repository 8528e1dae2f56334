package batch

import (
	"fmt"

	"github.com/Brownie44l1/drive-api/internal/preprocess"
)

// Batch is a stack of [C, H, W] tensors along a leading batch axis.
type Batch struct {
	Rows     int
	Channels int
	Height   int
	Width    int
	Data     []float32
}

// New allocates a zeroed batch.
func New(rows, channels, height, width int) *Batch {
	return &Batch{
		Rows:     rows,
		Channels: channels,
		Height:   height,
		Width:    width,
		Data:     make([]float32, rows*channels*height*width),
	}
}

// RowSize is the number of values in one row.
func (b *Batch) RowSize() int { return b.Channels * b.Height * b.Width }

// Row returns row i as a slice into the batch data.
func (b *Batch) Row(i int) []float32 {
	size := b.RowSize()
	return b.Data[i*size : (i+1)*size]
}

// Shape is the NCHW shape of the batch.
func (b *Batch) Shape() []int64 {
	return []int64{int64(b.Rows), int64(b.Channels), int64(b.Height), int64(b.Width)}
}

// Mirror fills rows [n, 2n) with width-flipped copies of rows [0, n).
func (b *Batch) Mirror(n int) error {
	if 2*n > b.Rows {
		return fmt.Errorf("%w: cannot mirror %d rows in a batch of %d", preprocess.ErrConfiguration, n, b.Rows)
	}
	for i := 0; i < n; i++ {
		flipInto(b.Row(n+i), b.Row(i), b.Channels, b.Height, b.Width)
	}
	return nil
}

// Build stacks tensors in order and, with tta, appends their mirrored copies
// in the same order. All tensors must share one shape.
func Build(tensors []preprocess.Tensor, tta bool) (*Batch, error) {
	if len(tensors) == 0 {
		return nil, fmt.Errorf("%w: no tensors to batch", preprocess.ErrConfiguration)
	}

	first := tensors[0]
	rows := len(tensors)
	if tta {
		rows *= 2
	}
	b := New(rows, first.Channels(), first.Height(), first.Width())

	for i, t := range tensors {
		if t.Shape != first.Shape || t.Shape[0] != 1 || len(t.Data) != b.RowSize() {
			return nil, fmt.Errorf("%w: tensor %d has shape %v, want %v", preprocess.ErrConfiguration, i, t.Shape, first.Shape)
		}
		copy(b.Row(i), t.Data)
	}

	if tta {
		if err := b.Mirror(len(tensors)); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Flip returns a copy of t mirrored along the width axis.
func Flip(t preprocess.Tensor) preprocess.Tensor {
	out := preprocess.Tensor{Shape: t.Shape, Data: make([]float32, len(t.Data))}
	flipInto(out.Data, t.Data, t.Shape[0]*t.Channels(), t.Height(), t.Width())
	return out
}

func flipInto(dst, src []float32, channels, height, width int) {
	for line := 0; line < channels*height; line++ {
		s := src[line*width : (line+1)*width]
		d := dst[line*width : (line+1)*width]
		for x := range s {
			d[width-1-x] = s[x]
		}
	}
}

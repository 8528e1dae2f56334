package model

import (
	"errors"
	"fmt"

	"github.com/Brownie44l1/drive-api/internal/batch"
)

var (
	// ErrLoad means the model could not be loaded or bound to its device.
	ErrLoad = errors.New("model load failed")
	// ErrExecution means a forward pass failed.
	ErrExecution = errors.New("inference failed")
)

// Executor runs a forward pass. It returns one row per batch row, in batch
// order, and must not keep a reference to the batch after returning.
type Executor interface {
	Execute(b *batch.Batch) ([]batch.PredictionRow, error)
	Close()
}

// rowsFrom splits flat [rows, width] model output into prediction rows. The
// first two values of each row are steering and throttle.
func rowsFrom(values []float32, rows, width int) ([]batch.PredictionRow, error) {
	if width < 2 {
		return nil, fmt.Errorf("%w: output width %d is too narrow for steering and throttle", ErrExecution, width)
	}
	if len(values) != rows*width {
		return nil, fmt.Errorf("%w: got %d output values, want %d", ErrExecution, len(values), rows*width)
	}

	out := make([]batch.PredictionRow, rows)
	for i := range out {
		row := values[i*width:]
		out[i] = batch.PredictionRow{Steering: row[0], Throttle: row[1]}
	}
	return out, nil
}

package batch

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/Brownie44l1/drive-api/internal/preprocess"
)

// PredictionRow is the model output for one batch row.
type PredictionRow struct {
	Steering float32 `json:"steering"`
	Throttle float32 `json:"throttle"`
}

// Estimate is the final steering and throttle for a request.
type Estimate struct {
	Steering float32 `json:"steering"`
	Throttle float32 `json:"throttle"`
}

// Reduce averages rows into one estimate. With tta, rows at index
// inputCount and above came from mirrored input and contribute negated
// steering. An empty slice yields a zero estimate.
func Reduce(rows []PredictionRow, tta bool, inputCount int) (Estimate, error) {
	if len(rows) == 0 {
		return Estimate{}, nil
	}

	want := inputCount
	if tta {
		want *= 2
	}
	if len(rows) != want {
		return Estimate{}, fmt.Errorf("%w: got %d prediction rows, want %d", preprocess.ErrConfiguration, len(rows), want)
	}

	steering := make([]float64, len(rows))
	throttle := make([]float64, len(rows))
	for i, r := range rows {
		steering[i] = float64(r.Steering)
		if tta && i >= inputCount {
			steering[i] = -steering[i]
		}
		throttle[i] = float64(r.Throttle)
	}

	return Estimate{
		Steering: float32(stat.Mean(steering, nil)),
		Throttle: float32(stat.Mean(throttle, nil)),
	}, nil
}

// ReduceVariant is Reduce with the flags taken from v.
func ReduceVariant(rows []PredictionRow, v Variant) (Estimate, error) {
	return Reduce(rows, v.Augmented(), v.InputCount())
}

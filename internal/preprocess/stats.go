package preprocess

import "fmt"

// Stats holds the per-channel standardization constants a model was trained
// with. Each channel value x in [0,1] becomes (x - Mean[c]) / Std[c].
type Stats struct {
	Mean []float32 `json:"mean"`
	Std  []float32 `json:"std"`
}

var (
	// RGBStats are the ImageNet statistics used for colour models.
	RGBStats = Stats{
		Mean: []float32{0.485, 0.456, 0.406},
		Std:  []float32{0.229, 0.224, 0.225},
	}

	// GreyStats are used for single-channel models.
	GreyStats = Stats{
		Mean: []float32{0.445},
		Std:  []float32{0.269},
	}
)

// StatsFor returns the default statistics for a channel count.
func StatsFor(channels int) (Stats, error) {
	switch channels {
	case 1:
		return GreyStats.clone(), nil
	case 3:
		return RGBStats.clone(), nil
	default:
		return Stats{}, fmt.Errorf("%w: channel count must be 1 or 3, got %d", ErrConfiguration, channels)
	}
}

// IsZero reports whether no statistics were provided.
func (s Stats) IsZero() bool {
	return len(s.Mean) == 0 && len(s.Std) == 0
}

func (s Stats) validate(channels int) error {
	if len(s.Mean) != channels || len(s.Std) != channels {
		return fmt.Errorf("%w: need %d mean/std values, got %d/%d",
			ErrConfiguration, channels, len(s.Mean), len(s.Std))
	}
	for c, std := range s.Std {
		if std == 0 {
			return fmt.Errorf("%w: std for channel %d is zero", ErrConfiguration, c)
		}
	}
	return nil
}

func (s Stats) clone() Stats {
	return Stats{
		Mean: append([]float32(nil), s.Mean...),
		Std:  append([]float32(nil), s.Std...),
	}
}

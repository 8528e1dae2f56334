package preprocess

import (
	"errors"
	"fmt"
)

// ErrConfiguration reports dimensions, channel counts or statistics that do
// not match what a component was set up with.
var ErrConfiguration = errors.New("invalid configuration")

// Tensor is a single normalized image with shape [1, C, H, W].
type Tensor struct {
	Shape [4]int
	Data  []float32
}

func (t Tensor) Channels() int { return t.Shape[1] }
func (t Tensor) Height() int   { return t.Shape[2] }
func (t Tensor) Width() int    { return t.Shape[3] }

// At returns the value at channel c, row y, column x.
func (t Tensor) At(c, y, x int) float32 {
	return t.Data[(c*t.Shape[2]+y)*t.Shape[3]+x]
}

// Normalizer turns frames of one fixed size into channel-first standardized
// tensors. It owns a scratch buffer and is not safe for concurrent use; give
// each goroutine its own Normalizer or serialize calls.
type Normalizer struct {
	width    int
	height   int
	channels int
	stats    Stats

	// rescaled pixels in frame (HWC) order
	scratch []float32
}

// NewNormalizer returns a normalizer for width x height frames with the given
// channel count. A zero Stats selects the defaults for the channel count.
func NewNormalizer(width, height, channels int, stats Stats) (*Normalizer, error) {
	n := &Normalizer{}
	if err := n.Configure(width, height, channels, stats); err != nil {
		return nil, err
	}
	return n, nil
}

// Configure changes the expected frame size and statistics, resizing the
// scratch buffer. On error the previous configuration is kept.
func (n *Normalizer) Configure(width, height, channels int, stats Stats) error {
	if err := validateShape(width, height, channels); err != nil {
		return err
	}

	if stats.IsZero() {
		var err error
		if stats, err = StatsFor(channels); err != nil {
			return err
		}
	} else {
		if err := stats.validate(channels); err != nil {
			return err
		}
		stats = stats.clone()
	}

	n.width, n.height, n.channels = width, height, channels
	n.stats = stats
	if size := width * height * channels; cap(n.scratch) >= size {
		n.scratch = n.scratch[:size]
	} else {
		n.scratch = make([]float32, size)
	}
	return nil
}

func (n *Normalizer) Width() int    { return n.width }
func (n *Normalizer) Height() int   { return n.height }
func (n *Normalizer) Channels() int { return n.channels }

// Size is the number of values in one normalized tensor.
func (n *Normalizer) Size() int { return n.width * n.height * n.channels }

// Normalize converts a frame into a newly allocated [1, C, H, W] tensor.
func (n *Normalizer) Normalize(f Frame) (Tensor, error) {
	t := Tensor{
		Shape: [4]int{1, n.channels, n.height, n.width},
		Data:  make([]float32, n.Size()),
	}
	if err := n.NormalizeInto(f, t.Data); err != nil {
		return Tensor{}, err
	}
	return t, nil
}

// NormalizeInto writes the normalized form of f into dst in C x H x W order.
// The steps always run in the same order: rescale to [0,1], move the channel
// axis first, then standardize each channel.
func (n *Normalizer) NormalizeInto(f Frame, dst []float32) error {
	if f.Width != n.width || f.Height != n.height || f.Channels != n.channels {
		return fmt.Errorf("%w: frame is %dx%dx%d, want %dx%dx%d", ErrConfiguration,
			f.Width, f.Height, f.Channels, n.width, n.height, n.channels)
	}
	if len(f.Pix) != len(n.scratch) {
		return fmt.Errorf("%w: frame holds %d bytes, want %d", ErrConfiguration, len(f.Pix), len(n.scratch))
	}
	if len(dst) != len(n.scratch) {
		return fmt.Errorf("%w: destination holds %d values, want %d", ErrConfiguration, len(dst), len(n.scratch))
	}

	for i, v := range f.Pix {
		n.scratch[i] = float32(v) / 255
	}

	plane := n.width * n.height
	for p := 0; p < plane; p++ {
		src := n.scratch[p*n.channels : (p+1)*n.channels]
		for c, v := range src {
			dst[c*plane+p] = v
		}
	}

	for c := 0; c < n.channels; c++ {
		mean, std := n.stats.Mean[c], n.stats.Std[c]
		row := dst[c*plane : (c+1)*plane]
		for i := range row {
			row[i] = (row[i] - mean) / std
		}
	}
	return nil
}

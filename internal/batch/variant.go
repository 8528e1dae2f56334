package batch

import (
	"fmt"

	"github.com/Brownie44l1/drive-api/internal/preprocess"
)

// Layout is the number of cameras feeding one request.
type Layout int

const (
	Mono Layout = iota + 1
	Stereo
)

// Mode selects whether mirrored copies are added to the batch.
type Mode int

const (
	Plain Mode = iota + 1
	Augmented
)

// Variant is one of the four request shapes. Row order and the sign applied
// during reduction both follow from it.
type Variant struct {
	Layout Layout
	Mode   Mode
}

// VariantFor picks the variant for a number of input frames.
func VariantFor(inputs int, tta bool) (Variant, error) {
	v := Variant{Mode: Plain}
	if tta {
		v.Mode = Augmented
	}
	switch inputs {
	case 1:
		v.Layout = Mono
	case 2:
		v.Layout = Stereo
	default:
		return Variant{}, fmt.Errorf("%w: expected 1 or 2 frames, got %d", preprocess.ErrConfiguration, inputs)
	}
	return v, nil
}

// InputCount is the number of frames the variant takes.
func (v Variant) InputCount() int {
	switch v.Layout {
	case Mono:
		return 1
	case Stereo:
		return 2
	}
	return 0
}

// Rows is the number of batch rows the variant produces.
func (v Variant) Rows() int {
	switch v.Mode {
	case Plain:
		return v.InputCount()
	case Augmented:
		return 2 * v.InputCount()
	}
	return 0
}

func (v Variant) Augmented() bool { return v.Mode == Augmented }

// Validate rejects zero or unknown variants.
func (v Variant) Validate() error {
	if v.Rows() == 0 {
		return fmt.Errorf("%w: unknown request variant %d/%d", preprocess.ErrConfiguration, v.Layout, v.Mode)
	}
	return nil
}

func (v Variant) String() string {
	var s string
	switch v.Layout {
	case Mono:
		s = "mono"
	case Stereo:
		s = "stereo"
	default:
		return "invalid"
	}
	if v.Augmented() {
		s += "+tta"
	}
	return s
}

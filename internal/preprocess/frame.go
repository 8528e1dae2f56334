package preprocess

import (
	"fmt"
	"image"
	"image/color"

	"github.com/nfnt/resize"
)

// Frame is an 8-bit image in interleaved height x width x channel order.
// Colour frames are stored as RGB.
type Frame struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// NewFrame wraps pix after checking it holds width*height*channels bytes.
func NewFrame(width, height, channels int, pix []byte) (Frame, error) {
	if err := validateShape(width, height, channels); err != nil {
		return Frame{}, err
	}
	if want := width * height * channels; len(pix) != want {
		return Frame{}, fmt.Errorf("%w: frame needs %d bytes, got %d", ErrConfiguration, want, len(pix))
	}
	return Frame{Width: width, Height: height, Channels: channels, Pix: pix}, nil
}

// BlankFrame returns an all-zero frame, used to warm a model up.
func BlankFrame(width, height, channels int) Frame {
	return Frame{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]byte, width*height*channels),
	}
}

// FrameFromImage converts a decoded image into a frame of the given size.
// Images of a different size are resized with Lanczos3 first; single-channel
// frames use the standard luma conversion.
func FrameFromImage(img image.Image, width, height, channels int) (Frame, error) {
	if err := validateShape(width, height, channels); err != nil {
		return Frame{}, err
	}

	if b := img.Bounds(); b.Dx() != width || b.Dy() != height {
		img = resize.Resize(uint(width), uint(height), img, resize.Lanczos3)
	}

	bounds := img.Bounds()
	pix := make([]byte, 0, width*height*channels)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.At(x, y)
			if channels == 1 {
				pix = append(pix, color.GrayModel.Convert(c).(color.Gray).Y)
				continue
			}
			r, g, b, _ := c.RGBA()
			pix = append(pix, uint8(r>>8), uint8(g>>8), uint8(b>>8))
		}
	}

	return NewFrame(width, height, channels, pix)
}

func validateShape(width, height, channels int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: image size must be positive, got %dx%d", ErrConfiguration, width, height)
	}
	if channels != 1 && channels != 3 {
		return fmt.Errorf("%w: channel count must be 1 or 3, got %d", ErrConfiguration, channels)
	}
	return nil
}

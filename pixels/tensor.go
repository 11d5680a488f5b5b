// Package pixels converts in-memory pixel buffers into the base64 PNG strings
// Ollama accepts in the images field of a generation request.
package pixels

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// Tensor is a row-major pixel buffer with float samples nominally in [0,1].
//
// Accepted shapes are [H,W] (grayscale), [H,W,C] with C in {1,3,4}, and the
// same with any number of leading size-1 batch axes, e.g. [1,H,W,C].
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

// MaxSide is the largest accepted height or width. It keeps H*W*C well
// inside int range on every platform.
const MaxSide = 1 << 14

var (
	// ErrShape is returned for shapes that do not describe a single image.
	ErrShape = errors.New("pixels: unsupported tensor shape")

	// ErrChannels is returned for channel counts other than 1, 3 or 4.
	ErrChannels = errors.New("pixels: unsupported channel count")

	// ErrDataLength is returned when Data does not match Shape.
	ErrDataLength = errors.New("pixels: data length does not match shape")
)

// dims returns height, width and channels after squeezing batch axes.
func (t Tensor) dims() (h, w, c int, err error) {
	shape := t.Shape
	for len(shape) > 3 && shape[0] == 1 {
		shape = shape[1:]
	}

	switch len(shape) {
	case 2:
		h, w, c = shape[0], shape[1], 1
	case 3:
		h, w, c = shape[0], shape[1], shape[2]
	default:
		return 0, 0, 0, fmt.Errorf("%w: %v", ErrShape, t.Shape)
	}

	if h <= 0 || w <= 0 || h > MaxSide || w > MaxSide {
		return 0, 0, 0, fmt.Errorf("%w: %v", ErrShape, t.Shape)
	}
	if c != 1 && c != 3 && c != 4 {
		return 0, 0, 0, fmt.Errorf("%w: %d", ErrChannels, c)
	}
	if len(t.Data) != h*w*c {
		return 0, 0, 0, fmt.Errorf("%w: want %d values, got %d", ErrDataLength, h*w*c, len(t.Data))
	}
	return h, w, c, nil
}

// toByte scales a [0,1] sample to [0,255], clamps, then truncates.
func toByte(v float32) uint8 {
	s := v * 255
	switch {
	case s != s: // NaN
		return 0
	case s <= 0:
		return 0
	case s >= 255:
		return 255
	}
	return uint8(s)
}

// NRGBA converts the tensor to a non-premultiplied image without touching
// alpha. Grayscale is replicated across RGB; 1 and 3 channel buffers are opaque.
func (t Tensor) NRGBA() (*image.NRGBA, error) {
	h, w, c, err := t.dims()
	if err != nil {
		return nil, err
	}

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			base := (y*w + x) * c
			i := img.PixOffset(x, y)
			px := img.Pix[i : i+4 : i+4]
			switch c {
			case 1:
				g := toByte(t.Data[base])
				px[0], px[1], px[2], px[3] = g, g, g, 255
			case 3:
				px[0] = toByte(t.Data[base])
				px[1] = toByte(t.Data[base+1])
				px[2] = toByte(t.Data[base+2])
				px[3] = 255
			case 4:
				px[0] = toByte(t.Data[base])
				px[1] = toByte(t.Data[base+1])
				px[2] = toByte(t.Data[base+2])
				px[3] = toByte(t.Data[base+3])
			}
		}
	}
	return img, nil
}

// FromImage builds an [H,W,4] tensor from any image, preserving alpha.
func FromImage(img image.Image) Tensor {
	b := img.Bounds()
	h, w := b.Dy(), b.Dx()
	data := make([]float32, 0, h*w*4)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			data = append(data,
				float32(c.R)/255,
				float32(c.G)/255,
				float32(c.B)/255,
				float32(c.A)/255,
			)
		}
	}
	return Tensor{Shape: []int{h, w, 4}, Data: data}
}

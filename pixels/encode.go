package pixels

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/disintegration/imaging"
)

// Flatten returns the RGB image sent to Ollama: the tensor composited over
// an opaque white background, so every pixel has alpha 255.
func Flatten(t Tensor) (*image.NRGBA, error) {
	fg, err := t.NRGBA()
	if err != nil {
		return nil, err
	}

	b := fg.Bounds()
	bg := imaging.New(b.Dx(), b.Dy(), color.White)
	return imaging.Overlay(bg, fg, image.Pt(0, 0), 1.0), nil
}

// EncodePNG flattens the tensor and encodes it as PNG with a fixed
// compression level, so equal tensors produce equal bytes.
func EncodePNG(t Tensor) ([]byte, error) {
	img, err := Flatten(t)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression)); err != nil {
		return nil, fmt.Errorf("pixels: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Encode returns the standard base64 encoding of EncodePNG.
func Encode(t Tensor) (string, error) {
	data, err := EncodePNG(t)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// EncodeAll encodes tensors in order. The returned error names the first
// tensor that failed.
func EncodeAll(tensors []Tensor) ([]string, error) {
	out := make([]string, 0, len(tensors))
	for i, t := range tensors {
		s, err := Encode(t)
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// Open decodes an image file (any format imaging understands, EXIF
// orientation applied) into a tensor.
func Open(path string) (Tensor, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return Tensor{}, fmt.Errorf("pixels: open %s: %w", path, err)
	}
	return FromImage(img), nil
}

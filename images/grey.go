package images

import (
	"image"
	"os"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// GreyImage is a single-channel image stored row-major in a flat float buffer.
type GreyImage struct {
	labeled
}

// NewGreyImage allocates a zeroed width x height grey image with label 0.
func NewGreyImage(width, height int) *GreyImage {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &GreyImage{labeled{
		data:   make([]float32, width*height),
		width:  width,
		height: height,
	}}
}

// NewGreyImageFrom wraps an existing buffer without copying it.
//
// Arguments:
//   - data: Pixel buffer holding at least width*height values.
//   - width: Number of columns.
//   - height: Number of rows.
//   - label: Class label.
//
// Returns:
//   - *GreyImage: The image sharing data.
//   - error: If the dimensions are negative or data is too short.
func NewGreyImageFrom(data []float32, width, height int, label float32) (*GreyImage, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	if len(data) < width*height {
		return nil, errors.Wrapf(ErrBufferTooSmall, "grey image %dx%d needs %d values, got %d",
			width, height, width*height, len(data))
	}
	return &GreyImage{labeled{
		data:   data[:width*height],
		width:  width,
		height: height,
		label:  label,
	}}, nil
}

// Channels returns 1.
func (g *GreyImage) Channels() int { return 1 }

// Content returns the pixel buffer.
func (g *GreyImage) Content() []float32 { return g.data }

// At returns the pixel at row, col.
func (g *GreyImage) At(row, col int) float32 {
	return g.data[row*g.width+col]
}

// Set writes the pixel at row, col.
func (g *GreyImage) Set(row, col int, v float32) {
	g.data[row*g.width+col] = v
}

// Copy fills the image from unsigned bytes starting at offset, dividing each
// byte by normalize. A zero normalize is treated as 1.
//
// Arguments:
//   - source: Byte buffer, typically a record from an IDX style file.
//   - normalize: Divisor applied to every byte.
//   - offset: Index of the first pixel byte in source.
//
// Returns:
//   - *GreyImage: The receiver, for chaining.
//   - error: If source does not hold width*height bytes after offset.
//
// @example
//
//	img := images.NewGreyImage(28, 28)
//	if _, err := img.Copy(record, 255, 1); err != nil {
//	    return err
//	}
func (g *GreyImage) Copy(source []byte, normalize float32, offset int) (*GreyImage, error) {
	n := g.width * g.height
	if offset < 0 || n > len(source) || offset > len(source)-n {
		return nil, errors.Wrapf(ErrBufferTooSmall, "need %d bytes at offset %d, source holds %d",
			n, offset, len(source))
	}
	if normalize == 0 {
		normalize = 1
	}

	g.reserve(n)
	for i := 0; i < n; i++ {
		g.data[i] = float32(source[offset+i]) / normalize
	}
	return g, nil
}

// CopyFrom takes the dimensions, label and pixels of other.
func (g *GreyImage) CopyFrom(other *GreyImage) *GreyImage {
	g.width = other.width
	g.height = other.height
	g.label = other.label
	g.reserve(other.width * other.height)
	copy(g.data, other.data)
	return g
}

// Tensor returns a (1, height, width) float32 tensor backed by a copy of the pixels.
func (g *GreyImage) Tensor() *tensor.Dense {
	backing := make([]float32, len(g.data))
	copy(backing, g.data)
	return tensor.New(
		tensor.WithShape(1, g.height, g.width),
		tensor.WithBacking(backing),
	)
}

// GreyImageFromImage converts img to luma with the BT.601 weights, dividing by normalize.
// A zero normalize keeps values in [0, 255].
func GreyImageFromImage(img image.Image, normalize float32, label float32) *GreyImage {
	if normalize == 0 {
		normalize = 1
	}

	bounds := img.Bounds()
	out := NewGreyImage(bounds.Dx(), bounds.Dy())
	out.label = label

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			luma := 0.299*float32(r>>8) + 0.587*float32(g>>8) + 0.114*float32(b>>8)
			out.data[i] = luma / normalize
			i++
		}
	}
	return out
}

// LoadGreyImage reads an image file, rescales its short side to scaleTo and
// converts it to a grey image normalized by DefaultNormalize.
func LoadGreyImage(path string, scaleTo int, label float32) (*GreyImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read image")
	}

	img, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return GreyImageFromImage(rescale(img, scaleTo), DefaultNormalize, label), nil
}

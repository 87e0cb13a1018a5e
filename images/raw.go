package images

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/pkg/errors"
)

// HeaderSize is the length of the width and height prefix of a raw image.
const HeaderSize = 8

// RawSize returns the length of a raw color image of the given dimensions.
func RawSize(width, height int) int {
	return HeaderSize + width*height*3
}

// ReadHeader returns the width and height stored in the first 8 bytes of raw.
func ReadHeader(raw []byte) (int, int, error) {
	if len(raw) < HeaderSize {
		return 0, 0, errors.Wrapf(ErrInvalidHeader, "need %d bytes, got %d", HeaderSize, len(raw))
	}
	w := binary.BigEndian.Uint32(raw[0:4])
	h := binary.BigEndian.Uint32(raw[4:8])
	if w > math.MaxInt32 || h > math.MaxInt32 {
		return 0, 0, errors.Wrapf(ErrInvalidHeader, "dimensions %dx%d out of range", w, h)
	}
	return int(w), int(h), nil
}

// PutHeader writes width and height big-endian into the first 8 bytes of dst.
// It panics when a dimension is negative or larger than math.MaxInt32.
func PutHeader(dst []byte, width, height int) {
	if width < 0 || height < 0 || width > math.MaxInt32 || height > math.MaxInt32 {
		panic(fmt.Sprintf("images: raw header dimensions %dx%d out of range", width, height))
	}
	binary.BigEndian.PutUint32(dst[0:4], uint32(width))
	binary.BigEndian.PutUint32(dst[4:8], uint32(height))
}

// EncodeRaw converts an image to the raw layout: header then B, G, R bytes per pixel.
// Pixels with partial alpha are composited over black.
//
// Arguments:
//   - img: Any decoded image.
//
// Returns:
//   - []byte: Header followed by width*height*3 pixel bytes.
func EncodeRaw(img image.Image) []byte {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	out := make([]byte, RawSize(width, height))
	PutHeader(out, width, height)

	i := HeaderSize
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// RGBA() is alpha-premultiplied, which is the composite over black.
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			out[i] = c.B
			out[i+1] = c.G
			out[i+2] = c.R
			i += 3
		}
	}
	return out
}

package images

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// DefaultNormalize is the byte divisor used when a caller passes zero.
const DefaultNormalize float32 = 255.0

// RGBImage is a three-channel image. Pixels are interleaved in B, G, R order,
// the same order as the raw byte layout.
type RGBImage struct {
	labeled
}

// NewRGBImage allocates a zeroed width x height color image with label 0.
func NewRGBImage(width, height int) *RGBImage {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &RGBImage{labeled{
		data:   make([]float32, width*height*3),
		width:  width,
		height: height,
	}}
}

// NewRGBImageFrom wraps an existing interleaved B, G, R buffer without copying it.
func NewRGBImageFrom(data []float32, width, height int, label float32) (*RGBImage, error) {
	if err := checkDimensions(width, height); err != nil {
		return nil, err
	}
	n := width * height * 3
	if len(data) < n {
		return nil, errors.Wrapf(ErrBufferTooSmall, "rgb image %dx%d needs %d values, got %d",
			width, height, n, len(data))
	}
	return &RGBImage{labeled{
		data:   data[:n],
		width:  width,
		height: height,
		label:  label,
	}}, nil
}

// Channels returns 3.
func (m *RGBImage) Channels() int { return 3 }

// Content returns the interleaved pixel buffer.
func (m *RGBImage) Content() []float32 { return m.data }

// At returns channel c (0=B, 1=G, 2=R) of the pixel at row, col.
func (m *RGBImage) At(row, col, c int) float32 {
	return m.data[(row*m.width+col)*3+c]
}

// Set writes channel c of the pixel at row, col.
func (m *RGBImage) Set(row, col, c int, v float32) {
	m.data[(row*m.width+col)*3+c] = v
}

// Copy parses a raw image (8 byte header then B, G, R bytes) into the receiver.
// Every byte is divided by normalize; zero means DefaultNormalize. The buffer
// is reused when it is large enough.
//
// Arguments:
//   - raw: Raw image bytes as produced by ReadImage or EncodeRaw.
//   - normalize: Divisor applied to every byte.
//
// Returns:
//   - *RGBImage: The receiver, for chaining.
//   - error: If the header is invalid or the payload length does not match it.
//
// @example
//
//	raw, err := images.ReadImage("cat.jpg", 256)
//	if err != nil {
//	    return err
//	}
//	img, err := images.NewRGBImage(0, 0).Copy(raw, 255)
func (m *RGBImage) Copy(raw []byte, normalize float32) (*RGBImage, error) {
	width, height, err := ReadHeader(raw)
	if err != nil {
		return nil, err
	}
	if len(raw) != RawSize(width, height) {
		return nil, errors.Wrapf(ErrSizeMismatch, "header says %dx%d (%d bytes), payload is %d bytes",
			width, height, RawSize(width, height), len(raw))
	}
	if normalize == 0 {
		normalize = DefaultNormalize
	}

	m.width = width
	m.height = height
	n := width * height * 3
	m.reserve(n)

	pixels := raw[HeaderSize:]
	for i := 0; i < n; i++ {
		m.data[i] = float32(pixels[i]) / normalize
	}
	return m, nil
}

// CopyFrom takes the dimensions, label and pixels of other.
func (m *RGBImage) CopyFrom(other *RGBImage) *RGBImage {
	m.width = other.width
	m.height = other.height
	m.label = other.label
	m.reserve(other.width * other.height * 3)
	copy(m.data, other.data)
	return m
}

// CopyTo writes the image as three planes (CHW) into dst starting at offset.
// With toRGB the planes are R, G, B; otherwise the stored B, G, R order is kept.
//
// Arguments:
//   - dst: Destination storage, typically a batch tensor backing slice.
//   - offset: Index of the first value of the frame in dst.
//   - toRGB: Whether to swap the channel order to R, G, B.
//
// Returns:
//   - error: If dst cannot hold 3*width*height values after offset.
func (m *RGBImage) CopyTo(dst []float32, offset int, toRGB bool) error {
	frame := m.width * m.height
	if offset < 0 || frame*3 > len(dst) || offset > len(dst)-frame*3 {
		return errors.Wrapf(ErrBufferTooSmall, "need %d values at offset %d, destination holds %d",
			frame*3, offset, len(dst))
	}

	first, last := 0, 2
	if toRGB {
		first, last = 2, 0
	}
	p0 := dst[offset : offset+frame]
	p1 := dst[offset+frame : offset+frame*2]
	p2 := dst[offset+frame*2 : offset+frame*3]
	for j := 0; j < frame; j++ {
		p0[j] = m.data[j*3+first]
		p1[j] = m.data[j*3+1]
		p2[j] = m.data[j*3+last]
	}
	return nil
}

// Tensor returns a (3, height, width) float32 tensor of the image.
func (m *RGBImage) Tensor(toRGB bool) *tensor.Dense {
	backing := make([]float32, len(m.data))
	// backing is sized for the frame, CopyTo cannot fail.
	_ = m.CopyTo(backing, 0, toRGB)
	return tensor.New(
		tensor.WithShape(3, m.height, m.width),
		tensor.WithBacking(backing),
	)
}

// ConvertToByte scales every value and stores it as an interleaved byte,
// rounding and clamping to [0, 255]. buf is reused when its capacity allows.
func (m *RGBImage) ConvertToByte(buf []byte, scale float32) []byte {
	n := m.width * m.height * 3
	if cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]
	for i := 0; i < n; i++ {
		buf[i] = toByte(m.data[i] * scale)
	}
	return buf
}

// Raw returns the image in the raw layout, scaling values by scale.
func (m *RGBImage) Raw(scale float32) []byte {
	out := make([]byte, RawSize(m.width, m.height))
	PutHeader(out, m.width, m.height)
	m.ConvertToByte(out[HeaderSize:HeaderSize], scale)
	return out
}

// HFlip mirrors the image horizontally in place.
func (m *RGBImage) HFlip() *RGBImage {
	for y := 0; y < m.height; y++ {
		row := m.data[y*m.width*3 : (y+1)*m.width*3]
		for l, r := 0, m.width-1; l < r; l, r = l+1, r-1 {
			row[l*3], row[r*3] = row[r*3], row[l*3]
			row[l*3+1], row[r*3+1] = row[r*3+1], row[l*3+1]
			row[l*3+2], row[r*3+2] = row[r*3+2], row[l*3+2]
		}
	}
	return m
}

// Crop returns a new image holding the width x height rectangle whose top-left corner is (x, y).
func (m *RGBImage) Crop(x, y, width, height int) (*RGBImage, error) {
	if x < 0 || y < 0 || width <= 0 || height <= 0 || x+width > m.width || y+height > m.height {
		return nil, errors.Wrapf(ErrInvalidDimensions, "crop %dx%d at (%d,%d) outside %dx%d",
			width, height, x, y, m.width, m.height)
	}

	out := NewRGBImage(width, height)
	out.label = m.label
	for row := 0; row < height; row++ {
		src := ((y+row)*m.width + x) * 3
		copy(out.data[row*width*3:(row+1)*width*3], m.data[src:src+width*3])
	}
	return out, nil
}

// ToImage converts the image to an opaque *image.NRGBA, scaling values by scale.
func (m *RGBImage) ToImage(scale float32) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, m.width, m.height))
	for j := 0; j < m.width*m.height; j++ {
		dst.Pix[j*4] = toByte(m.data[j*3+2] * scale)
		dst.Pix[j*4+1] = toByte(m.data[j*3+1] * scale)
		dst.Pix[j*4+2] = toByte(m.data[j*3] * scale)
		dst.Pix[j*4+3] = 0xff
	}
	return dst
}

// Batch stacks images of identical size into an (n, 3, height, width) tensor.
//
// Arguments:
//   - imgs: Images sharing the same dimensions.
//   - toRGB: Whether planes are ordered R, G, B.
//
// Returns:
//   - *tensor.Dense: The batch tensor.
//   - error: If imgs is empty or the dimensions differ.
func Batch(imgs []*RGBImage, toRGB bool) (*tensor.Dense, error) {
	if len(imgs) == 0 {
		return nil, errors.New("empty batch")
	}
	width, height := imgs[0].width, imgs[0].height
	frame := width * height * 3

	backing := make([]float32, frame*len(imgs))
	for i, img := range imgs {
		if img.width != width || img.height != height {
			return nil, errors.Wrapf(ErrSizeMismatch, "image %d is %dx%d, batch is %dx%d",
				i, img.width, img.height, width, height)
		}
		if err := img.CopyTo(backing, i*frame, toRGB); err != nil {
			return nil, errors.Wrapf(err, "image %d", i)
		}
	}

	return tensor.New(
		tensor.WithShape(len(imgs), 3, height, width),
		tensor.WithBacking(backing),
	), nil
}

func toByte(v float32) uint8 {
	if math32.IsNaN(v) {
		return 0
	}
	v = math32.Floor(v + 0.5)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

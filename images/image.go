// Package images - Labeled image containers and byte codecs for training data.
package images

import (
	"github.com/pkg/errors"
)

var (
	// ErrBufferTooSmall is returned when a source or destination buffer cannot hold a frame.
	ErrBufferTooSmall = errors.New("buffer too small")
	// ErrSizeMismatch is returned when a raw payload does not match its header.
	ErrSizeMismatch = errors.New("size mismatch")
	// ErrAlphaUnsupported is returned for images that carry transparency.
	ErrAlphaUnsupported = errors.New("images with an alpha channel are not supported")
	// ErrInvalidHeader is returned when the raw header is truncated or negative.
	ErrInvalidHeader = errors.New("invalid raw image header")
	// ErrInvalidDimensions is returned for non-positive or out of range dimensions.
	ErrInvalidDimensions = errors.New("invalid image dimensions")
)

// Image is a flat float buffer with dimensions and a scalar label.
type Image interface {
	// Width is the number of columns.
	Width() int
	// Height is the number of rows.
	Height() int
	// Channels is 1 for grey and 3 for color images.
	Channels() int
	// Label is the class label attached to the image.
	Label() float32
	// SetLabel replaces the label.
	SetLabel(label float32)
	// Content is the pixel buffer, trimmed to Width*Height*Channels.
	Content() []float32
}

// labeled holds the state shared by every image variant.
type labeled struct {
	data   []float32
	width  int
	height int
	label  float32
}

// Width returns the number of columns.
func (l *labeled) Width() int { return l.width }

// Height returns the number of rows.
func (l *labeled) Height() int { return l.height }

// Label returns the label.
func (l *labeled) Label() float32 { return l.label }

// SetLabel replaces the label.
func (l *labeled) SetLabel(label float32) { l.label = label }

// reserve makes sure the buffer holds at least n values, reusing it when possible.
func (l *labeled) reserve(n int) {
	if cap(l.data) < n {
		l.data = make([]float32, n)
		return
	}
	l.data = l.data[:n]
}

func checkDimensions(width, height int) error {
	if width < 0 || height < 0 {
		return errors.Wrapf(ErrInvalidDimensions, "%dx%d", width, height)
	}
	return nil
}

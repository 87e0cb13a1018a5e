package images

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/chai2010/webp"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// DefaultQuality is the JPEG and WebP quality used by Encode.
const DefaultQuality = 90

// Decode decodes encoded image bytes of the given format.
//
// Arguments:
//   - data: Encoded image bytes.
//   - format: The format of data.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: If data is empty, the format is unknown or decoding fails.
func Decode(data []byte, format ImageFormat) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}

	r := bytes.NewReader(data)
	var (
		img image.Image
		err error
	)
	switch format {
	case FormatJPEG:
		img, err = jpeg.Decode(r)
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatWebP:
		img, err = webp.Decode(r)
	default:
		return nil, errors.Errorf("unsupported image format: %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", format)
	}
	return img, nil
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format ImageFormat) error {
	var err error
	switch format {
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: DefaultQuality})
	case FormatPNG:
		err = png.Encode(w, img)
	case FormatWebP:
		err = webp.Encode(w, img, &webp.Options{Quality: DefaultQuality})
	default:
		return errors.Errorf("unsupported image format: %q", format)
	}
	return errors.Wrapf(err, "failed to encode %s", format)
}

// ScaledSize returns the size after scaling the short side to scaleTo. The long
// side keeps the aspect ratio using integer division. A non-positive scaleTo
// keeps the original size.
func ScaledSize(width, height, scaleTo int) (int, int) {
	if scaleTo <= 0 || width <= 0 || height <= 0 {
		return width, height
	}
	if width < height {
		return scaleTo, scaleTo * height / width
	}
	return scaleTo * width / height, scaleTo
}

// ReadImage reads an image file, rescales it so the short side is scaleTo and
// returns it in the raw layout (8 byte header then B, G, R bytes).
//
// Arguments:
//   - path: Path to a JPEG, PNG or WebP file.
//   - scaleTo: Target length of the short side; non-positive keeps the size.
//
// Returns:
//   - []byte: The raw image.
//   - error: If the file cannot be read or decoded, or it has transparency.
//
// @example
//
//	raw, err := images.ReadImage("train/cat/001.jpg", 256)
//	if err != nil {
//	    log.Printf("⚠️  skipping image: %v", err)
//	}
func ReadImage(path string, scaleTo int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open image")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	img, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	if o, ok := img.(interface{ Opaque() bool }); ok && !o.Opaque() {
		return nil, errors.Wrap(ErrAlphaUnsupported, path)
	}

	return EncodeRaw(rescale(img, scaleTo)), nil
}

// LoadRGBImage reads and rescales an image file into a normalized RGBImage.
func LoadRGBImage(path string, scaleTo int, label float32) (*RGBImage, error) {
	raw, err := ReadImage(path, scaleTo)
	if err != nil {
		return nil, err
	}
	img, err := NewRGBImage(0, 0).Copy(raw, DefaultNormalize)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	img.SetLabel(label)
	return img, nil
}

// ResizeImageToImage decodes imageBytes and resizes it to exactly width x height.
func ResizeImageToImage(imageBytes []byte, width, height int, format ImageFormat) (image.Image, error) {
	if len(imageBytes) == 0 {
		return nil, errors.New("empty image data")
	}
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidDimensions, "width=%d, height=%d", width, height)
	}

	img, err := Decode(imageBytes, format)
	if err != nil {
		return nil, err
	}
	return resize.Resize(uint(width), uint(height), img, resize.Lanczos3), nil
}

// Save writes the image to path, scaling values by scale. The format follows
// the extension; anything unknown is written as JPEG.
func (m *RGBImage) Save(path string, scale float32) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create output")
	}
	defer f.Close()

	if err := m.Encode(f, FormatFromPath(path), scale); err != nil {
		return errors.Wrap(err, path)
	}
	return errors.Wrap(f.Close(), "failed to close output")
}

// Encode writes the image to w in the given format, scaling values by scale.
func (m *RGBImage) Encode(w io.Writer, format ImageFormat, scale float32) error {
	if m.width == 0 || m.height == 0 {
		return errors.Wrapf(ErrInvalidDimensions, "cannot encode %dx%d image", m.width, m.height)
	}
	return Encode(w, m.ToImage(scale), format)
}

func rescale(img image.Image, scaleTo int) image.Image {
	b := img.Bounds()
	w, h := ScaledSize(b.Dx(), b.Dy(), scaleTo)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return resize.Resize(uint(w), uint(h), img, resize.Lanczos3)
}

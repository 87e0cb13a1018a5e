package images

import (
	"crypto/md5"
	"fmt"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// RawFromMat converts an 8 bit, 3 channel OpenCV Mat to the raw layout.
// OpenCV stores pixels as interleaved B, G, R, which is the raw payload order.
//
// Arguments:
//   - mat: A CV_8UC3 Mat, e.g. from gocv.IMRead or a video capture.
//
// Returns:
//   - []byte: Header followed by the Mat bytes.
//   - error: If the Mat is empty or not CV_8UC3.
func RawFromMat(mat gocv.Mat) ([]byte, error) {
	if mat.Empty() {
		return nil, errors.New("mat is empty")
	}
	if mat.Type() != gocv.MatTypeCV8UC3 {
		return nil, errors.Errorf("unsupported mat type %v, want CV_8UC3", mat.Type())
	}

	width, height := mat.Cols(), mat.Rows()
	pixels := mat.ToBytes()
	if len(pixels) != width*height*3 {
		return nil, errors.Wrapf(ErrSizeMismatch, "mat %dx%d holds %d bytes", width, height, len(pixels))
	}

	out := make([]byte, RawSize(width, height))
	PutHeader(out, width, height)
	copy(out[HeaderSize:], pixels)
	return out, nil
}

// RGBImageFromMat converts a CV_8UC3 Mat to a normalized RGBImage.
func RGBImageFromMat(mat gocv.Mat, label float32) (*RGBImage, error) {
	raw, err := RawFromMat(mat)
	if err != nil {
		return nil, err
	}
	img, err := NewRGBImage(0, 0).Copy(raw, DefaultNormalize)
	if err != nil {
		return nil, err
	}
	img.SetLabel(label)
	return img, nil
}

// MatFromRGBImage builds a CV_8UC3 Mat from the image, scaling values by scale.
// The caller owns the returned Mat and must Close it.
func MatFromRGBImage(img *RGBImage, scale float32) (gocv.Mat, error) {
	if img.Width() == 0 || img.Height() == 0 {
		return gocv.NewMat(), errors.Wrapf(ErrInvalidDimensions, "cannot build mat from %dx%d image",
			img.Width(), img.Height())
	}
	mat, err := gocv.NewMatFromBytes(img.Height(), img.Width(), gocv.MatTypeCV8UC3, img.ConvertToByte(nil, scale))
	if err != nil {
		return gocv.NewMat(), errors.Wrap(err, "failed to create mat")
	}
	return mat, nil
}

// ComputeMatChecksum returns a hex MD5 of the Mat bytes, or "empty".
func ComputeMatChecksum(mat gocv.Mat) string {
	if mat.Empty() {
		return "empty"
	}

	hash := md5.New()
	hash.Write(mat.ToBytes())
	return fmt.Sprintf("%x", hash.Sum(nil))
}

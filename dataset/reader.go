package dataset

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/imacej/BigDL/images"
	"github.com/pkg/errors"
)

// Options configures a Reader.
type Options struct {
	// ScaleTo is the target length of the short side; non-positive keeps the size.
	ScaleTo int
	// Concurrency bounds the number of files decoded at once.
	Concurrency int
	// SkipInvalid logs and drops unreadable files instead of failing.
	SkipInvalid bool
	// Normalize divides every pixel byte; zero means 255.
	Normalize float32
	// Debug logs every decoded file.
	Debug bool
}

// Reader decodes image files into normalized RGB images.
type Reader struct {
	opts Options
}

// NewReader creates a Reader. A non-positive concurrency is treated as 1.
func NewReader(opts Options) *Reader {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Normalize == 0 {
		opts.Normalize = images.DefaultNormalize
	}
	return &Reader{opts: opts}
}

// Read decodes a single file and attaches its label.
func (r *Reader) Read(file ImageFile) (*images.RGBImage, error) {
	raw, err := images.ReadImage(file.Path, r.opts.ScaleTo)
	if err != nil {
		return nil, err
	}

	img, err := images.NewRGBImage(0, 0).Copy(raw, r.opts.Normalize)
	if err != nil {
		return nil, errors.Wrap(err, file.Path)
	}
	img.SetLabel(file.Label)

	if r.opts.Debug {
		log.Printf("[DEBUG] %s: %dx%d label=%.0f", file.Path, img.Width(), img.Height(), file.Label)
	}
	return img, nil
}

// ReadAll decodes files with bounded concurrency.
//
// Arguments:
//   - ctx: Cancels outstanding reads.
//   - files: Files to decode, e.g. from LocalImagePaths.
//
// Returns:
//   - []*images.RGBImage: Images in input order, without the skipped ones.
//   - error: The first read error unless SkipInvalid is set, or ctx.Err().
//
// @example
//
//	files, _, err := dataset.LocalImagePaths("train")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	imgs, err := dataset.NewReader(dataset.Options{ScaleTo: 256, Concurrency: 8}).ReadAll(ctx, files)
func (r *Reader) ReadAll(ctx context.Context, files []ImageFile) ([]*images.RGBImage, error) {
	results := make([]*images.RGBImage, len(files))
	errs := make([]error, len(files))

	sem := make(chan struct{}, r.opts.Concurrency)
	var wg sync.WaitGroup

	for i, file := range files {
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(idx int, f ImageFile) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}
			img, err := r.Read(f)
			if err != nil {
				errs[idx] = errors.Wrapf(err, "failed to read image %d", idx)
				return
			}
			results[idx] = img
		}(i, file)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]*images.RGBImage, 0, len(files))
	for i, err := range errs {
		if err != nil {
			if !r.opts.SkipInvalid {
				return nil, err
			}
			log.Printf("⚠️  Skipping %s: %v", files[i].Path, err)
			continue
		}
		out = append(out, results[i])
	}

	return out, nil
}

// WriteRawFiles writes each image in the raw layout to dir as <index>-<label>.raw.
//
// Arguments:
//   - dir: Output directory, created when missing.
//   - imgs: Images to write.
//   - scale: Multiplier applied before converting values to bytes; zero means 255.
//
// Returns:
//   - []string: The written paths in image order.
//   - error: If the directory or a file cannot be written.
func WriteRawFiles(dir string, imgs []*images.RGBImage, scale float32) ([]string, error) {
	if scale == 0 {
		scale = images.DefaultNormalize
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create output directory")
	}

	paths := make([]string, 0, len(imgs))
	for i, img := range imgs {
		path := filepath.Join(dir, fmt.Sprintf("%06d-%d.raw", i, int(img.Label())))
		if err := os.WriteFile(path, img.Raw(scale), 0o644); err != nil {
			return nil, errors.Wrap(err, "failed to write raw image")
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// WriteTensorFiles writes each image as a (3, height, width) float32 tensor
// in NumPy .npy format to dir as <index>-<label>.npy.
//
// Arguments:
//   - dir: Output directory, created when missing.
//   - imgs: Images to write.
//   - toRGB: Whether planes are ordered R, G, B instead of B, G, R.
//
// Returns:
//   - []string: The written paths in image order.
//   - error: If the directory or a file cannot be written.
func WriteTensorFiles(dir string, imgs []*images.RGBImage, toRGB bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create tensor directory")
	}

	paths := make([]string, 0, len(imgs))
	for i, img := range imgs {
		path := filepath.Join(dir, fmt.Sprintf("%06d-%d.npy", i, int(img.Label())))
		if err := writeNpy(path, img, toRGB); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func writeNpy(path string, img *images.RGBImage, toRGB bool) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create tensor file")
	}
	defer f.Close()

	if err := img.Tensor(toRGB).WriteNpy(f); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return errors.Wrap(f.Close(), "failed to close tensor file")
}

// ReadRawFile loads a raw image file written by WriteRawFiles.
func ReadRawFile(path string, normalize float32) (*images.RGBImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read raw image")
	}
	img, err := images.NewRGBImage(0, 0).Copy(data, normalize)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return img, nil
}

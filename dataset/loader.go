// Package dataset loads labeled image folders into training-ready images.
package dataset

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/imacej/BigDL/images"
	"github.com/pkg/errors"
)

// ImageFile represents an image file.
type ImageFile struct {
	// Path is the path to the image file.
	Path string
	// Data is the raw bytes of the image file. Empty for path-only listings.
	Data []byte
	// Label is the class label, starting at 1. Zero for unlabeled files.
	Label float32
}

// LocalImagePaths lists every image in a root/<class>/<file> tree.
//
// Classes are the subdirectory names sorted lexically; the first class gets
// label 1. Files directly under root and unsupported extensions are ignored.
//
// Arguments:
//   - root: Directory holding one subdirectory per class.
//
// Returns:
//   - []ImageFile: Paths with labels, ordered by label then path.
//   - []string: The class names, index i holds label i+1.
//   - error: If a directory cannot be read.
func LocalImagePaths(root string) ([]ImageFile, []string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to read dataset root")
	}

	var classes []string
	for _, entry := range entries {
		if entry.IsDir() {
			classes = append(classes, entry.Name())
		}
	}
	sort.Strings(classes)

	var files []ImageFile
	for i, class := range classes {
		dir := filepath.Join(root, class)
		paths, err := imagePaths(dir)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range paths {
			files = append(files, ImageFile{Path: p, Label: float32(i + 1)})
		}
	}

	return files, classes, nil
}

// LoadDirectoryImageFiles reads all image files from a flat directory.
//
// Arguments:
// - dir: Directory path containing image files.
//
// Returns:
// - []ImageFile: Slice of ImageFile, each containing the raw bytes of an image file, sorted by path.
// - error: Error if loading fails.
func LoadDirectoryImageFiles(dir string) ([]ImageFile, error) {
	paths, err := imagePaths(dir)
	if err != nil {
		return nil, err
	}

	files := make([]ImageFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read image file")
		}
		files = append(files, ImageFile{Path: p, Data: data})
	}

	return files, nil
}

// imagePaths returns the sorted paths of supported images directly under dir.
func imagePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", dir)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !images.IsSupportedExtension(filepath.Ext(entry.Name())) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	return paths, nil
}

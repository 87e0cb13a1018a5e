package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/imacej/BigDL/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"
)

func writeClassImage(t *testing.T, root, class, name string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 12, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 12; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	dir := filepath.Join(root, class)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestConvertInfoExport(t *testing.T) {
	root := t.TempDir()
	writeClassImage(t, root, "a", "1.png")
	writeClassImage(t, root, "b", "2.png")

	tests := []struct {
		name   string
		config string
		// first tensor plane value of the top-left pixel
		plane0 float32
	}{
		{"defaults", "", 200.0 / 255},
		{"zero normalize", "normalize: 0\n", 200.0 / 255},
		{"custom normalize", "normalize: 100\n", 200.0 / 100},
		{"bgr tensors", "to_rgb: false\n", 50.0 / 255},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmp := t.TempDir()
			configPath := filepath.Join(tmp, "config.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.config), 0o644))
			out := filepath.Join(tmp, "raw")
			tensors := filepath.Join(tmp, "tensors")

			rootCmd.SetArgs([]string{"convert", "--config", configPath, "-i", root, "-o", out,
				"--tensors", tensors, "--scale-to", "3", "--strict"})
			require.NoError(t, rootCmd.Execute())

			entries, err := os.ReadDir(out)
			require.NoError(t, err)
			require.Len(t, entries, 2)
			assert.Equal(t, "000000-1.raw", entries[0].Name())
			assert.Equal(t, "000001-2.raw", entries[1].Name())

			rawPath := filepath.Join(out, entries[0].Name())
			raw, err := os.ReadFile(rawPath)
			require.NoError(t, err)
			require.Len(t, raw, images.RawSize(6, 3))
			for i := images.HeaderSize; i < len(raw); i += 3 {
				assert.InDelta(t, 50, raw[i], 2, "blue at %d", i)
				assert.InDelta(t, 100, raw[i+1], 2, "green at %d", i)
				assert.InDelta(t, 200, raw[i+2], 2, "red at %d", i)
			}

			f, err := os.Open(filepath.Join(tensors, "000000-1.npy"))
			require.NoError(t, err)
			defer f.Close()
			dense := new(tensor.Dense)
			require.NoError(t, dense.ReadNpy(f))
			assert.Equal(t, tensor.Shape{3, 3, 6}, dense.Shape())
			assert.InDelta(t, tt.plane0, dense.Data().([]float32)[0], 0.03)

			var stdout bytes.Buffer
			rootCmd.SetOut(&stdout)
			rootCmd.SetArgs([]string{"info", rawPath})
			require.NoError(t, rootCmd.Execute())
			assert.Contains(t, stdout.String(), "6x3\tok")

			pngPath := filepath.Join(tmp, "back.png")
			rootCmd.SetArgs([]string{"export", "-i", rawPath, "-o", pngPath})
			require.NoError(t, rootCmd.Execute())

			decoded := decodePNG(t, pngPath)
			assert.Equal(t, image.Rect(0, 0, 6, 3), decoded.Bounds())
			r, g, b, a := decoded.At(2, 1).RGBA()
			assert.InDelta(t, 200, r>>8, 2)
			assert.InDelta(t, 100, g>>8, 2)
			assert.InDelta(t, 50, b>>8, 2)
			assert.Equal(t, uint32(0xff), a>>8)
		})
	}
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func TestInfoRejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.raw")
	require.NoError(t, os.WriteFile(path, []byte{0, 0}, 0o644))

	rootCmd.SetArgs([]string{"info", path})
	assert.Error(t, rootCmd.Execute())
}

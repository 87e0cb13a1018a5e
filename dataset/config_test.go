package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/imacej/BigDL/images"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convert.yaml")
	require.NoError(t, os.WriteFile(path, []byte("root: ./train\nscale_to: 128\nconcurrency: 8\nto_rgb: false\n"), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "./train", config.Root)
	assert.Equal(t, 128, config.ScaleTo)
	assert.Equal(t, 8, config.Concurrency)
	assert.False(t, config.ToRGB)
	// Untouched fields keep defaults.
	assert.Equal(t, "./raw", config.Output)
	assert.Equal(t, float32(255), config.Normalize)
	assert.NoError(t, config.Validate())
}

func TestLoadConfigJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "convert.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"root": "data", "output": "out", "skip_invalid": false}`), 0o644))

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "data", config.Root)
	assert.Equal(t, "out", config.Output)
	assert.False(t, config.SkipInvalid)
	assert.Equal(t, 256, config.ScaleTo)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing root", func(c *Config) { c.Root = "" }, "root is required"},
		{"missing output", func(c *Config) { c.Output = "" }, "output is required"},
		{"negative scale", func(c *Config) { c.ScaleTo = -1 }, "scale_to"},
		{"negative normalize", func(c *Config) { c.Normalize = -1 }, "normalize"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.Root = "train"
			tt.mutate(config)

			err := config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestReaderOptions(t *testing.T) {
	config := DefaultConfig()
	config.Debug = true

	opts := config.ReaderOptions()
	assert.Equal(t, config.ScaleTo, opts.ScaleTo)
	assert.Equal(t, config.Concurrency, opts.Concurrency)
	assert.True(t, opts.SkipInvalid)
	assert.True(t, opts.Debug)
}

func TestConfigScale(t *testing.T) {
	tests := []struct {
		name      string
		normalize float32
		want      float32
	}{
		{"zero means default", 0, images.DefaultNormalize},
		{"explicit", 100, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			config.Normalize = tt.normalize
			assert.Equal(t, tt.want, config.Scale())
			assert.Equal(t, tt.want, config.ReaderOptions().Normalize)
		})
	}
}

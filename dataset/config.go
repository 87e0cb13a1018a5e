package dataset

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/imacej/BigDL/images"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config describes a folder conversion run.
type Config struct {
	// Root is the dataset directory holding one subdirectory per class.
	Root string `json:"root" yaml:"root"`
	// Output is the directory raw files are written to.
	Output string `json:"output" yaml:"output"`
	// ScaleTo is the target length of the short side.
	ScaleTo int `json:"scale_to" yaml:"scale_to"`
	// Concurrency bounds parallel decoding.
	Concurrency int `json:"concurrency" yaml:"concurrency"`
	// SkipInvalid drops unreadable images instead of failing.
	SkipInvalid bool `json:"skip_invalid" yaml:"skip_invalid"`
	// Normalize divides pixel bytes when loading.
	Normalize float32 `json:"normalize" yaml:"normalize"`
	// ToRGB orders tensor planes R, G, B instead of B, G, R.
	ToRGB bool `json:"to_rgb" yaml:"to_rgb"`
	// TensorOutput, when set, receives one (3, h, w) .npy tensor per image.
	TensorOutput string `json:"tensor_output" yaml:"tensor_output"`
	// Debug enables per-file logging.
	Debug bool `json:"debug" yaml:"debug"`
}

// DefaultConfig returns a default conversion configuration.
func DefaultConfig() *Config {
	return &Config{
		Output:      "./raw",
		ScaleTo:     256,
		Concurrency: 4,
		SkipInvalid: true,
		Normalize:   255,
		ToRGB:       true,
	}
}

// LoadConfig loads a configuration from a YAML or JSON file, chosen by
// extension. Fields missing from the file keep their defaults.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		err = json.Unmarshal(data, config)
	default:
		err = yaml.Unmarshal(data, config)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	return config, nil
}

// Validate checks the configuration for values that cannot run.
func (c *Config) Validate() error {
	if c.Root == "" {
		return errors.New("root is required")
	}
	if c.Output == "" {
		return errors.New("output is required")
	}
	if c.ScaleTo < 0 {
		return errors.Errorf("scale_to must not be negative, got %d", c.ScaleTo)
	}
	if c.Normalize < 0 {
		return errors.Errorf("normalize must not be negative, got %v", c.Normalize)
	}
	return nil
}

// Scale returns the pixel divisor used for reading and the multiplier used
// for writing. Zero means images.DefaultNormalize.
func (c *Config) Scale() float32 {
	if c.Normalize == 0 {
		return images.DefaultNormalize
	}
	return c.Normalize
}

// ReaderOptions maps the configuration onto Reader options.
func (c *Config) ReaderOptions() Options {
	return Options{
		ScaleTo:     c.ScaleTo,
		Concurrency: c.Concurrency,
		SkipInvalid: c.SkipInvalid,
		Normalize:   c.Scale(),
		Debug:       c.Debug,
	}
}

package appconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/soypat/pixfx/chain"
	"github.com/soypat/pixfx/filters"
)

// Config holds the benchmark settings: the synthetic frame source, the
// filter chain and the execution options.
type Config struct {
	// Filters lists filter names in chain order, by display name or slug.
	Filters       []string `json:"filters"`
	ContrastLevel int      `json:"contrastLevel"`

	// Synthetic frame source.
	Frames   int   `json:"frames"`
	Width    int   `json:"width"`
	Height   int   `json:"height"`
	Channels int   `json:"channels"`
	Seed     int64 `json:"seed"`

	// Workers is the parallel band count, 0 for hardware concurrency.
	Workers int  `json:"workers"`
	UseGPU  bool `json:"useGpu"`
	Debug   bool `json:"debug"`
}

// Default returns a Config populated with sensible defaults: five seconds of
// 640x480 video at 30 FPS through every CPU filter.
func Default() Config {
	return Config{
		Filters: []string{
			chain.KindGrayscale.Slug(),
			chain.KindEdgeThreshold.Slug(),
			chain.KindSobelEdge.Slug(),
			chain.KindGaussianBlur.Slug(),
			chain.KindContrast.Slug(),
			chain.KindTextArt.Slug(),
		},
		ContrastLevel: filters.ContrastIdentity,
		Frames:        150,
		Width:         640,
		Height:        480,
		Channels:      3,
		Seed:          42,
	}
}

// Load reads the config at path over the defaults. A missing file yields
// the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	} else if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Save writes cfg as indented JSON, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// Validate checks ranges and that every filter name is known.
func (c Config) Validate() error {
	var errs []error
	if c.Frames < 0 {
		errs = append(errs, errors.New("frames must not be negative"))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid frame size %dx%d", c.Width, c.Height))
	}
	switch c.Channels {
	case 1, 3, 4:
	default:
		errs = append(errs, fmt.Errorf("channels must be 1, 3 or 4, got %d", c.Channels))
	}
	if c.ContrastLevel < filters.ContrastMin || c.ContrastLevel > filters.ContrastMax {
		errs = append(errs, fmt.Errorf("contrast level %d outside %d..%d", c.ContrastLevel, filters.ContrastMin, filters.ContrastMax))
	}
	if _, err := c.Chain(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Chain builds the configured filter chain.
func (c Config) Chain() (chain.Chain, error) {
	return chain.ParseChain(c.Filters, c.ContrastLevel)
}

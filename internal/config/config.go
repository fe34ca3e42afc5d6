package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// CurrentVersion is written by SaveConfig.
const CurrentVersion = "1"

// Config represents the flat tilegrab configuration.
type Config struct {
	Version string `yaml:"version"`

	// Extent and tiling
	Start      [2]float64 `yaml:"start"`      // x, y of the near corner
	End        [2]float64 `yaml:"end"`        // x, y of the far corner
	WidthPx    int        `yaml:"width_px"`   // tile width in pixels
	HeightPx   int        `yaml:"height_px"`  // tile height in pixels
	Resolution float64    `yaml:"resolution"` // ground units per pixel

	// Endpoints
	LabelURL    string   `yaml:"label_url"`
	LabelLayers []string `yaml:"label_layers"`
	ImageURL    string   `yaml:"image_url"`
	ImageLayers []string `yaml:"image_layers"`
	Format      string   `yaml:"format"`
	CRS         string   `yaml:"crs"`

	// Policy and pacing
	LabelDelay     time.Duration `yaml:"label_delay"`
	LabelThreshold float64       `yaml:"label_threshold"`
	MaxConcurrent  int           `yaml:"max_concurrent"`
	MaxAttempts    int           `yaml:"max_attempts"`
	RetryDelay     time.Duration `yaml:"retry_delay"`
	HTTPTimeout    time.Duration `yaml:"http_timeout"`

	// Output
	DataDir     string `yaml:"data_dir"`
	Ledger      bool   `yaml:"ledger"`
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Version:        CurrentVersion,
		Start:          [2]float64{272038, 6656016},
		End:            [2]float64{320189, 6700359},
		WidthPx:        1024,
		HeightPx:       1024,
		Resolution:     0.1,
		LabelURL:       "https://openwms.statkart.no/skwms1/wms.fkb",
		LabelLayers:    []string{"bygning"},
		ImageURL:       "https://wms.geonorge.no/skwms1/wms.nib",
		ImageLayers:    []string{"ortofoto"},
		Format:         "image/png",
		CRS:            "EPSG:25832",
		LabelDelay:     10 * time.Millisecond,
		LabelThreshold: 0.01,
		MaxConcurrent:  20,
		MaxAttempts:    5,
		RetryDelay:     200 * time.Millisecond,
		HTTPTimeout:    60 * time.Second,
		DataDir:        "data",
		Ledger:         true,
	}
}

// LoadConfig reads a YAML file on top of the defaults.
// Fields absent from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes cfg as YAML to path.
func SaveConfig(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}

	data, err := cfg.YAML()
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.WidthPx <= 0 || c.HeightPx <= 0:
		return fmt.Errorf("%w: tile size must be positive, got %dx%d", ErrInvalid, c.WidthPx, c.HeightPx)
	case c.Resolution <= 0:
		return fmt.Errorf("%w: resolution must be positive, got %v", ErrInvalid, c.Resolution)
	case c.End[0] <= c.Start[0] || c.End[1] <= c.Start[1]:
		return fmt.Errorf("%w: end %v must be greater than start %v on both axes", ErrInvalid, c.End, c.Start)
	case c.LabelURL == "" || c.ImageURL == "":
		return fmt.Errorf("%w: label_url and image_url are required", ErrInvalid)
	case len(c.LabelLayers) == 0 || len(c.ImageLayers) == 0:
		return fmt.Errorf("%w: label_layers and image_layers are required", ErrInvalid)
	case c.LabelThreshold < 0 || c.LabelThreshold > 1:
		return fmt.Errorf("%w: label_threshold must be within [0, 1], got %v", ErrInvalid, c.LabelThreshold)
	case c.MaxConcurrent <= 0:
		return fmt.Errorf("%w: max_concurrent must be positive, got %d", ErrInvalid, c.MaxConcurrent)
	case c.MaxAttempts <= 0:
		return fmt.Errorf("%w: max_attempts must be positive, got %d", ErrInvalid, c.MaxAttempts)
	case c.LabelDelay < 0 || c.RetryDelay < 0 || c.HTTPTimeout < 0:
		return fmt.Errorf("%w: delays must not be negative", ErrInvalid)
	case c.DataDir == "":
		return fmt.Errorf("%w: data_dir is required", ErrInvalid)
	}
	return nil
}

// TileSize returns the tile size in ground units.
func (c *Config) TileSize() (w, h float64) {
	return float64(c.WidthPx) * c.Resolution, float64(c.HeightPx) * c.Resolution
}

// YAML renders cfg the way SaveConfig writes it.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

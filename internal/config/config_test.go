package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	w, h := cfg.TileSize()
	if w != 102.4 || h != 102.4 {
		t.Errorf("TileSize() = %v x %v, want 102.4 x 102.4", w, h)
	}
}

func TestLoadConfig_OverlaysDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "tilegrab.yaml")
	content := `
start: [0, 0]
end: [2, 2]
width_px: 2
height_px: 2
resolution: 1
label_delay: 50ms
max_concurrent: 3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Start != [2]float64{0, 0} || cfg.End != [2]float64{2, 2} {
		t.Errorf("extent = %v..%v", cfg.Start, cfg.End)
	}
	if cfg.LabelDelay != 50*time.Millisecond {
		t.Errorf("LabelDelay = %v, want 50ms", cfg.LabelDelay)
	}
	if cfg.MaxConcurrent != 3 {
		t.Errorf("MaxConcurrent = %d, want 3", cfg.MaxConcurrent)
	}
	// Untouched fields keep their defaults
	if cfg.MaxAttempts != 5 || cfg.LabelThreshold != 0.01 || cfg.ImageLayers[0] != "ortofoto" {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tilegrab.yaml")
	want := Default()
	want.RetryDelay = 750 * time.Millisecond
	want.LabelLayers = []string{"bygning", "veg"}

	if err := SaveConfig(path, want); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got.RetryDelay != want.RetryDelay || len(got.LabelLayers) != 2 || got.LabelLayers[1] != "veg" {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("start: [oops"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero width", func(c *Config) { c.WidthPx = 0 }},
		{"negative resolution", func(c *Config) { c.Resolution = -1 }},
		{"end before start", func(c *Config) { c.End = [2]float64{c.Start[0] - 1, c.End[1]} }},
		{"missing label url", func(c *Config) { c.LabelURL = "" }},
		{"no image layers", func(c *Config) { c.ImageLayers = nil }},
		{"threshold above one", func(c *Config) { c.LabelThreshold = 1.5 }},
		{"zero concurrency", func(c *Config) { c.MaxConcurrent = 0 }},
		{"zero attempts", func(c *Config) { c.MaxAttempts = 0 }},
		{"negative delay", func(c *Config) { c.LabelDelay = -time.Second }},
		{"empty data dir", func(c *Config) { c.DataDir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

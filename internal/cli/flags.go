package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/example/tilegrab/internal/config"
)

// addConfigFlags registers one flag per configuration option. Defaults
// shown in help come from config.Default; only flags the user sets
// override the config file.
func addConfigFlags(fs *pflag.FlagSet) {
	d := config.Default()

	fs.Float64Slice("start", d.Start[:], "near corner of the extent as x,y")
	fs.Float64Slice("end", d.End[:], "far corner of the extent as x,y")
	fs.Int("width", d.WidthPx, "tile width in pixels")
	fs.Int("height", d.HeightPx, "tile height in pixels")
	fs.Float64("resolution", d.Resolution, "ground units per pixel")

	fs.String("label-url", d.LabelURL, "label WMS base URL")
	fs.StringSlice("label-layers", d.LabelLayers, "label WMS layers")
	fs.String("image-url", d.ImageURL, "imagery WMS base URL")
	fs.StringSlice("image-layers", d.ImageLayers, "imagery WMS layers")
	fs.String("format", d.Format, "GetMap output format")
	fs.String("crs", d.CRS, "coordinate reference system")

	fs.Duration("label-delay", d.LabelDelay, "pause after acquiring the label slot")
	fs.Float64("threshold", d.LabelThreshold, "minimum non-background pixel ratio to accept a label")
	fs.Int("concurrency", d.MaxConcurrent, "maximum tiles in flight")
	fs.Int("max-attempts", d.MaxAttempts, "fetch attempts per request")
	fs.Duration("retry-delay", d.RetryDelay, "delay between fetch attempts")
	fs.Duration("http-timeout", d.HTTPTimeout, "per-request HTTP timeout")

	fs.String("data-dir", d.DataDir, "output base directory")
	fs.Bool("no-ledger", !d.Ledger, "do not record runs in the SQLite ledger")
	fs.String("metrics-addr", d.MetricsAddr, "serve Prometheus metrics on this address, e.g. :9090")
}

// loadConfig returns the effective configuration: defaults, then the
// --config file, then explicitly set flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	point := func(name string, dst *[2]float64) error {
		if !fs.Changed(name) {
			return nil
		}
		v, err := fs.GetFloat64Slice(name)
		if err != nil {
			return err
		}
		if len(v) != 2 {
			return fmt.Errorf("--%s takes exactly two values x,y, got %d", name, len(v))
		}
		*dst = [2]float64{v[0], v[1]}
		return nil
	}
	if err := point("start", &cfg.Start); err != nil {
		return err
	}
	if err := point("end", &cfg.End); err != nil {
		return err
	}

	if fs.Changed("width") {
		cfg.WidthPx, _ = fs.GetInt("width")
	}
	if fs.Changed("height") {
		cfg.HeightPx, _ = fs.GetInt("height")
	}
	if fs.Changed("resolution") {
		cfg.Resolution, _ = fs.GetFloat64("resolution")
	}
	if fs.Changed("label-url") {
		cfg.LabelURL, _ = fs.GetString("label-url")
	}
	if fs.Changed("label-layers") {
		cfg.LabelLayers, _ = fs.GetStringSlice("label-layers")
	}
	if fs.Changed("image-url") {
		cfg.ImageURL, _ = fs.GetString("image-url")
	}
	if fs.Changed("image-layers") {
		cfg.ImageLayers, _ = fs.GetStringSlice("image-layers")
	}
	if fs.Changed("format") {
		cfg.Format, _ = fs.GetString("format")
	}
	if fs.Changed("crs") {
		cfg.CRS, _ = fs.GetString("crs")
	}
	if fs.Changed("label-delay") {
		cfg.LabelDelay, _ = fs.GetDuration("label-delay")
	}
	if fs.Changed("threshold") {
		cfg.LabelThreshold, _ = fs.GetFloat64("threshold")
	}
	if fs.Changed("concurrency") {
		cfg.MaxConcurrent, _ = fs.GetInt("concurrency")
	}
	if fs.Changed("max-attempts") {
		cfg.MaxAttempts, _ = fs.GetInt("max-attempts")
	}
	if fs.Changed("retry-delay") {
		cfg.RetryDelay, _ = fs.GetDuration("retry-delay")
	}
	if fs.Changed("http-timeout") {
		cfg.HTTPTimeout, _ = fs.GetDuration("http-timeout")
	}
	if fs.Changed("data-dir") {
		cfg.DataDir, _ = fs.GetString("data-dir")
	}
	if fs.Changed("no-ledger") {
		noLedger, _ := fs.GetBool("no-ledger")
		cfg.Ledger = !noLedger
	}
	if fs.Changed("metrics-addr") {
		cfg.MetricsAddr, _ = fs.GetString("metrics-addr")
	}
	return nil
}

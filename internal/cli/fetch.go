package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/tilegrab/internal/metrics"
	"github.com/example/tilegrab/internal/wire"
)

// FetchCmd returns the fetch command
func FetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download label and image tiles for an extent",
		Long: `Fetch walks a half-overlapping grid over the configured extent. Each tile's
label raster is fetched first; tiles whose label has too few feature pixels
are dropped before their imagery is requested. Accepted tiles are written to
{data-dir}/{extent}/labels and images. Tiles whose image already exists are
skipped, so an interrupted run can simply be started again.`,
		Example: `  tilegrab fetch --dry-run
  tilegrab fetch --start 272038,6656016 --end 273038,6657016 --concurrency 8
  tilegrab fetch --config tilegrab.yaml --metrics-addr :9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			noProgress, _ := cmd.Flags().GetBool("no-progress")

			ctx, stop := NewSignalContext()
			defer stop()

			var m *metrics.Metrics
			if cfg.MetricsAddr != "" && !dryRun {
				m = metrics.New()
				m.Serve(ctx, cfg.MetricsAddr, globalLogger)
			}

			adapter := wire.FetchAdapter(cfg, m)
			if dryRun {
				return adapter.Plan(ctx, wire.RunRequest(cfg, nil))
			}

			req := wire.RunRequest(cfg, nil)
			if !noProgress {
				req.Progress = wire.ProgressBar()
			}
			return adapter.Run(ctx, req)
		},
	}

	addConfigFlags(cmd.Flags())
	cmd.Flags().Bool("dry-run", false, "print the output layout and tile count without fetching")
	cmd.Flags().Bool("no-progress", false, "disable the progress bar")
	return cmd
}

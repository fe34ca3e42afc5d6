package cli

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/example/tilegrab/internal/core/grid"
	"github.com/example/tilegrab/internal/core/tile"
)

// GridCmd returns the grid command
func GridCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Print the tile grid for an extent",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			boxes, err := grid.Generate(
				grid.Point{X: cfg.Start[0], Y: cfg.Start[1]},
				grid.Point{X: cfg.End[0], Y: cfg.End[1]},
				grid.SizeFor(cfg.WidthPx, cfg.HeightPx, cfg.Resolution),
			)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s tiles\n", humanize.Comma(int64(len(boxes))))
			for i, b := range boxes {
				if limit > 0 && i >= limit {
					fmt.Fprintf(out, "... %s more\n", humanize.Comma(int64(len(boxes)-limit)))
					break
				}
				fmt.Fprintf(out, "%s  %s\n", b, tile.KeyOf(b).Filename())
			}
			return nil
		},
	}

	addConfigFlags(cmd.Flags())
	cmd.Flags().IntP("limit", "n", 10, "number of boxes to print (0 for all)")
	return cmd
}

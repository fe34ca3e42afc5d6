package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/tilegrab/internal/wire"
)

// ConvertCmd returns the convert command
func ConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [root]",
		Short: "Write detection annotations from saved label masks",
		Long: `Convert reads every mask in {root}/labels, finds the bounding box of each
outer feature outline, and writes one annotation line per box to
{root}/annotations, normalized by the paired image's size. Masks without a
paired image are skipped. The root defaults to the configured run directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			classID, _ := cmd.Flags().GetInt("class")

			root, err := rootArg(cmd, args)
			if err != nil {
				return err
			}

			ctx, stop := NewSignalContext()
			defer stop()
			return wire.ConvertAdapter().Convert(ctx, root, classID)
		},
	}

	addConfigFlags(cmd.Flags())
	cmd.Flags().Int("class", 0, "class id written on every annotation line")
	return cmd
}

// rootArg returns the explicit run root argument or the configured one.
func rootArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return "", err
	}
	return wire.RunRoot(cfg), nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/tilegrab/internal/wire"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded runs",
	Long:  "Inspect runs recorded in the ledger of a run directory",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		limit, _ := cmd.Flags().GetInt("limit")
		rootFlag, _ := cmd.Flags().GetString("root")

		root, err := runsRoot(cmd, rootFlag)
		if err != nil {
			return err
		}
		adapter, closer, err := wire.RunAdapter(root)
		if err != nil {
			return fmt.Errorf("failed to open ledger in %s: %w", root, err)
		}
		defer closer.Close()

		return adapter.List(ctx, limit)
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show a run and its tile outcomes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := NewContext()
		rootFlag, _ := cmd.Flags().GetString("root")

		root, err := runsRoot(cmd, rootFlag)
		if err != nil {
			return err
		}
		adapter, closer, err := wire.RunAdapter(root)
		if err != nil {
			return fmt.Errorf("failed to open ledger in %s: %w", root, err)
		}
		defer closer.Close()

		_, err = adapter.Show(ctx, args[0])
		return err
	},
}

func runsRoot(cmd *cobra.Command, rootFlag string) (string, error) {
	if rootFlag != "" {
		return rootFlag, nil
	}
	return rootArg(cmd, nil)
}

func init() {
	for _, c := range []*cobra.Command{runsListCmd, runsShowCmd} {
		addConfigFlags(c.Flags())
		c.Flags().String("root", "", "run directory holding the ledger (defaults to the configured one)")
	}
	runsListCmd.Flags().IntP("limit", "n", 20, "maximum runs to list")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}

// RunsCmd returns the runs command
func RunsCmd() *cobra.Command {
	return runsCmd
}

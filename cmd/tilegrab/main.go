package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/tilegrab/internal/cli"
	"github.com/example/tilegrab/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "tilegrab",
		Short:   "tilegrab - paired WMS tile acquisition for training data",
		Version: version.String(),
		Long: `tilegrab downloads paired label and aerial-image tiles from two WMS
endpoints over a large extent, keeps only tiles whose label shows features,
and converts the saved masks into detection annotations.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.InitLogging(cmd)
		},
	}
	cli.AddGlobalFlags(rootCmd)

	// Add subcommands
	rootCmd.AddCommand(cli.FetchCmd())
	rootCmd.AddCommand(cli.GridCmd())
	rootCmd.AddCommand(cli.ConvertCmd())
	rootCmd.AddCommand(cli.RunsCmd())
	rootCmd.AddCommand(cli.ConfigCmd())

	err := rootCmd.Execute()
	cli.FlushLogging()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

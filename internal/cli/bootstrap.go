// Package cli provides CLI commands for tilegrab.
package cli

import (
	gocontext "context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/example/tilegrab/internal/logging"
)

// globalLogger is built once in PersistentPreRunE from --log-level and --log-dev.
var (
	globalLogger = logr.Discard()
	flushLogger  = func() {}
)

// AddGlobalFlags registers the flags every command shares.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().String("config", "", "YAML config file (defaults apply when omitted)")
	root.PersistentFlags().String("log-level", "info", "log level: error, info, debug or trace")
	root.PersistentFlags().Bool("log-dev", false, "human-readable console logs")
}

// InitLogging builds the process logger. Should be called once at CLI
// startup in PersistentPreRunE.
func InitLogging(cmd *cobra.Command) error {
	level, _ := cmd.Flags().GetString("log-level")
	dev, _ := cmd.Flags().GetBool("log-dev")

	logger, flush, err := logging.New(logging.Options{Level: level, Development: dev})
	if err != nil {
		return err
	}
	globalLogger = logger
	flushLogger = flush
	return nil
}

// FlushLogging flushes buffered log entries. Safe to call when InitLogging
// was never called.
func FlushLogging() {
	flushLogger()
}

// NewContext creates a context.Background() carrying the process logger.
// CLI commands should use this instead of context.Background() directly.
func NewContext() gocontext.Context {
	return logging.IntoContext(gocontext.Background(), globalLogger)
}

// NewSignalContext is NewContext canceled on SIGINT or SIGTERM, so a run
// stops launching tiles and drains the ones in flight.
func NewSignalContext() (gocontext.Context, gocontext.CancelFunc) {
	return signal.NotifyContext(NewContext(), os.Interrupt, syscall.SIGTERM)
}

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/tilegrab/internal/core/tile"
	"github.com/example/tilegrab/internal/ports/primary"
)

// RunAdapter translates runs commands to RunService calls.
type RunAdapter struct {
	service primary.RunService
	out     io.Writer
}

// NewRunAdapter creates a new RunAdapter with the given service.
func NewRunAdapter(service primary.RunService, out io.Writer) *RunAdapter {
	return &RunAdapter{
		service: service,
		out:     out,
	}
}

// List lists recorded runs, newest first.
func (a *RunAdapter) List(ctx context.Context, limit int) error {
	runs, err := a.service.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Fprintln(a.out, "No runs found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-36s %-20s %6s %6s %6s %6s %6s\n", "ID", "STARTED", "TOTAL", "SAVED", "SKIP", "REJ", "FAIL")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────────────────────────────────")
	for _, r := range runs {
		fmt.Fprintf(a.out, "%-36s %-20s %6d %6d %6d %6d %6d\n",
			r.ID, r.StartedAt, r.Total, r.Saved, r.Skipped, r.Rejected, r.Failed)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show displays a single run with its per-outcome tile counts.
func (a *RunAdapter) Show(ctx context.Context, runID string) (*primary.Run, error) {
	run, err := a.service.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	fmt.Fprintf(a.out, "\nRun:      %s\n", run.ID)
	fmt.Fprintf(a.out, "Output:   %s\n", run.Root)
	fmt.Fprintf(a.out, "Started:  %s\n", run.StartedAt)
	if run.FinishedAt != "" {
		fmt.Fprintf(a.out, "Finished: %s\n", run.FinishedAt)
	} else {
		fmt.Fprintln(a.out, "Finished: (interrupted or running)")
	}
	fmt.Fprintf(a.out, "Total:    %d\n", run.Total)
	fmt.Fprintln(a.out, "Outcomes:")
	for _, o := range tile.Outcomes {
		if n := run.Outcomes[string(o)]; n > 0 {
			fmt.Fprintf(a.out, "  %-13s %d\n", o, n)
		}
	}
	fmt.Fprintln(a.out)

	return run, nil
}

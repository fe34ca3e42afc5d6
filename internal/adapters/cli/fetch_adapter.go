// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting and delegate
// the work to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/example/tilegrab/internal/core/tile"
	"github.com/example/tilegrab/internal/ports/primary"
)

// FetchAdapter translates fetch and grid commands to PipelineService calls.
type FetchAdapter struct {
	service primary.PipelineService
	out     io.Writer
}

// NewFetchAdapter creates a new FetchAdapter with the given service.
func NewFetchAdapter(service primary.PipelineService, out io.Writer) *FetchAdapter {
	return &FetchAdapter{
		service: service,
		out:     out,
	}
}

// Plan prints what a run would do without fetching anything.
func (a *FetchAdapter) Plan(ctx context.Context, req primary.RunRequest) error {
	plan, err := a.service.Plan(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nOutput:    %s\n", plan.Root)
	fmt.Fprintf(a.out, "Tile size: %s x %s ground units (%d x %d px)\n",
		tile.FormatCoord(plan.TileW), tile.FormatCoord(plan.TileH), req.WidthPx, req.HeightPx)
	fmt.Fprintf(a.out, "Tiles:     %s\n", humanize.Comma(int64(plan.TileCount)))
	fmt.Fprintf(a.out, "Existing:  %s (will be skipped)\n", humanize.Comma(int64(plan.Existing)))
	fmt.Fprintln(a.out)
	return nil
}

// Run executes a run and prints its summary. The summary is printed even
// when the run was interrupted.
func (a *FetchAdapter) Run(ctx context.Context, req primary.RunRequest) error {
	summary, err := a.service.Run(ctx, req)
	if summary != nil {
		a.printSummary(summary)
	}
	return err
}

func (a *FetchAdapter) printSummary(s *primary.RunSummary) {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintf(a.out, "\nRun %s\n", s.RunID)
	fmt.Fprintf(a.out, "Output: %s\n", s.Root)
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, o := range tile.Outcomes {
		n := s.Count(o)
		if n == 0 {
			continue
		}
		label := fmt.Sprintf("%-13s", o)
		switch {
		case o == tile.OutcomeSaved:
			label = green(label)
		case o.IsFailure():
			label = red(label)
		default:
			label = yellow(label)
		}
		fmt.Fprintf(a.out, "%s %s\n", label, humanize.Comma(int64(n)))
	}
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	fmt.Fprintf(a.out, "%-13s %s\n", "total", humanize.Comma(int64(s.Total)))
	fmt.Fprintf(a.out, "%-13s %s\n", "imagery", humanize.Bytes(uint64(s.ImageBytes)))
	fmt.Fprintf(a.out, "%-13s %s\n", "elapsed", s.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(a.out, "%-13s tile %d, label %d\n", "peak holders", s.TilePeak, s.LabelPeak)
	fmt.Fprintln(a.out)

	if failed := s.Failed(); failed > 0 {
		fmt.Fprintf(a.out, "%s %d tiles failed; rerun to retry them\n", red("✗"), failed)
	} else {
		fmt.Fprintf(a.out, "%s Run complete\n", green("✓"))
	}
}

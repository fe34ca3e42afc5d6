// Package primary defines the primary ports (driving adapters) for the application.
package primary

import (
	"context"
	"time"

	"github.com/example/tilegrab/internal/core/tile"
)

// PipelineService defines the primary port for tile acquisition runs.
type PipelineService interface {
	// Run acquires every tile of the requested extent and blocks until each
	// tile reached a terminal state.
	Run(ctx context.Context, req RunRequest) (*RunSummary, error)

	// Plan computes the output layout and tile count without any network access.
	Plan(ctx context.Context, req RunRequest) (*RunPlan, error)
}

// ProgressReporter is notified once per finished tile, in completion order.
type ProgressReporter interface {
	Start(total int)
	TileDone(result TileResult)
	Finish()
}

// RunRequest contains the parameters for one acquisition run.
type RunRequest struct {
	StartX, StartY float64
	EndX, EndY     float64
	WidthPx        int
	HeightPx       int
	Resolution     float64 // ground units per pixel
	Progress       ProgressReporter
}

// RunPlan describes what a run would do.
type RunPlan struct {
	Root      string
	TileCount int
	TileW     float64
	TileH     float64
	Existing  int
}

// TileResult is the terminal outcome of one tile coordination unit.
type TileResult struct {
	Key        tile.Key
	Outcome    tile.Outcome
	Ratio      float64
	ImageBytes int
	Duration   time.Duration
	Err        error
}

// RunSummary aggregates the results of a finished run.
type RunSummary struct {
	RunID      string
	Root       string
	Total      int
	Counts     map[tile.Outcome]int
	ImageBytes int64
	TilePeak   int64
	LabelPeak  int64
	Elapsed    time.Duration
}

// Count returns the number of tiles that ended with outcome o.
func (s *RunSummary) Count(o tile.Outcome) int {
	if s == nil || s.Counts == nil {
		return 0
	}
	return s.Counts[o]
}

// Failed returns the number of tiles that ended in a failure outcome.
func (s *RunSummary) Failed() int {
	n := 0
	for o, c := range s.Counts {
		if o.IsFailure() {
			n += c
		}
	}
	return n
}

package app

import (
	"context"
	"errors"
	"time"

	"github.com/go-logr/logr"

	"github.com/example/tilegrab/internal/core/labelfilter"
	"github.com/example/tilegrab/internal/core/tile"
	"github.com/example/tilegrab/internal/logging"
	"github.com/example/tilegrab/internal/ports/primary"
	"github.com/example/tilegrab/internal/ports/secondary"
)

// TileCoordinator drives one tile through skip check, label fetch, filtering,
// and image fetch. It holds no per-tile state and is shared by all tile
// goroutines of a run.
type TileCoordinator struct {
	labels secondary.Fetcher
	images secondary.Fetcher
	urls   secondary.URLBuilder
	filter labelfilter.Filter
	store  secondary.TileStore
	gates  *Gates

	widthPx, heightPx int
}

// NewTileCoordinator creates a TileCoordinator with injected dependencies.
func NewTileCoordinator(
	labels, images secondary.Fetcher,
	urls secondary.URLBuilder,
	filter labelfilter.Filter,
	store secondary.TileStore,
	gates *Gates,
	widthPx, heightPx int,
) *TileCoordinator {
	return &TileCoordinator{
		labels:   labels,
		images:   images,
		urls:     urls,
		filter:   filter,
		store:    store,
		gates:    gates,
		widthPx:  widthPx,
		heightPx: heightPx,
	}
}

// tileRun tracks the lifecycle of a single tile.
type tileRun struct {
	state  tile.State
	logger logr.Logger
}

func (r *tileRun) advance(to tile.State) {
	if err := tile.Transition(r.state, to); err != nil {
		r.logger.Error(err, "unexpected tile transition")
	}
	r.logger.V(logging.DEBUG).Info("tile state", "from", r.state, "to", to)
	r.state = to
}

// Process runs bbox to a terminal state. skip is the immutable set of image
// file names that existed when the run started. Failures never escape the
// returned result.
func (c *TileCoordinator) Process(ctx context.Context, bbox tile.BoundingBox, skip map[string]struct{}) primary.TileResult {
	start := time.Now()
	key := tile.KeyOf(bbox)
	filename := key.Filename()
	run := &tileRun{
		state:  tile.StatePending,
		logger: logging.FromContext(ctx).WithValues("tile", string(key)),
	}
	result := primary.TileResult{Key: key}
	finish := func(o tile.Outcome, err error) primary.TileResult {
		result.Outcome = o
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	run.advance(tile.StateSkipCheck)
	if _, ok := skip[filename]; ok {
		run.advance(tile.StateSkipped)
		run.logger.Info("skipping tile")
		return finish(tile.OutcomeSkipped, nil)
	}

	coords := bbox.Coords()
	run.advance(tile.StateLabelFetch)
	var label []byte
	err := c.gates.WithLabelSlot(ctx, func(ctx context.Context) error {
		var err error
		label, err = c.labels.Fetch(ctx, c.urls.LabelURL(coords, c.widthPx, c.heightPx))
		return err
	})
	if err != nil {
		run.advance(tile.StateFailed)
		run.logger.Error(err, "label fetch failed")
		return finish(failureOutcome(ctx, err, tile.OutcomeLabelFailed), err)
	}

	decision := c.filter.Evaluate(label)
	result.Ratio = decision.Ratio
	if !decision.Accepted {
		run.advance(tile.StateRejected)
		if decision.Err != nil {
			run.logger.Error(decision.Err, "label rejected")
		} else {
			run.logger.V(logging.VERBOSE).Info("label rejected", "ratio", decision.Ratio)
		}
		return finish(tile.OutcomeRejected, decision.Err)
	}

	run.advance(tile.StateLabelAccepted)
	run.logger.Info("label accepted", "ratio", decision.Ratio)
	if err := c.store.WriteMask(ctx, filename, decision.Mask); err != nil {
		run.advance(tile.StateFailed)
		run.logger.Error(err, "failed to write mask")
		return finish(tile.OutcomeWriteFailed, err)
	}

	run.advance(tile.StateImageFetch)
	data, err := c.images.Fetch(ctx, c.urls.ImageURL(coords, c.widthPx, c.heightPx))
	if err != nil {
		// The mask stays on disk without its image; the next run retries
		// the tile because the skip check looks at images only.
		run.advance(tile.StateFailed)
		run.logger.Error(err, "image fetch failed")
		return finish(failureOutcome(ctx, err, tile.OutcomeImageFailed), err)
	}
	if err := c.store.WriteImage(ctx, filename, data); err != nil {
		run.advance(tile.StateFailed)
		run.logger.Error(err, "failed to write image")
		return finish(tile.OutcomeWriteFailed, err)
	}

	run.advance(tile.StateSaved)
	result.ImageBytes = len(data)
	run.logger.Info("tile saved", "bytes", len(data))
	return finish(tile.OutcomeSaved, nil)
}

func failureOutcome(ctx context.Context, err error, fallback tile.Outcome) tile.Outcome {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return tile.OutcomeCanceled
	}
	return fallback
}

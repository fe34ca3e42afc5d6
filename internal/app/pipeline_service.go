package app

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/example/tilegrab/internal/core/grid"
	"github.com/example/tilegrab/internal/core/labelfilter"
	"github.com/example/tilegrab/internal/core/tile"
	"github.com/example/tilegrab/internal/ctxutil"
	"github.com/example/tilegrab/internal/logging"
	"github.com/example/tilegrab/internal/metrics"
	"github.com/example/tilegrab/internal/ports/primary"
	"github.com/example/tilegrab/internal/ports/secondary"
)

// StoreFactory returns the tile store for a run's output root.
type StoreFactory func(req primary.RunRequest) secondary.TileStore

// LedgerFactory opens the run ledger under root. The returned closer is
// called once the run is finished.
type LedgerFactory func(root string) (secondary.LedgerWriter, io.Closer, error)

// PipelineConfig contains the run policy shared by every request.
type PipelineConfig struct {
	TileSlots   int64
	LabelPacing time.Duration
	Filter      labelfilter.Filter
}

// PipelineServiceImpl implements the PipelineService interface.
type PipelineServiceImpl struct {
	cfg       PipelineConfig
	labels    secondary.Fetcher
	images    secondary.Fetcher
	urls      secondary.URLBuilder
	newStore  StoreFactory
	newLedger LedgerFactory // nil disables the ledger
	metrics   *metrics.Metrics
}

// NewPipelineService creates a new PipelineService with injected dependencies.
func NewPipelineService(
	cfg PipelineConfig,
	labels, images secondary.Fetcher,
	urls secondary.URLBuilder,
	newStore StoreFactory,
	newLedger LedgerFactory,
	m *metrics.Metrics,
) *PipelineServiceImpl {
	if cfg.Filter == (labelfilter.Filter{}) {
		cfg.Filter = labelfilter.Default()
	}
	return &PipelineServiceImpl{
		cfg:       cfg,
		labels:    labels,
		images:    images,
		urls:      urls,
		newStore:  newStore,
		newLedger: newLedger,
		metrics:   m,
	}
}

// Plan computes the output root and tile count without touching the network.
func (s *PipelineServiceImpl) Plan(ctx context.Context, req primary.RunRequest) (*primary.RunPlan, error) {
	size := grid.SizeFor(req.WidthPx, req.HeightPx, req.Resolution)
	count, err := grid.Count(grid.Point{X: req.StartX, Y: req.StartY}, grid.Point{X: req.EndX, Y: req.EndY}, size)
	if err != nil {
		return nil, fmt.Errorf("failed to plan grid: %w", err)
	}

	store := s.newStore(req)
	existing, err := store.ExistingImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan existing images: %w", err)
	}

	return &primary.RunPlan{
		Root:      store.Root(),
		TileCount: count,
		TileW:     size.W,
		TileH:     size.H,
		Existing:  len(existing),
	}, nil
}

// Run acquires every tile of the requested extent. Tile failures are counted
// in the summary and never fail the run; only setup errors and cancellation
// are returned.
func (s *PipelineServiceImpl) Run(ctx context.Context, req primary.RunRequest) (*primary.RunSummary, error) {
	started := time.Now()
	boxes, err := grid.Generate(
		grid.Point{X: req.StartX, Y: req.StartY},
		grid.Point{X: req.EndX, Y: req.EndY},
		grid.SizeFor(req.WidthPx, req.HeightPx, req.Resolution),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate grid: %w", err)
	}

	store := s.newStore(req)
	if err := store.EnsureLayout(ctx); err != nil {
		return nil, fmt.Errorf("failed to create output layout: %w", err)
	}
	skip, err := store.ExistingImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan existing images: %w", err)
	}

	runID := ctxutil.RunIDFromContext(ctx)
	if runID == "" {
		runID = ctxutil.NewRunID()
		ctx = ctxutil.WithRunID(ctx, runID)
	}
	logger := logging.FromContext(ctx).WithValues("run", runID)
	ctx = logging.IntoContext(ctx, logger)
	logger.Info("starting run", "root", store.Root(), "tiles", len(boxes), "existing", len(skip))

	ledger, closeLedger := s.openLedger(ctx, store.Root())
	defer closeLedger()
	record := &secondary.RunRecord{
		ID:     runID,
		Root:   store.Root(),
		Params: paramsOf(req),
		Total:  len(boxes),
	}
	if ledger != nil {
		if err := ledger.StartRun(ctx, record); err != nil {
			logger.Error(err, "ledger unavailable, continuing without it")
			ledger = nil
		}
	}

	gates := NewGates(s.cfg.TileSlots, s.cfg.LabelPacing, s.metrics)
	coordinator := NewTileCoordinator(s.labels, s.images, s.urls, s.cfg.Filter, store, gates, req.WidthPx, req.HeightPx)

	summary := &primary.RunSummary{
		RunID:  runID,
		Root:   store.Root(),
		Total:  len(boxes),
		Counts: make(map[tile.Outcome]int, len(tile.Outcomes)),
	}
	if req.Progress != nil {
		req.Progress.Start(len(boxes))
	}

	results := make(chan primary.TileResult)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for r := range results {
			s.collect(ctx, summary, ledger, req.Progress, r)
		}
	}()

	var wg sync.WaitGroup
	launched := 0
	for _, bbox := range boxes {
		release, err := gates.AcquireTile(ctx)
		if err != nil {
			break
		}
		launched++
		wg.Add(1)
		go func(bbox tile.BoundingBox) {
			defer wg.Done()
			defer release()
			results <- coordinator.Process(ctx, bbox, skip)
		}(bbox)
	}
	for _, bbox := range boxes[launched:] {
		results <- primary.TileResult{Key: tile.KeyOf(bbox), Outcome: tile.OutcomeCanceled, Err: ctx.Err()}
	}
	wg.Wait()
	close(results)
	<-collected

	if req.Progress != nil {
		req.Progress.Finish()
	}
	summary.TilePeak = gates.TilePeak()
	summary.LabelPeak = gates.LabelPeak()
	summary.Elapsed = time.Since(started)

	if ledger != nil {
		record.Saved = summary.Count(tile.OutcomeSaved)
		record.Skipped = summary.Count(tile.OutcomeSkipped)
		record.Rejected = summary.Count(tile.OutcomeRejected)
		record.Failed = summary.Failed()
		// The run context may already be canceled; the ledger row still
		// needs its final counts.
		if err := ledger.FinishRun(context.WithoutCancel(ctx), record); err != nil {
			logger.Error(err, "failed to finish ledger run")
		}
	}

	logger.Info("run finished",
		"saved", summary.Count(tile.OutcomeSaved),
		"skipped", summary.Count(tile.OutcomeSkipped),
		"rejected", summary.Count(tile.OutcomeRejected),
		"failed", summary.Failed(),
		"elapsed", summary.Elapsed)

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("run interrupted: %w", err)
	}
	return summary, nil
}

// collect folds one result into the summary. It runs on a single goroutine.
func (s *PipelineServiceImpl) collect(ctx context.Context, summary *primary.RunSummary, ledger secondary.LedgerWriter, progress primary.ProgressReporter, r primary.TileResult) {
	summary.Counts[r.Outcome]++
	summary.ImageBytes += int64(r.ImageBytes)
	s.metrics.RecordTile(string(r.Outcome))
	s.metrics.RecordImageBytes(r.ImageBytes)

	if ledger != nil {
		event := &secondary.TileEventRecord{
			RunID:      summary.RunID,
			TileKey:    string(r.Key),
			Outcome:    string(r.Outcome),
			Ratio:      r.Ratio,
			DurationMS: r.Duration.Milliseconds(),
		}
		if r.Err != nil {
			event.Error = r.Err.Error()
		}
		if err := ledger.RecordTile(context.WithoutCancel(ctx), event); err != nil {
			logging.FromContext(ctx).Error(err, "failed to record tile event", "tile", string(r.Key))
		}
	}

	if progress != nil {
		progress.TileDone(r)
	}
}

func (s *PipelineServiceImpl) openLedger(ctx context.Context, root string) (secondary.LedgerWriter, func()) {
	if s.newLedger == nil {
		return nil, func() {}
	}
	ledger, closer, err := s.newLedger(root)
	if err != nil {
		logging.FromContext(ctx).Error(err, "failed to open ledger, continuing without it")
		return nil, func() {}
	}
	return ledger, func() {
		if closer == nil {
			return
		}
		if err := closer.Close(); err != nil {
			logging.FromContext(ctx).Error(err, "failed to close ledger")
		}
	}
}

func paramsOf(req primary.RunRequest) string {
	return fmt.Sprintf("start=%s,%s end=%s,%s size=%dx%d resolution=%s",
		tile.FormatCoord(req.StartX), tile.FormatCoord(req.StartY),
		tile.FormatCoord(req.EndX), tile.FormatCoord(req.EndY),
		req.WidthPx, req.HeightPx, tile.FormatCoord(req.Resolution))
}

// Ensure PipelineServiceImpl implements the interface
var _ primary.PipelineService = (*PipelineServiceImpl)(nil)

package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/example/tilegrab/internal/metrics"
)

// Default gate settings.
const (
	DefaultTileSlots   = 20
	DefaultLabelPacing = 10 * time.Millisecond
)

// Gates holds the two independent concurrency limits of a run: the tile gate
// bounds in-flight coordination units, the label gate serializes label
// fetches and paces them.
type Gates struct {
	tile   *semaphore.Weighted
	label  *semaphore.Weighted
	pacing time.Duration

	metrics *metrics.Metrics

	tileHeld  atomic.Int64
	tilePeak  atomic.Int64
	labelHeld atomic.Int64
	labelPeak atomic.Int64
}

// NewGates creates gates with tileSlots tile holders and a single label
// holder that waits pacing after each acquisition.
func NewGates(tileSlots int64, pacing time.Duration, m *metrics.Metrics) *Gates {
	if tileSlots <= 0 {
		tileSlots = DefaultTileSlots
	}
	if pacing < 0 {
		pacing = 0
	}
	return &Gates{
		tile:    semaphore.NewWeighted(tileSlots),
		label:   semaphore.NewWeighted(1),
		pacing:  pacing,
		metrics: m,
	}
}

// AcquireTile blocks until a tile slot is free or ctx is done. The returned
// release func is safe to call more than once.
func (g *Gates) AcquireTile(ctx context.Context) (func(), error) {
	start := time.Now()
	if err := g.tile.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	g.metrics.RecordGateWait(metrics.GateTile, time.Since(start))
	bumpPeak(&g.tilePeak, g.tileHeld.Add(1))

	var once sync.Once
	return func() {
		once.Do(func() {
			g.tileHeld.Add(-1)
			g.tile.Release(1)
		})
	}, nil
}

// WithLabelSlot runs fn while holding the label slot. The pacing delay is
// spent after acquisition, so consecutive label fetches start at least
// pacing apart. The slot is released whatever fn returns.
func (g *Gates) WithLabelSlot(ctx context.Context, fn func(ctx context.Context) error) error {
	start := time.Now()
	if err := g.label.Acquire(ctx, 1); err != nil {
		return err
	}
	g.metrics.RecordGateWait(metrics.GateLabel, time.Since(start))
	bumpPeak(&g.labelPeak, g.labelHeld.Add(1))
	defer func() {
		g.labelHeld.Add(-1)
		g.label.Release(1)
	}()

	if g.pacing > 0 {
		timer := time.NewTimer(g.pacing)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fn(ctx)
}

// TilePeak returns the highest number of tile slots held at once.
func (g *Gates) TilePeak() int64 { return g.tilePeak.Load() }

// LabelPeak returns the highest number of label slots held at once.
func (g *Gates) LabelPeak() int64 { return g.labelPeak.Load() }

func bumpPeak(peak *atomic.Int64, n int64) {
	for {
		cur := peak.Load()
		if n <= cur || peak.CompareAndSwap(cur, n) {
			return
		}
	}
}

package cli

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/example/tilegrab/internal/ports/primary"
)

// ProgressBar renders run progress as a terminal bar. It implements
// primary.ProgressReporter; TileDone is only called from one goroutine.
type ProgressBar struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewProgressBar creates a ProgressBar writing to out.
func NewProgressBar(out io.Writer) *ProgressBar {
	return &ProgressBar{out: out}
}

// Start sizes the bar for total tiles.
func (p *ProgressBar) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("tiles"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("tile"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(p.out, "\n") }),
	)
}

// TileDone advances the bar by one tile.
func (p *ProgressBar) TileDone(primary.TileResult) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

// Finish completes the bar.
func (p *ProgressBar) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// Ensure ProgressBar implements the interface
var _ primary.ProgressReporter = (*ProgressBar)(nil)

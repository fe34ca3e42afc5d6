package wire

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/tilegrab/internal/config"
)

func TestRunRoot(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = "out"

	got := RunRoot(cfg)
	want := filepath.Join("out", "272038_6656016_320189_6700359_0.1_1024_1024")
	if got != want {
		t.Errorf("RunRoot() = %q, want %q", got, want)
	}
}

func TestHTTPClient(t *testing.T) {
	cfg := config.Default()
	cfg.HTTPTimeout = 7 * time.Second

	c := HTTPClient(cfg)
	if c.Timeout != 7*time.Second {
		t.Errorf("Timeout = %v", c.Timeout)
	}
}

func TestPipelineService_PlanUsesConfiguredRoot(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Start = [2]float64{0, 0}
	cfg.End = [2]float64{4, 2}
	cfg.WidthPx, cfg.HeightPx, cfg.Resolution = 2, 2, 1

	plan, err := PipelineService(cfg, nil).Plan(context.Background(), RunRequest(cfg, nil))
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if plan.Root != RunRoot(cfg) || plan.TileCount != 3 {
		t.Errorf("unexpected plan: %+v", plan)
	}
}

func TestRunService_MissingLedger(t *testing.T) {
	_, _, err := RunService(t.TempDir())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

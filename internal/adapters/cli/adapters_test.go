package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/tilegrab/internal/core/tile"
	"github.com/example/tilegrab/internal/ports/primary"
)

// mockPipelineService implements primary.PipelineService for testing
type mockPipelineService struct {
	runFn  func(ctx context.Context, req primary.RunRequest) (*primary.RunSummary, error)
	planFn func(ctx context.Context, req primary.RunRequest) (*primary.RunPlan, error)
}

func (m *mockPipelineService) Run(ctx context.Context, req primary.RunRequest) (*primary.RunSummary, error) {
	return m.runFn(ctx, req)
}

func (m *mockPipelineService) Plan(ctx context.Context, req primary.RunRequest) (*primary.RunPlan, error) {
	return m.planFn(ctx, req)
}

// mockRunService implements primary.RunService for testing
type mockRunService struct {
	listRunsFn func(ctx context.Context, limit int) ([]*primary.Run, error)
	getRunFn   func(ctx context.Context, runID string) (*primary.Run, error)
}

func (m *mockRunService) ListRuns(ctx context.Context, limit int) ([]*primary.Run, error) {
	if m.listRunsFn != nil {
		return m.listRunsFn(ctx, limit)
	}
	return []*primary.Run{}, nil
}

func (m *mockRunService) GetRun(ctx context.Context, runID string) (*primary.Run, error) {
	return m.getRunFn(ctx, runID)
}

// mockConvertService implements primary.ConvertService for testing
type mockConvertService struct {
	lastReq primary.ConvertRequest
	summary *primary.ConvertSummary
	err     error
}

func (m *mockConvertService) Convert(ctx context.Context, req primary.ConvertRequest) (*primary.ConvertSummary, error) {
	m.lastReq = req
	return m.summary, m.err
}

func TestFetchAdapter_Plan(t *testing.T) {
	svc := &mockPipelineService{planFn: func(ctx context.Context, req primary.RunRequest) (*primary.RunPlan, error) {
		return &primary.RunPlan{Root: "data/0_0_4_2_1_2_2", TileCount: 12345, TileW: 2, TileH: 2, Existing: 3}, nil
	}}
	var out bytes.Buffer

	err := NewFetchAdapter(svc, &out).Plan(context.Background(), primary.RunRequest{WidthPx: 2, HeightPx: 2})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	for _, want := range []string{"data/0_0_4_2_1_2_2", "12,345", "2 x 2 ground units", "3 (will be skipped)"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestFetchAdapter_Run(t *testing.T) {
	summary := &primary.RunSummary{
		RunID: "run-1",
		Root:  "data/x",
		Total: 4,
		Counts: map[tile.Outcome]int{
			tile.OutcomeSaved:       2,
			tile.OutcomeRejected:    1,
			tile.OutcomeImageFailed: 1,
		},
		ImageBytes: 2048,
		Elapsed:    1500 * time.Millisecond,
	}
	svc := &mockPipelineService{runFn: func(ctx context.Context, req primary.RunRequest) (*primary.RunSummary, error) {
		return summary, nil
	}}
	var out bytes.Buffer

	if err := NewFetchAdapter(svc, &out).Run(context.Background(), primary.RunRequest{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"run-1", "saved", "rejected", "image_failed", "2.0 kB", "1 tiles failed"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "label_failed") {
		t.Errorf("zero outcomes should be omitted:\n%s", got)
	}
}

func TestFetchAdapter_RunInterruptedStillPrintsSummary(t *testing.T) {
	svc := &mockPipelineService{runFn: func(ctx context.Context, req primary.RunRequest) (*primary.RunSummary, error) {
		return &primary.RunSummary{RunID: "run-2", Counts: map[tile.Outcome]int{tile.OutcomeCanceled: 3}}, context.Canceled
	}}
	var out bytes.Buffer

	err := NewFetchAdapter(svc, &out).Run(context.Background(), primary.RunRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected canceled error, got %v", err)
	}
	if !strings.Contains(out.String(), "run-2") {
		t.Errorf("expected summary output, got:\n%s", out.String())
	}
}

func TestRunAdapter_List(t *testing.T) {
	svc := &mockRunService{listRunsFn: func(ctx context.Context, limit int) ([]*primary.Run, error) {
		if limit != 5 {
			t.Errorf("limit = %d, want 5", limit)
		}
		return []*primary.Run{{ID: "run-1", StartedAt: "2026-01-02 03:04:05", Total: 9, Saved: 4}}, nil
	}}
	var out bytes.Buffer

	if err := NewRunAdapter(svc, &out).List(context.Background(), 5); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !strings.Contains(out.String(), "run-1") || !strings.Contains(out.String(), "2026-01-02 03:04:05") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestRunAdapter_ListEmpty(t *testing.T) {
	var out bytes.Buffer
	if err := NewRunAdapter(&mockRunService{}, &out).List(context.Background(), 10); err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if !strings.Contains(out.String(), "No runs found") {
		t.Errorf("expected empty message, got %q", out.String())
	}
}

func TestRunAdapter_Show(t *testing.T) {
	svc := &mockRunService{getRunFn: func(ctx context.Context, runID string) (*primary.Run, error) {
		return &primary.Run{ID: runID, Root: "data/x", Total: 2, Outcomes: map[string]int{"saved": 1, "skipped": 1}}, nil
	}}
	var out bytes.Buffer

	run, err := NewRunAdapter(svc, &out).Show(context.Background(), "run-9")
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if run.ID != "run-9" {
		t.Errorf("run.ID = %q", run.ID)
	}
	got := out.String()
	if !strings.Contains(got, "interrupted or running") || !strings.Contains(got, "skipped") {
		t.Errorf("unexpected output:\n%s", got)
	}
}

func TestRunAdapter_ShowError(t *testing.T) {
	svc := &mockRunService{getRunFn: func(ctx context.Context, runID string) (*primary.Run, error) {
		return nil, errors.New("run not found")
	}}
	if _, err := NewRunAdapter(svc, &bytes.Buffer{}).Show(context.Background(), "nope"); err == nil {
		t.Error("expected error")
	}
}

func TestConvertAdapter_Convert(t *testing.T) {
	svc := &mockConvertService{summary: &primary.ConvertSummary{Masks: 3, Written: 2, Boxes: 7, MissingImages: 1}}
	var out bytes.Buffer

	if err := NewConvertAdapter(svc, &out).Convert(context.Background(), "data/x", 4); err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if svc.lastReq.Root != "data/x" || svc.lastReq.ClassID != 4 {
		t.Errorf("unexpected request: %+v", svc.lastReq)
	}
	if !strings.Contains(out.String(), "2 annotation files (7 boxes)") || !strings.Contains(out.String(), "1 masks had no paired image") {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestProgressBar(t *testing.T) {
	var out bytes.Buffer
	p := NewProgressBar(&out)
	p.TileDone(primary.TileResult{}) // before Start is a no-op
	p.Start(2)
	p.TileDone(primary.TileResult{Outcome: tile.OutcomeSaved})
	p.TileDone(primary.TileResult{Outcome: tile.OutcomeSkipped})
	p.Finish()

	if !strings.Contains(out.String(), "tiles") {
		t.Errorf("expected bar description in output, got %q", out.String())
	}
}

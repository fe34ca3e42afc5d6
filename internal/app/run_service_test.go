package app

import (
	"context"
	"errors"
	"testing"

	"github.com/example/tilegrab/internal/ports/secondary"
)

// mockRunRepository implements secondary.RunRepository for testing.
type mockRunRepository struct {
	runs     map[string]*secondary.RunRecord
	order    []string
	counts   map[string]map[string]int
	countErr error
}

func newMockRunRepository() *mockRunRepository {
	return &mockRunRepository{
		runs:   make(map[string]*secondary.RunRecord),
		counts: make(map[string]map[string]int),
	}
}

func (m *mockRunRepository) add(r *secondary.RunRecord) {
	m.runs[r.ID] = r
	m.order = append([]string{r.ID}, m.order...)
}

func (m *mockRunRepository) List(ctx context.Context, limit int) ([]*secondary.RunRecord, error) {
	var result []*secondary.RunRecord
	for _, id := range m.order {
		if limit > 0 && len(result) >= limit {
			break
		}
		result = append(result, m.runs[id])
	}
	return result, nil
}

func (m *mockRunRepository) GetByID(ctx context.Context, id string) (*secondary.RunRecord, error) {
	if r, ok := m.runs[id]; ok {
		return r, nil
	}
	return nil, errors.New("run not found")
}

func (m *mockRunRepository) OutcomeCounts(ctx context.Context, runID string) (map[string]int, error) {
	if m.countErr != nil {
		return nil, m.countErr
	}
	return m.counts[runID], nil
}

func TestListRuns(t *testing.T) {
	repo := newMockRunRepository()
	repo.add(&secondary.RunRecord{ID: "run-1", Total: 4, Saved: 2})
	repo.add(&secondary.RunRecord{ID: "run-2", Total: 4, Skipped: 4})
	svc := NewRunService(repo)

	runs, err := svc.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-2" || runs[0].Skipped != 4 {
		t.Errorf("expected newest run first, got %+v", runs[0])
	}

	runs, err = svc.ListRuns(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected limit to apply, got %d runs", len(runs))
	}
}

func TestGetRun(t *testing.T) {
	repo := newMockRunRepository()
	repo.add(&secondary.RunRecord{ID: "run-1", Root: "data/x", Total: 3, Saved: 1, Rejected: 1, Failed: 1})
	repo.counts["run-1"] = map[string]int{"saved": 1, "rejected": 1, "image_failed": 1}
	svc := NewRunService(repo)

	run, err := svc.GetRun(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Root != "data/x" || run.Total != 3 {
		t.Errorf("unexpected run: %+v", run)
	}
	if run.Outcomes["image_failed"] != 1 {
		t.Errorf("expected outcome counts, got %v", run.Outcomes)
	}
}

func TestGetRun_Errors(t *testing.T) {
	repo := newMockRunRepository()
	svc := NewRunService(repo)

	if _, err := svc.GetRun(context.Background(), "missing"); err == nil {
		t.Error("expected error for missing run")
	}

	repo.add(&secondary.RunRecord{ID: "run-1"})
	repo.countErr = errors.New("db closed")
	if _, err := svc.GetRun(context.Background(), "run-1"); err == nil {
		t.Error("expected error when counts fail")
	}
}

package app

import (
	"context"
	"fmt"

	"github.com/example/tilegrab/internal/ports/primary"
	"github.com/example/tilegrab/internal/ports/secondary"
)

// RunServiceImpl implements the RunService interface.
type RunServiceImpl struct {
	runRepo secondary.RunRepository
}

// NewRunService creates a new RunService with injected dependencies.
func NewRunService(runRepo secondary.RunRepository) *RunServiceImpl {
	return &RunServiceImpl{
		runRepo: runRepo,
	}
}

// ListRuns retrieves the most recent runs.
func (s *RunServiceImpl) ListRuns(ctx context.Context, limit int) ([]*primary.Run, error) {
	records, err := s.runRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	runs := make([]*primary.Run, len(records))
	for i, r := range records {
		runs[i] = s.recordToRun(r)
	}
	return runs, nil
}

// GetRun retrieves a single run with its per-outcome tile counts.
func (s *RunServiceImpl) GetRun(ctx context.Context, runID string) (*primary.Run, error) {
	record, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}

	counts, err := s.runRepo.OutcomeCounts(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tile outcomes: %w", err)
	}

	run := s.recordToRun(record)
	run.Outcomes = counts
	return run, nil
}

// Helper methods

func (s *RunServiceImpl) recordToRun(r *secondary.RunRecord) *primary.Run {
	return &primary.Run{
		ID:         r.ID,
		Root:       r.Root,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Total:      r.Total,
		Saved:      r.Saved,
		Skipped:    r.Skipped,
		Rejected:   r.Rejected,
		Failed:     r.Failed,
	}
}

// Ensure RunServiceImpl implements the interface
var _ primary.RunService = (*RunServiceImpl)(nil)

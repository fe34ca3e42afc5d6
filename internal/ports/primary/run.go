package primary

import "context"

// RunService defines the primary port for reading the run ledger.
type RunService interface {
	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)

	// GetRun retrieves a single run with its per-outcome tile counts.
	GetRun(ctx context.Context, runID string) (*Run, error)
}

// Run represents a ledger run at the port boundary.
type Run struct {
	ID         string
	Root       string
	StartedAt  string
	FinishedAt string
	Total      int
	Saved      int
	Skipped    int
	Rejected   int
	Failed     int
	Outcomes   map[string]int
}

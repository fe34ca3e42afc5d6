package secondary

import "context"

// LedgerWriter records run and tile outcomes as they happen.
type LedgerWriter interface {
	StartRun(ctx context.Context, run *RunRecord) error
	RecordTile(ctx context.Context, event *TileEventRecord) error
	FinishRun(ctx context.Context, run *RunRecord) error
}

// RunRepository reads back recorded runs.
type RunRepository interface {
	List(ctx context.Context, limit int) ([]*RunRecord, error)
	GetByID(ctx context.Context, id string) (*RunRecord, error)
	OutcomeCounts(ctx context.Context, runID string) (map[string]int, error)
}

// RunRecord is the persistence shape of a run.
type RunRecord struct {
	ID         string
	Root       string
	Params     string
	StartedAt  string
	FinishedAt string
	Total      int
	Saved      int
	Skipped    int
	Rejected   int
	Failed     int
}

// TileEventRecord is the persistence shape of one tile's terminal outcome.
type TileEventRecord struct {
	RunID      string
	TileKey    string
	Outcome    string
	Ratio      float64
	Error      string
	DurationMS int64
}

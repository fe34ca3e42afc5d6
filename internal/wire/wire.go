// Package wire provides dependency injection for tilegrab.
// Services depend on the loaded configuration, so each constructor takes it
// explicitly instead of relying on package-level singletons.
package wire

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	cliadapter "github.com/example/tilegrab/internal/adapters/cli"
	"github.com/example/tilegrab/internal/adapters/filesystem"
	"github.com/example/tilegrab/internal/adapters/sqlite"
	"github.com/example/tilegrab/internal/adapters/wms"
	"github.com/example/tilegrab/internal/app"
	"github.com/example/tilegrab/internal/config"
	"github.com/example/tilegrab/internal/core/labelfilter"
	"github.com/example/tilegrab/internal/db"
	"github.com/example/tilegrab/internal/metrics"
	"github.com/example/tilegrab/internal/ports/primary"
	"github.com/example/tilegrab/internal/ports/secondary"
)

// HTTPClient returns the transport shared by both WMS clients of a run.
func HTTPClient(cfg *config.Config) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = cfg.MaxConcurrent
	return &http.Client{
		Timeout:   cfg.HTTPTimeout,
		Transport: transport,
	}
}

// RunRoot returns the output directory for the configured extent.
func RunRoot(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, filesystem.RootName(
		cfg.Start[0], cfg.Start[1], cfg.End[0], cfg.End[1],
		cfg.Resolution, cfg.WidthPx, cfg.HeightPx))
}

// RunRequest translates cfg into a pipeline request.
func RunRequest(cfg *config.Config, progress primary.ProgressReporter) primary.RunRequest {
	return primary.RunRequest{
		StartX:     cfg.Start[0],
		StartY:     cfg.Start[1],
		EndX:       cfg.End[0],
		EndY:       cfg.End[1],
		WidthPx:    cfg.WidthPx,
		HeightPx:   cfg.HeightPx,
		Resolution: cfg.Resolution,
		Progress:   progress,
	}
}

// PipelineService builds the acquisition pipeline for cfg. A nil m disables metrics.
func PipelineService(cfg *config.Config, m *metrics.Metrics) primary.PipelineService {
	httpClient := HTTPClient(cfg)
	labels := wms.NewClient(httpClient, wms.ClientConfig{
		Service:     metrics.ServiceLabel,
		MaxAttempts: cfg.MaxAttempts,
		RetryDelay:  cfg.RetryDelay,
	}, m)
	images := wms.NewClient(httpClient, wms.ClientConfig{
		Service:     metrics.ServiceImage,
		MaxAttempts: cfg.MaxAttempts,
		RetryDelay:  cfg.RetryDelay,
	}, m)
	urls := wms.Requests{
		Label:  wms.Endpoint{BaseURL: cfg.LabelURL, Layers: cfg.LabelLayers},
		Image:  wms.Endpoint{BaseURL: cfg.ImageURL, Layers: cfg.ImageLayers},
		Format: cfg.Format,
		CRS:    cfg.CRS,
	}

	var newLedger app.LedgerFactory
	if cfg.Ledger {
		newLedger = openLedger
	}

	return app.NewPipelineService(
		app.PipelineConfig{
			TileSlots:   int64(cfg.MaxConcurrent),
			LabelPacing: cfg.LabelDelay,
			Filter: labelfilter.Filter{
				Threshold:  cfg.LabelThreshold,
				Background: labelfilter.DefaultBackground,
			},
		},
		labels, images, urls,
		func(primary.RunRequest) secondary.TileStore { return filesystem.NewTileStore(RunRoot(cfg)) },
		newLedger,
		m,
	)
}

func openLedger(root string) (secondary.LedgerWriter, io.Closer, error) {
	database, err := db.Open(db.PathFor(root))
	if err != nil {
		return nil, nil, err
	}
	return sqlite.NewLedgerRepository(database), database, nil
}

// ConvertService builds the mask-to-annotation converter.
func ConvertService() primary.ConvertService {
	return app.NewConvertService(func(root string) secondary.MaskSource {
		return filesystem.NewTileStore(root)
	})
}

// RunService opens the ledger under root. The returned closer releases the database.
func RunService(root string) (primary.RunService, io.Closer, error) {
	if _, err := os.Stat(db.PathFor(root)); err != nil {
		return nil, nil, err
	}
	database, err := db.Open(db.PathFor(root))
	if err != nil {
		return nil, nil, err
	}
	return app.NewRunService(sqlite.NewLedgerRepository(database)), database, nil
}

// FetchAdapter returns a new FetchAdapter writing to stdout.
func FetchAdapter(cfg *config.Config, m *metrics.Metrics) *cliadapter.FetchAdapter {
	return FetchAdapterWithOutput(cfg, m, os.Stdout)
}

// FetchAdapterWithOutput returns a new FetchAdapter writing to the given output.
func FetchAdapterWithOutput(cfg *config.Config, m *metrics.Metrics, out io.Writer) *cliadapter.FetchAdapter {
	return cliadapter.NewFetchAdapter(PipelineService(cfg, m), out)
}

// ConvertAdapter returns a new ConvertAdapter writing to stdout.
func ConvertAdapter() *cliadapter.ConvertAdapter {
	return cliadapter.NewConvertAdapter(ConvertService(), os.Stdout)
}

// RunAdapter returns a new RunAdapter for the ledger under root, writing to stdout.
func RunAdapter(root string) (*cliadapter.RunAdapter, io.Closer, error) {
	svc, closer, err := RunService(root)
	if err != nil {
		return nil, nil, err
	}
	return cliadapter.NewRunAdapter(svc, os.Stdout), closer, nil
}

// ProgressBar returns a progress reporter drawing on stderr.
func ProgressBar() primary.ProgressReporter {
	return cliadapter.NewProgressBar(os.Stderr)
}

// Package metrics exposes Prometheus instrumentation for tile acquisition.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tilegrab"

// Service labels.
const (
	ServiceLabel = "label"
	ServiceImage = "image"
)

// Gate labels.
const (
	GateTile  = "tile"
	GateLabel = "label"
)

// Metrics holds the collectors for one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	fetchAttempts *prometheus.CounterVec
	tiles         *prometheus.CounterVec
	gateWait      *prometheus.HistogramVec
	imageBytes    prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_attempts_total",
				Help:      "Count of WMS fetch attempts by service and outcome.",
			},
			[]string{"service", "outcome"},
		),
		tiles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tiles_total",
				Help:      "Count of tiles by terminal outcome.",
			},
			[]string{"outcome"},
		),
		gateWait: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "gate_wait_seconds",
				Help:      "Time spent waiting to acquire a concurrency gate.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"gate"},
		),
		imageBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "image_bytes_total",
				Help:      "Bytes of imagery written to disk.",
			},
		),
	}
	m.registry.MustRegister(m.fetchAttempts, m.tiles, m.gateWait, m.imageBytes)
	return m
}

// Registry returns the registry holding tilegrab's collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordFetchAttempt counts one fetch attempt.
func (m *Metrics) RecordFetchAttempt(service, outcome string) {
	if m == nil {
		return
	}
	m.fetchAttempts.WithLabelValues(service, outcome).Inc()
}

// RecordTile counts one terminal tile outcome.
func (m *Metrics) RecordTile(outcome string) {
	if m == nil {
		return
	}
	m.tiles.WithLabelValues(outcome).Inc()
}

// RecordGateWait observes how long a gate acquisition blocked.
func (m *Metrics) RecordGateWait(gate string, d time.Duration) {
	if m == nil {
		return
	}
	m.gateWait.WithLabelValues(gate).Observe(d.Seconds())
}

// RecordImageBytes adds n bytes of persisted imagery.
func (m *Metrics) RecordImageBytes(n int) {
	if m == nil {
		return
	}
	m.imageBytes.Add(float64(n))
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, logger logr.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(err, "metrics server stopped")
		}
	}()
}

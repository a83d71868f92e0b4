// Package metrics records export counters in a private Prometheus registry
// and writes them as a node-exporter textfile after batch runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements the exporter's metrics sink.
type Recorder struct {
	registry *prometheus.Registry

	frames   prometheus.Counter
	surfaces *prometheus.CounterVec
	warnings *prometheus.CounterVec
	errors   *prometheus.CounterVec
	dropped  prometheus.Counter
	duration prometheus.Histogram
}

// New returns a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		registry: reg,
		frames: f.NewCounter(prometheus.CounterOpts{
			Name: "envi_frames_exported_total",
			Help: "Total number of frames written",
		}),
		surfaces: f.NewCounterVec(prometheus.CounterOpts{
			Name: "envi_surfaces_emitted_total",
			Help: "Total number of surface records written",
		}, []string{"kind"}),
		warnings: f.NewCounterVec(prometheus.CounterOpts{
			Name: "envi_warnings_total",
			Help: "Total number of non-fatal export findings",
		}, []string{"kind"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "envi_export_errors_total",
			Help: "Total number of validation errors that aborted a frame",
		}, []string{"kind"}),
		dropped: f.NewCounter(prometheus.CounterOpts{
			Name: "envi_links_dropped_total",
			Help: "Total number of network links dropped on rebuild",
		}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "envi_export_duration_seconds",
			Help:    "Time taken to export one frame",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
	}
}

// Registry returns the registry holding the counters.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

func (r *Recorder) FrameExported(d time.Duration) {
	r.frames.Inc()
	r.duration.Observe(d.Seconds())
}

func (r *Recorder) SurfaceEmitted(kind string) { r.surfaces.WithLabelValues(kind).Inc() }
func (r *Recorder) Warning(kind string)        { r.warnings.WithLabelValues(kind).Inc() }
func (r *Recorder) ExportError(kind string)    { r.errors.WithLabelValues(kind).Inc() }

func (r *Recorder) LinksDropped(n int) {
	if n > 0 {
		r.dropped.Add(float64(n))
	}
}

// WriteTextfile writes every counter to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}

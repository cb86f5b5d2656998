package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the per-run Prometheus collectors. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	reg *prometheus.Registry

	files       *prometheus.CounterVec
	conversions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics registers the run's collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		files: f.NewCounterVec(prometheus.CounterOpts{
			Name: "videoconverter_files_total",
			Help: "Source files processed by result",
		}, []string{"result"}), // result=converted|ignored|failed
		conversions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "videoconverter_conversions_total",
			Help: "Per-format conversions by result",
		}, []string{"format", "result"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "videoconverter_conversion_duration_seconds",
			Help:    "Wall time of a single ffmpeg transcode",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"format"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) observeFile(res FileResult) {
	if m == nil {
		return
	}
	result := "converted"
	switch {
	case res.Ignored:
		result = "ignored"
	case res.Failed():
		result = "failed"
	}
	m.files.WithLabelValues(result).Inc()
}

func (m *Metrics) observeConversion(fr FormatResult) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(string(fr.Format), string(fr.Outcome)).Inc()
	if fr.Outcome == OutcomeConverted {
		m.duration.WithLabelValues(string(fr.Format)).Observe(fr.Duration.Seconds())
	}
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}

// Package metrics exposes Prometheus metrics for the detection
// pipeline.
package metrics

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionMetrics contains all Prometheus metrics for the detection
// session.
type SessionMetrics struct {
	// Inference
	InferenceDuration prometheus.Histogram
	InferenceTotal    *prometheus.CounterVec

	// Pipeline outcomes
	DetectionsTotal    *prometheus.CounterVec
	AnnouncementsTotal *prometheus.CounterVec
	CaptureErrors      prometheus.Counter

	// Current state
	ThresholdGauge prometheus.Gauge
	FPSGauge       prometheus.Gauge
	RunningGauge   prometheus.Gauge

	registry *prometheus.Registry
}

// New creates the session metrics on a fresh registry.
func New() (*SessionMetrics, error) {
	registry := prometheus.NewRegistry()
	m := &SessionMetrics{registry: registry}
	m.initMetrics()

	collectors := []prometheus.Collector{
		m.InferenceDuration,
		m.InferenceTotal,
		m.DetectionsTotal,
		m.AnnouncementsTotal,
		m.CaptureErrors,
		m.ThresholdGauge,
		m.FPSGauge,
		m.RunningGauge,
	}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}
	return m, nil
}

func (m *SessionMetrics) initMetrics() {
	m.InferenceDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "borlacam_inference_duration_seconds",
			Help:    "Time taken for one detection-service round trip.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~10s
		},
	)
	m.InferenceTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "borlacam_inference_total",
			Help: "Total inference requests partitioned by outcome.",
		},
		[]string{"status"},
	)
	m.DetectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "borlacam_detections_total",
			Help: "Total raw detections partitioned by waste category.",
		},
		[]string{"category"},
	)
	m.AnnouncementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "borlacam_announcements_total",
			Help: "Announcement attempts partitioned by outcome.",
		},
		[]string{"outcome"},
	)
	m.CaptureErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "borlacam_capture_errors_total",
			Help: "Total webcam capture failures.",
		},
	)
	m.ThresholdGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "borlacam_confidence_threshold",
			Help: "Current adaptive confidence threshold.",
		},
	)
	m.FPSGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "borlacam_loop_fps",
			Help: "Measured detection loop tick rate.",
		},
	)
	m.RunningGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "borlacam_session_running",
			Help: "1 while the detection session is active.",
		},
	)
}

// Handler serves the metrics endpoint for this registry.
func (m *SessionMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

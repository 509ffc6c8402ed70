package metrics

import (
	"context"
	"time"

	"github.com/borlacam/go-borlacam/pkg/detect"
	"github.com/borlacam/go-borlacam/pkg/inference"
	"github.com/borlacam/go-borlacam/pkg/session"
)

// InstrumentedDetector wraps a detector with timing and outcome
// counters.
type InstrumentedDetector struct {
	next    session.Detector
	metrics *SessionMetrics
}

// InstrumentDetector decorates a detector so every call feeds the
// inference metrics.
func InstrumentDetector(next session.Detector, m *SessionMetrics) *InstrumentedDetector {
	return &InstrumentedDetector{next: next, metrics: m}
}

// Detect forwards to the wrapped detector, recording duration, outcome
// and per-category detection counts.
func (d *InstrumentedDetector) Detect(ctx context.Context, frame []byte, confidence float64) (detect.Batch, error) {
	start := time.Now()
	batch, err := d.next.Detect(ctx, frame, confidence)
	d.metrics.InferenceDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		d.metrics.InferenceTotal.WithLabelValues(inference.Kind(err)).Inc()
		return batch, err
	}

	d.metrics.InferenceTotal.WithLabelValues("ok").Inc()
	for _, det := range batch.Detections {
		d.metrics.DetectionsTotal.WithLabelValues(detect.CategoryFor(det.Label)).Inc()
	}
	return batch, nil
}

// InstrumentedSink wraps a state sink, mirroring session state into
// gauges.
type InstrumentedSink struct {
	next    session.StateSink
	metrics *SessionMetrics
}

// InstrumentSink decorates a state sink with gauge updates.
func InstrumentSink(next session.StateSink, m *SessionMetrics) *InstrumentedSink {
	return &InstrumentedSink{next: next, metrics: m}
}

func (s *InstrumentedSink) SetRunning(running bool) {
	v := 0.0
	if running {
		v = 1
	}
	s.metrics.RunningGauge.Set(v)
	s.next.SetRunning(running)
}

func (s *InstrumentedSink) SetFPS(fps float64) {
	s.metrics.FPSGauge.Set(fps)
	s.next.SetFPS(fps)
}

func (s *InstrumentedSink) SetThreshold(v float64) {
	s.metrics.ThresholdGauge.Set(v)
	s.next.SetThreshold(v)
}

func (s *InstrumentedSink) SetPredictions(dets []detect.Detection) {
	s.next.SetPredictions(dets)
}

func (s *InstrumentedSink) SetServiceStatus(kind string) {
	if kind == session.StatusCaptureFailed {
		s.metrics.CaptureErrors.Inc()
	}
	s.next.SetServiceStatus(kind)
}

func (s *InstrumentedSink) ClearServiceStatus() {
	s.next.ClearServiceStatus()
}

func (s *InstrumentedSink) CommitHistory(d detect.Detection) {
	s.next.CommitHistory(d)
}

// InstrumentedAnnouncer wraps an announcer with outcome counters.
type InstrumentedAnnouncer struct {
	next    session.Announcer
	metrics *SessionMetrics
}

// InstrumentAnnouncer decorates an announcer with outcome counters.
func InstrumentAnnouncer(next session.Announcer, m *SessionMetrics) *InstrumentedAnnouncer {
	return &InstrumentedAnnouncer{next: next, metrics: m}
}

// Announce forwards to the wrapped announcer and counts the outcome.
func (a *InstrumentedAnnouncer) Announce(d detect.Detection) bool {
	accepted := a.next.Announce(d)
	outcome := "suppressed"
	if accepted {
		outcome = "spoken"
	}
	a.metrics.AnnouncementsTotal.WithLabelValues(outcome).Inc()
	return accepted
}

// Interface guards.
var (
	_ session.Detector  = (*InstrumentedDetector)(nil)
	_ session.StateSink = (*InstrumentedSink)(nil)
	_ session.Announcer = (*InstrumentedAnnouncer)(nil)
)

package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/borlacam/go-borlacam/pkg/detect"
	"github.com/borlacam/go-borlacam/pkg/inference"
)

type stubDetector struct {
	batch detect.Batch
	err   error
}

func (s *stubDetector) Detect(ctx context.Context, frame []byte, confidence float64) (detect.Batch, error) {
	return s.batch, s.err
}

type stubAnnouncer struct {
	accept bool
}

func (s *stubAnnouncer) Announce(d detect.Detection) bool { return s.accept }

func TestInstrumentedDetector_CountsOutcomes(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ok := InstrumentDetector(&stubDetector{batch: detect.Batch{Detections: []detect.Detection{
		{Label: "bottle", Score: 0.8},
		{Label: "banana", Score: 0.7},
	}}}, m)
	if _, err := ok.Detect(context.Background(), []byte("jpeg"), 0.25); err != nil {
		t.Fatalf("Detect: %v", err)
	}

	failing := InstrumentDetector(&stubDetector{err: &inference.ConnectionError{Err: context.DeadlineExceeded}}, m)
	if _, err := failing.Detect(context.Background(), []byte("jpeg"), 0.25); err == nil {
		t.Fatal("expected error from failing detector")
	}

	if got := testutil.ToFloat64(m.InferenceTotal.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.InferenceTotal.WithLabelValues(inference.KindUnreachable)); got != 1 {
		t.Errorf("unreachable count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DetectionsTotal.WithLabelValues(detect.CategoryPlastic)); got != 1 {
		t.Errorf("plastic count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.DetectionsTotal.WithLabelValues(detect.CategoryOrganic)); got != 1 {
		t.Errorf("organic count = %v, want 1", got)
	}
}

func TestInstrumentedAnnouncer_CountsOutcomes(t *testing.T) {
	m, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	spoken := InstrumentAnnouncer(&stubAnnouncer{accept: true}, m)
	suppressed := InstrumentAnnouncer(&stubAnnouncer{accept: false}, m)

	spoken.Announce(detect.Detection{Label: "bottle"})
	suppressed.Announce(detect.Detection{Label: "bottle"})
	suppressed.Announce(detect.Detection{Label: "bottle"})

	if got := testutil.ToFloat64(m.AnnouncementsTotal.WithLabelValues("spoken")); got != 1 {
		t.Errorf("spoken count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.AnnouncementsTotal.WithLabelValues("suppressed")); got != 2 {
		t.Errorf("suppressed count = %v, want 2", got)
	}
}

package session

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/borlacam/go-borlacam/pkg/detect"
)

func det(label string) *detect.Detection {
	return &detect.Detection{Label: label, Score: 0.8}
}

// newTestSmoother returns a smoother with the grace period already
// elapsed, driven by a mock clock.
func newTestSmoother(cfg Config) (*Smoother, *clock.Mock) {
	clk := clock.NewMock()
	s := NewSmoother(cfg, clk)
	clk.Add(cfg.StartupGrace + time.Millisecond)
	return s, clk
}

func TestSmoother_ConsistencyTwoOfThree(t *testing.T) {
	s, _ := newTestSmoother(DefaultConfig())

	// Cycle 1-3: organic, organic, recyclable
	s.Observe(det("organic"))
	s.Observe(det("organic"))
	s.Observe(det("recyclable"))

	if !s.Consistent("organic") {
		t.Error("organic should be consistent with 2 of last 3")
	}
	if s.Consistent("recyclable") {
		t.Error("recyclable should not be consistent with 1 of last 3")
	}

	// Cycle 4: organic. Window is now [organic, recyclable, organic].
	s.Observe(det("organic"))
	if !s.Consistent("organic") {
		t.Error("organic should remain consistent (count 2)")
	}
	if s.Consistent("recyclable") {
		t.Error("recyclable should not be consistent (count 1)")
	}
}

func TestSmoother_StartupGraceForcesNegative(t *testing.T) {
	cfg := DefaultConfig()
	clk := clock.NewMock()
	s := NewSmoother(cfg, clk)

	s.Observe(det("organic"))
	s.Observe(det("organic"))
	s.Observe(det("organic"))

	if s.Consistent("organic") {
		t.Error("nothing may be consistent during the startup grace period")
	}
	if !s.InGrace() {
		t.Error("expected grace period to be active")
	}

	clk.Add(cfg.StartupGrace + time.Millisecond)
	if !s.Consistent("organic") {
		t.Error("organic should be consistent after grace elapses")
	}
	if s.InGrace() {
		t.Error("expected grace period to be over")
	}
}

func TestSmoother_EmptyCyclesDiluteConsistency(t *testing.T) {
	s, _ := newTestSmoother(DefaultConfig())

	s.Observe(det("organic"))
	s.Observe(det("organic"))
	if !s.Consistent("organic") {
		t.Fatal("organic should be consistent")
	}

	// Two empty cycles push organic out of the window majority.
	s.Observe(nil)
	s.Observe(nil)
	if s.Consistent("organic") {
		t.Error("organic should no longer be consistent after empty cycles")
	}

	// The sentinel itself must never be consistent.
	s.Observe(nil)
	if s.Consistent(LabelNone) {
		t.Error("the none sentinel must never be consistent")
	}
}

func TestSmoother_WindowEviction(t *testing.T) {
	cfg := DefaultConfig() // window size 3
	s, _ := newTestSmoother(cfg)

	for i := 0; i < 10; i++ {
		s.Observe(det("organic"))
	}
	if n := len(s.Window()); n != cfg.WindowSize {
		t.Errorf("expected window capped at %d, got %d", cfg.WindowSize, n)
	}
}

func TestSmoother_ResetRearmsGrace(t *testing.T) {
	cfg := DefaultConfig()
	s, clk := newTestSmoother(cfg)

	s.Observe(det("organic"))
	s.Observe(det("organic"))
	if !s.Consistent("organic") {
		t.Fatal("organic should be consistent")
	}

	s.Reset()
	if len(s.Window()) != 0 {
		t.Error("expected empty window after reset")
	}
	s.Observe(det("organic"))
	s.Observe(det("organic"))
	if s.Consistent("organic") {
		t.Error("grace must be re-armed after reset")
	}

	clk.Add(cfg.StartupGrace + time.Millisecond)
	if !s.Consistent("organic") {
		t.Error("organic should be consistent after re-armed grace elapses")
	}
}

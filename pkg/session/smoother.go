package session

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/borlacam/go-borlacam/pkg/detect"
)

// LabelNone is the sentinel window entry for a cycle that produced no
// threshold-clearing detection. Recording absence keeps a stale label
// from staying "consistent" while nothing is in front of the camera.
const LabelNone = "none"

// Smoother decides whether the latest detection is stable enough to act
// on. It keeps a bounded window of per-cycle top detections and
// confirms a label only when it appears in at least K of the last M
// entries. During the startup grace period every verdict is negative to
// suppress phantom first-frame artifacts.
type Smoother struct {
	window []detect.Detection
	size   int
	min    int

	clk        clock.Clock
	grace      time.Duration
	graceUntil time.Time
}

// NewSmoother creates a smoother from the session config.
func NewSmoother(cfg Config, clk clock.Clock) *Smoother {
	s := &Smoother{
		size:  cfg.WindowSize,
		min:   cfg.ConsistencyMin,
		clk:   clk,
		grace: cfg.StartupGrace,
	}
	s.Reset()
	return s
}

// Reset clears the window and re-arms the startup grace period.
// Called when a detection session starts.
func (s *Smoother) Reset() {
	s.window = s.window[:0]
	s.graceUntil = s.clk.Now().Add(s.grace)
}

// Observe appends the cycle's top detection to the window, or a
// sentinel "none" entry when the cycle produced nothing.
func (s *Smoother) Observe(top *detect.Detection) {
	entry := detect.Detection{Label: LabelNone}
	if top != nil {
		entry = *top
	}
	s.window = append(s.window, entry)
	if len(s.window) > s.size {
		s.window = s.window[1:]
	}
}

// Consistent reports whether the label occurs in at least K of the
// window entries. The sentinel label is never consistent, and nothing
// is consistent before the startup grace deadline.
func (s *Smoother) Consistent(label string) bool {
	if label == LabelNone || label == "" {
		return false
	}
	if s.clk.Now().Before(s.graceUntil) {
		return false
	}

	count := 0
	for _, d := range s.window {
		if d.Label == label {
			count++
		}
	}
	return count >= s.min
}

// InGrace reports whether the startup grace period is still active.
func (s *Smoother) InGrace() bool {
	return s.clk.Now().Before(s.graceUntil)
}

// Window returns a copy of the current window, oldest first.
func (s *Smoother) Window() []detect.Detection {
	out := make([]detect.Detection, len(s.window))
	copy(out, s.window)
	return out
}

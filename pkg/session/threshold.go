package session

import "github.com/borlacam/go-borlacam/pkg/detect"

// recentAveragesMax bounds the per-cycle mean-confidence queue.
const recentAveragesMax = 10

// AdaptiveThreshold maintains the confidence cutoff used to filter
// detections. It hill-climbs: any strong detection raises the bar to
// suppress noise, a persistently quiet scene lowers it gradually.
// The value never leaves [min, max].
type AdaptiveThreshold struct {
	value float64
	min   float64
	max   float64

	stepUp         float64
	stepDown       float64
	highConfidence float64
	lowCutoff      float64

	recent []float64
}

// NewAdaptiveThreshold creates a threshold from the session config.
func NewAdaptiveThreshold(cfg Config) *AdaptiveThreshold {
	return &AdaptiveThreshold{
		value:          clampf(cfg.ThresholdStart, cfg.ThresholdMin, cfg.ThresholdMax),
		min:            cfg.ThresholdMin,
		max:            cfg.ThresholdMax,
		stepUp:         cfg.StepUp,
		stepDown:       cfg.StepDown,
		highConfidence: cfg.HighConfidence,
		lowCutoff:      cfg.LowCutoff,
	}
}

// Value returns the current confidence cutoff.
func (a *AdaptiveThreshold) Value() float64 {
	return a.value
}

// Set overrides the cutoff (manual nudge from the dashboard), clamped
// to the policy bounds.
func (a *AdaptiveThreshold) Set(v float64) {
	a.value = clampf(v, a.min, a.max)
}

// Observe applies the update rule once for the cycle's whole batch.
// Must run before the batch is filtered, so "cleared the current
// threshold" refers to the pre-update value.
func (a *AdaptiveThreshold) Observe(batch detect.Batch) {
	mean := batch.MeanScore()
	cleared := batch.Top(a.value) != nil

	a.recent = append(a.recent, mean)
	if len(a.recent) > recentAveragesMax {
		a.recent = a.recent[1:]
	}

	switch {
	case batch.CountAbove(a.highConfidence) > 0:
		a.value = clampf(a.value+a.stepUp, a.min, a.max)
	case mean < a.lowCutoff && !cleared:
		a.value = clampf(a.value-a.stepDown, a.min, a.max)
	}
}

// RecentAverages returns a copy of the recent mean-confidence queue.
func (a *AdaptiveThreshold) RecentAverages() []float64 {
	out := make([]float64, len(a.recent))
	copy(out, a.recent)
	return out
}

// clampf limits a value to a range.
func clampf(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

package session

import "time"

// Config holds all tunable parameters for a detection session.
// The near-duplicate panel variants of the original frontend collapse
// into presets of this one structure.
type Config struct {
	// Timing
	TickInterval time.Duration // render-cadence tick driving the loop
	Interval     time.Duration // how often to fire an inference cycle

	// Temporal smoothing
	WindowSize     int // M: entries kept in the consistency window
	ConsistencyMin int // K: occurrences among the last M to confirm a label

	// Announcements
	Cooldown     time.Duration // minimum gap between spoken announcements
	StartupGrace time.Duration // suppress actions right after session start

	// Adaptive threshold policy
	ThresholdStart float64
	ThresholdMin   float64
	ThresholdMax   float64
	StepUp         float64 // raise per cycle when a strong detection appears
	StepDown       float64 // lower per cycle when the scene stays quiet
	HighConfidence float64 // score counted as a strong detection
	LowCutoff      float64 // mean confidence below which the bar drops
}

// DefaultConfig returns the recommended configuration for responsive
// detection ("fast" cadence).
func DefaultConfig() Config {
	return Config{
		// Timing - inference every 400ms on a ~30/s tick
		TickInterval: 33 * time.Millisecond,
		Interval:     400 * time.Millisecond,

		// Smoothing - confirm a label seen 2 of the last 3 cycles
		WindowSize:     3,
		ConsistencyMin: 2,

		// Announcements
		Cooldown:     3 * time.Second,
		StartupGrace: 2 * time.Second,

		// Threshold policy - biased toward silence over false positives
		ThresholdStart: 0.25,
		ThresholdMin:   0.1,
		ThresholdMax:   0.9,
		StepUp:         0.02,
		StepDown:       0.01,
		HighConfidence: 0.7,
		LowCutoff:      0.3,
	}
}

// PacedConfig returns a configuration for slow, deliberate scanning:
// one inference every 5 seconds with a longer consistency window.
func PacedConfig() Config {
	cfg := DefaultConfig()
	cfg.Interval = 5 * time.Second
	cfg.WindowSize = 5
	cfg.ConsistencyMin = 3
	cfg.ThresholdMin = 0.15
	return cfg
}

// PrecisionConfig returns a configuration that only ever acts on very
// confident detections.
func PrecisionConfig() Config {
	cfg := DefaultConfig()
	cfg.WindowSize = 10
	cfg.ConsistencyMin = 6
	cfg.ThresholdStart = 0.6
	cfg.ThresholdMin = 0.6
	return cfg
}

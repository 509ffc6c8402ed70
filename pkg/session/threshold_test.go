package session

import (
	"math"
	"testing"

	"github.com/borlacam/go-borlacam/pkg/detect"
)

func batchOf(scores ...float64) detect.Batch {
	b := detect.Batch{}
	for _, s := range scores {
		b.Detections = append(b.Detections, detect.Detection{Label: "organic", Score: s})
	}
	return b
}

func TestAdaptiveThreshold_StepUpOnStrongDetection(t *testing.T) {
	cfg := DefaultConfig()
	a := NewAdaptiveThreshold(cfg)
	start := a.Value()

	a.Observe(batchOf(0.85))

	want := start + cfg.StepUp
	if math.Abs(a.Value()-want) > 1e-9 {
		t.Errorf("expected %v after strong detection, got %v", want, a.Value())
	}
}

func TestAdaptiveThreshold_StepDownOnQuietScene(t *testing.T) {
	cfg := DefaultConfig()
	a := NewAdaptiveThreshold(cfg)
	start := a.Value()

	// Empty batch: mean 0 < lowCutoff, nothing cleared the threshold.
	a.Observe(detect.Batch{})

	want := start - cfg.StepDown
	if math.Abs(a.Value()-want) > 1e-9 {
		t.Errorf("expected %v after empty batch, got %v", want, a.Value())
	}
}

func TestAdaptiveThreshold_UnchangedInMiddleGround(t *testing.T) {
	cfg := DefaultConfig()
	a := NewAdaptiveThreshold(cfg)
	start := a.Value()

	// Mean above lowCutoff, nothing above highConfidence.
	a.Observe(batchOf(0.5, 0.4))

	if a.Value() != start {
		t.Errorf("expected threshold unchanged, got %v (start %v)", a.Value(), start)
	}
}

func TestAdaptiveThreshold_NoDecreaseWhenSomethingCleared(t *testing.T) {
	cfg := DefaultConfig()
	a := NewAdaptiveThreshold(cfg)
	start := a.Value() // 0.25

	// Mean below lowCutoff but one detection cleared the current
	// threshold, so the bar must not drop.
	a.Observe(batchOf(0.26, 0.05, 0.05))

	if a.Value() != start {
		t.Errorf("expected threshold unchanged, got %v (start %v)", a.Value(), start)
	}
}

func TestAdaptiveThreshold_DecaysToFloorAndStays(t *testing.T) {
	cfg := DefaultConfig()
	a := NewAdaptiveThreshold(cfg)

	// Scenario: nothing clears the threshold and mean confidence stays
	// below the cutoff for many cycles. Value steps down each cycle
	// until the floor, then holds.
	prev := a.Value()
	for i := 0; i < 50; i++ {
		a.Observe(detect.Batch{})
		v := a.Value()
		if v < cfg.ThresholdMin-1e-9 {
			t.Fatalf("cycle %d: value %v fell below floor %v", i, v, cfg.ThresholdMin)
		}
		if prev > cfg.ThresholdMin && math.Abs(prev-v-cfg.StepDown) > 1e-9 && math.Abs(v-cfg.ThresholdMin) > 1e-9 {
			t.Fatalf("cycle %d: expected stepDown from %v, got %v", i, prev, v)
		}
		prev = v
	}
	if math.Abs(a.Value()-cfg.ThresholdMin) > 1e-9 {
		t.Errorf("expected value pinned to floor %v, got %v", cfg.ThresholdMin, a.Value())
	}
}

func TestAdaptiveThreshold_BoundsInvariant(t *testing.T) {
	cfg := DefaultConfig()
	a := NewAdaptiveThreshold(cfg)

	// Mixed adversarial sequence: the value must never leave the bounds.
	sequences := []detect.Batch{
		batchOf(0.99), batchOf(0.99), batchOf(0.99), batchOf(0.99),
		{}, {}, {},
		batchOf(0.75, 0.8, 0.95),
		batchOf(0.01), {}, batchOf(1.0),
	}
	for i := 0; i < 100; i++ {
		a.Observe(sequences[i%len(sequences)])
		if v := a.Value(); v < cfg.ThresholdMin || v > cfg.ThresholdMax {
			t.Fatalf("iteration %d: value %v escaped [%v, %v]",
				i, v, cfg.ThresholdMin, cfg.ThresholdMax)
		}
	}

	// Sustained strong detections pin the value at the ceiling.
	for i := 0; i < 100; i++ {
		a.Observe(batchOf(0.99))
	}
	if math.Abs(a.Value()-cfg.ThresholdMax) > 1e-9 {
		t.Errorf("expected value pinned to ceiling %v, got %v", cfg.ThresholdMax, a.Value())
	}
}

func TestAdaptiveThreshold_SetClamps(t *testing.T) {
	a := NewAdaptiveThreshold(DefaultConfig())

	a.Set(1.5)
	if a.Value() != 0.9 {
		t.Errorf("expected clamp to 0.9, got %v", a.Value())
	}
	a.Set(-1)
	if a.Value() != 0.1 {
		t.Errorf("expected clamp to 0.1, got %v", a.Value())
	}
	a.Set(0.5)
	if a.Value() != 0.5 {
		t.Errorf("expected 0.5, got %v", a.Value())
	}
}

func TestAdaptiveThreshold_RecentAveragesBounded(t *testing.T) {
	a := NewAdaptiveThreshold(DefaultConfig())
	for i := 0; i < 25; i++ {
		a.Observe(batchOf(0.5))
	}
	if n := len(a.RecentAverages()); n != recentAveragesMax {
		t.Errorf("expected %d recent averages, got %d", recentAveragesMax, n)
	}
}

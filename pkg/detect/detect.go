// Package detect defines the canonical detection types shared by the
// inference client, the session loop and the overlay renderer.
package detect

import "time"

// Box is an axis-aligned bounding box in source-frame pixel units.
// A well-formed box satisfies X1 < X2 and Y1 < Y2.
type Box struct {
	X1, Y1, X2, Y2 float64
}

// Valid reports whether the box has positive extent on both axes.
func (b Box) Valid() bool {
	return b.X1 < b.X2 && b.Y1 < b.Y2
}

// Width returns the box width in pixels.
func (b Box) Width() float64 {
	return b.X2 - b.X1
}

// Height returns the box height in pixels.
func (b Box) Height() float64 {
	return b.Y2 - b.Y1
}

// Detection represents one labeled, scored object returned by the
// detection service for one frame. Box is nil when the service omitted
// spatial data (label-only dialect).
type Detection struct {
	Label string
	Score float64 // always in [0,1]
	Box   *Box
	Index int
}

// Batch is the ordered result of one inference cycle.
// It is immutable once produced.
type Batch struct {
	Detections []Detection
	At         time.Time
}

// Empty reports whether the cycle produced no detections.
func (b Batch) Empty() bool {
	return len(b.Detections) == 0
}

// Filter returns the detections whose score clears the threshold.
// A detection passes iff score >= threshold.
func (b Batch) Filter(threshold float64) []Detection {
	var out []Detection
	for _, d := range b.Detections {
		if d.Score >= threshold {
			out = append(out, d)
		}
	}
	return out
}

// Top returns the highest-scoring detection that clears the threshold,
// or nil if none does.
func (b Batch) Top(threshold float64) *Detection {
	var best *Detection
	for i := range b.Detections {
		d := &b.Detections[i]
		if d.Score < threshold {
			continue
		}
		if best == nil || d.Score > best.Score {
			best = d
		}
	}
	return best
}

// MeanScore returns the mean confidence over all detections in the
// batch, 0 for an empty batch.
func (b Batch) MeanScore() float64 {
	if len(b.Detections) == 0 {
		return 0
	}
	sum := 0.0
	for _, d := range b.Detections {
		sum += d.Score
	}
	return sum / float64(len(b.Detections))
}

// CountAbove returns how many detections score strictly above the cutoff.
func (b Batch) CountAbove(cutoff float64) int {
	n := 0
	for _, d := range b.Detections {
		if d.Score > cutoff {
			n++
		}
	}
	return n
}

package overlay

import (
	"image"

	"github.com/borlacam/go-borlacam/pkg/detect"
)

// MapBox maps a source-frame bounding box into display-surface
// coordinates and clamps it to the display rect. Every returned
// rectangle lies within [0, displayW] x [0, displayH].
func MapBox(box detect.Box, srcW, srcH, displayW, displayH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 {
		return image.Rectangle{}
	}

	scaleX := float64(displayW) / float64(srcW)
	scaleY := float64(displayH) / float64(srcH)

	r := image.Rect(
		int(box.X1*scaleX),
		int(box.Y1*scaleY),
		int(box.X2*scaleX),
		int(box.Y2*scaleY),
	)
	return r.Intersect(image.Rect(0, 0, displayW, displayH))
}

// PlaceholderBox returns the display rectangle for a detection that
// carries no spatial data. The box is centered on the display surface
// and offset deterministically by the detection's index so multiple
// label-only detections do not fully overlap.
func PlaceholderBox(index, displayW, displayH int) image.Rectangle {
	w := displayW / 4
	h := displayH / 4

	// Step each subsequent placeholder down-right, wrapping before the
	// offset could push the box off the surface.
	step := 20
	maxSteps := 1
	if w > 0 && step > 0 {
		if m := (displayW/2 - w/2) / step; m > 1 {
			maxSteps = m
		}
	}
	offset := (index % maxSteps) * step

	x0 := displayW/2 - w/2 + offset
	y0 := displayH/2 - h/2 + offset

	return image.Rect(x0, y0, x0+w, y0+h).Intersect(image.Rect(0, 0, displayW, displayH))
}

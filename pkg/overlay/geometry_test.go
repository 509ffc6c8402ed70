package overlay

import (
	"image"
	"testing"

	"github.com/borlacam/go-borlacam/pkg/detect"
)

func TestMapBox_HalvedDisplay(t *testing.T) {
	// 640x480 source rendered into a 320x240 display.
	box := detect.Box{X1: 10, Y1: 10, X2: 100, Y2: 100}
	got := MapBox(box, 640, 480, 320, 240)
	want := image.Rect(5, 5, 50, 50)
	if got != want {
		t.Errorf("MapBox = %v, want %v", got, want)
	}
}

func TestMapBox_NonUniformScale(t *testing.T) {
	box := detect.Box{X1: 0, Y1: 0, X2: 320, Y2: 240}
	got := MapBox(box, 640, 480, 1280, 240)
	want := image.Rect(0, 0, 640, 120)
	if got != want {
		t.Errorf("MapBox = %v, want %v", got, want)
	}
}

func TestMapBox_ClampsToDisplay(t *testing.T) {
	display := image.Rect(0, 0, 320, 240)
	cases := []detect.Box{
		{X1: -50, Y1: -50, X2: 100, Y2: 100},
		{X1: 500, Y1: 400, X2: 900, Y2: 700},
		{X1: 0, Y1: 0, X2: 10000, Y2: 10000},
	}
	for _, box := range cases {
		got := MapBox(box, 640, 480, 320, 240)
		if !got.In(display) && !got.Empty() {
			t.Errorf("MapBox(%+v) = %v escapes display %v", box, got, display)
		}
	}
}

func TestMapBox_DegenerateSource(t *testing.T) {
	box := detect.Box{X1: 10, Y1: 10, X2: 20, Y2: 20}
	if got := MapBox(box, 0, 0, 320, 240); !got.Empty() {
		t.Errorf("expected empty rect for zero source dims, got %v", got)
	}
}

func TestPlaceholderBox_WithinDisplayAndDistinct(t *testing.T) {
	display := image.Rect(0, 0, 320, 240)

	seen := map[image.Rectangle]bool{}
	for idx := 0; idx < 4; idx++ {
		r := PlaceholderBox(idx, 320, 240)
		if r.Empty() {
			t.Fatalf("placeholder %d is empty", idx)
		}
		if !r.In(display) {
			t.Errorf("placeholder %d = %v escapes display", idx, r)
		}
		if seen[r] {
			t.Errorf("placeholder %d overlaps a previous one exactly: %v", idx, r)
		}
		seen[r] = true
	}
}

func TestPlaceholderBox_Deterministic(t *testing.T) {
	a := PlaceholderBox(2, 320, 240)
	b := PlaceholderBox(2, 320, 240)
	if a != b {
		t.Errorf("placeholder not deterministic: %v vs %v", a, b)
	}
}

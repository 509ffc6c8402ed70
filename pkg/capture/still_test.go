package capture

import (
	"bytes"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func TestStillSource(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 640, 480)), nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "frame.jpg")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	src, err := OpenStill(path)
	if err != nil {
		t.Fatalf("OpenStill: %v", err)
	}
	defer src.Close()

	frame, w, h, err := src.CaptureJPEG()
	if err != nil {
		t.Fatalf("CaptureJPEG: %v", err)
	}
	if w != 640 || h != 480 {
		t.Errorf("dimensions %dx%d, want 640x480", w, h)
	}
	if len(frame) == 0 {
		t.Error("empty frame")
	}
}

func TestOpenStill_MissingFile(t *testing.T) {
	if _, err := OpenStill(filepath.Join(t.TempDir(), "nope.jpg")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

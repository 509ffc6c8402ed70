package capture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	"os"
)

// StillSource replays a single JPEG file as if it were a camera. Used
// for demos and development machines without a webcam.
type StillSource struct {
	frame  []byte
	width  int
	height int
}

// OpenStill loads the JPEG at path.
func OpenStill(path string) (*StillSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("capture: read still %s: %w", path, err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("capture: decode still %s: %w", path, err)
	}
	return &StillSource{frame: data, width: cfg.Width, height: cfg.Height}, nil
}

// CaptureJPEG returns the loaded frame.
func (s *StillSource) CaptureJPEG() ([]byte, int, int, error) {
	return s.frame, s.width, s.height, nil
}

// Close releases nothing; the frame lives in memory.
func (s *StillSource) Close() error {
	return nil
}

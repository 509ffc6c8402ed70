// Package capture provides camera frame sources for the detection loop.
package capture

import (
	"fmt"
	"log/slog"
	"sync"

	"gocv.io/x/gocv"
)

// Webcam captures JPEG frames from a local camera device through
// OpenCV. Frames are mirrored horizontally so the preview behaves like
// a mirror.
type Webcam struct {
	deviceID int
	logger   *slog.Logger

	mu   sync.Mutex
	cam  *gocv.VideoCapture
	mat  gocv.Mat
	flip bool
}

// Options tunes the camera before the first frame.
type Options struct {
	Width  int
	Height int
	FPS    float64
	Mirror bool
}

// DefaultOptions matches the detection service's expected input size.
func DefaultOptions() Options {
	return Options{Width: 640, Height: 480, FPS: 30, Mirror: true}
}

// Open opens the camera device and applies the options.
func Open(deviceID int, opts Options) (*Webcam, error) {
	cam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("capture: open device %d: %w", deviceID, err)
	}

	if opts.Width > 0 {
		cam.Set(gocv.VideoCaptureFrameWidth, float64(opts.Width))
	}
	if opts.Height > 0 {
		cam.Set(gocv.VideoCaptureFrameHeight, float64(opts.Height))
	}
	if opts.FPS > 0 {
		cam.Set(gocv.VideoCaptureFPS, opts.FPS)
	}

	return &Webcam{
		deviceID: deviceID,
		cam:      cam,
		mat:      gocv.NewMat(),
		flip:     opts.Mirror,
		logger:   slog.Default().With("component", "capture", "device", deviceID),
	}, nil
}

// CaptureJPEG grabs one frame and returns it JPEG-encoded with its
// source dimensions.
func (w *Webcam) CaptureJPEG() ([]byte, int, int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cam == nil {
		return nil, 0, 0, fmt.Errorf("capture: device %d closed", w.deviceID)
	}
	if ok := w.cam.Read(&w.mat); !ok || w.mat.Empty() {
		return nil, 0, 0, fmt.Errorf("capture: cannot read device %d", w.deviceID)
	}

	if w.flip {
		gocv.Flip(w.mat, &w.mat, 1)
	}

	buf, err := gocv.IMEncode(".jpg", w.mat)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("capture: encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, w.mat.Cols(), w.mat.Rows(), nil
}

// Close releases the camera device.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cam == nil {
		return nil
	}
	w.mat.Close()
	err := w.cam.Close()
	w.cam = nil
	if err != nil {
		return fmt.Errorf("capture: close device %d: %w", w.deviceID, err)
	}
	return nil
}

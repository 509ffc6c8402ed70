// Package overlay maps detections into display coordinates and renders
// them over the camera frame for the dashboard.
package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/borlacam/go-borlacam/pkg/detect"
)

// Confidence tiers controlling stroke styling.
const (
	tierHigh = 0.7
	tierMid  = 0.4
)

// Sink receives the rendered display frame as JPEG.
type Sink interface {
	PublishFrame(jpeg []byte)
}

// Status is the info-panel snapshot drawn in the frame corner.
type Status struct {
	Threshold float64
	FPS       float64
	Sound     bool
}

// Renderer composes the camera frame and detection overlay into one
// display surface. The surface is cleared and fully redrawn every
// cycle; there is no incremental diffing.
type Renderer struct {
	width  int
	height int
	font   *truetype.Font
	sink   Sink
	logger *slog.Logger

	// StatusFunc supplies the info-panel values at render time.
	StatusFunc func() Status
}

// NewRenderer creates a renderer targeting a display surface of the
// given size.
func NewRenderer(width, height int, sink Sink) (*Renderer, error) {
	font, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("overlay: parse font: %w", err)
	}
	return &Renderer{
		width:  width,
		height: height,
		font:   font,
		sink:   sink,
		logger: slog.Default().With("component", "overlay.renderer"),
	}, nil
}

// Render implements the session renderer hook: compose and publish.
func (r *Renderer) Render(frame []byte, dets []detect.Detection, srcW, srcH int) {
	img, err := r.Compose(frame, dets, srcW, srcH)
	if err != nil {
		r.logger.Warn("overlay compose failed", "error", err)
		return
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		r.logger.Warn("overlay encode failed", "error", err)
		return
	}
	if r.sink != nil {
		r.sink.PublishFrame(buf.Bytes())
	}
}

// Compose draws the frame, every detection rectangle and the info panel
// onto a fresh display surface.
func (r *Renderer) Compose(frame []byte, dets []detect.Detection, srcW, srcH int) (image.Image, error) {
	dc := gg.NewContext(r.width, r.height)
	dc.SetRGB(0, 0, 0)
	dc.Clear()

	if len(frame) > 0 {
		if img, _, err := image.Decode(bytes.NewReader(frame)); err == nil {
			fitted := imaging.Resize(img, r.width, r.height, imaging.Linear)
			dc.DrawImage(fitted, 0, 0)
		}
	}

	for _, d := range dets {
		r.drawDetection(dc, d, srcW, srcH)
	}

	if r.StatusFunc != nil {
		r.drawPanel(dc, r.StatusFunc())
	}

	return dc.Image(), nil
}

// drawDetection renders one detection rectangle with its label tag.
// Detections without spatial data get a deterministic placeholder box.
func (r *Renderer) drawDetection(dc *gg.Context, d detect.Detection, srcW, srcH int) {
	var rect image.Rectangle
	if d.Box != nil && d.Box.Valid() {
		rect = MapBox(*d.Box, srcW, srcH, r.width, r.height)
	} else {
		rect = PlaceholderBox(d.Index, r.width, r.height)
	}
	if rect.Empty() {
		return
	}

	category := detect.CategoryFor(d.Label)
	col := detect.ColorFor(category)

	lineWidth := 2.0
	switch {
	case d.Score >= tierHigh:
		lineWidth = 3.0
		dc.SetColor(col)
	case d.Score >= tierMid:
		dc.SetColor(col)
	default:
		// Low-confidence: dashed, half opacity.
		dc.SetDash(6, 4)
		dc.SetColor(color.RGBA{R: col.R, G: col.G, B: col.B, A: 128})
	}

	dc.DrawRectangle(
		float64(rect.Min.X), float64(rect.Min.Y),
		float64(rect.Dx()), float64(rect.Dy()),
	)
	dc.SetLineWidth(lineWidth)
	dc.Stroke()
	dc.SetDash() // back to solid for the tag

	r.drawTag(dc, rect, category, d.Score, col)
}

// drawTag draws the "Category: NN%" label with a filled background
// above the rectangle, inside it when the box touches the top edge.
func (r *Renderer) drawTag(dc *gg.Context, rect image.Rectangle, category string, score float64, col color.RGBA) {
	label := fmt.Sprintf("%s: %d%%", detect.Title(category), int(score*100))

	dc.SetFontFace(truetype.NewFace(r.font, &truetype.Options{Size: 13}))
	tw, th := dc.MeasureString(label)

	y := float64(rect.Min.Y) - th - 4
	if y < 0 {
		y = float64(rect.Min.Y) + 2
	}

	dc.SetColor(col)
	dc.DrawRectangle(float64(rect.Min.X), y, tw+8, th+4)
	dc.Fill()

	dc.SetRGB(0, 0, 0)
	dc.DrawString(label, float64(rect.Min.X)+4, y+th)
}

// drawPanel renders the translucent header panel with the session
// status figures.
func (r *Renderer) drawPanel(dc *gg.Context, st Status) {
	dc.SetRGBA(0, 0, 0, 0.7)
	dc.DrawRectangle(10, 10, 230, 78)
	dc.Fill()

	sound := "off"
	if st.Sound {
		sound = "on"
	}

	dc.SetFontFace(truetype.NewFace(r.font, &truetype.Options{Size: 14}))
	dc.SetRGB255(0, 255, 255)
	dc.DrawString("BorlaCam", 20, 30)

	dc.SetFontFace(truetype.NewFace(r.font, &truetype.Options{Size: 12}))
	dc.SetRGB(1, 1, 1)
	dc.DrawString(fmt.Sprintf("confidence: %.2f", st.Threshold), 20, 50)
	dc.DrawString(fmt.Sprintf("fps: %.1f   sound: %s", st.FPS, sound), 20, 68)
}

package inference

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/disintegration/imaging"
)

// normalizeFrame decodes a JPEG frame, downscales it to fit within
// maxW x maxH (aspect preserved, never upscaled) and re-encodes it as
// base64 JPEG for transmission.
func normalizeFrame(frame []byte, maxW, maxH, quality int) (string, error) {
	if len(frame) == 0 {
		return "", ErrEmptyFrame
	}

	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return "", fmt.Errorf("decode frame: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxW || bounds.Dy() > maxH {
		img = imaging.Fit(img, maxW, maxH, imaging.Linear)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return "", fmt.Errorf("encode frame: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

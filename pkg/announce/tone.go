package announce

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/borlacam/go-borlacam/pkg/detect"
)

const (
	toneSampleRate = 16000
	toneAmplitude  = 0.4
	toneFadeMs     = 10
)

// ToneFrequency derives the fallback tone pitch from the detection.
// Each waste family gets its own base note and higher confidence raises
// the pitch, so repeated tones stay distinguishable by ear.
func ToneFrequency(d detect.Detection) float64 {
	category := detect.CategoryFor(d.Label)

	base := 440.0 // A4
	switch {
	case detect.Compostable(category):
		base = 392 // G4
	case detect.Recyclable(category):
		base = 523 // C5
	}

	score := d.Score
	if score < 0 {
		score = 0
	} else if score > 1 {
		score = 1
	}
	return base + 100*score
}

// EncodeToneWAV renders a sine tone as a mono PCM16 WAV file in memory.
// A short fade at both ends avoids clicks.
func EncodeToneWAV(freq float64, duration time.Duration) ([]byte, error) {
	n := int(float64(toneSampleRate) * duration.Seconds())
	if n <= 0 {
		return nil, fmt.Errorf("announce: non-positive tone duration %v", duration)
	}

	fade := toneSampleRate * toneFadeMs / 1000
	if fade*2 > n {
		fade = n / 2
	}

	samples := make([]int, n)
	for i := range samples {
		v := toneAmplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(toneSampleRate))
		if i < fade {
			v *= float64(i) / float64(fade)
		}
		if tail := n - 1 - i; tail < fade {
			v *= float64(tail) / float64(fade)
		}
		samples[i] = int(v * math.MaxInt16)
	}

	buf := &seekableBuffer{}
	enc := wav.NewEncoder(buf, toneSampleRate, 16, 1, 1)
	err := enc.Write(&audio.IntBuffer{
		Data:   samples,
		Format: &audio.Format{SampleRate: toneSampleRate, NumChannels: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("announce: encode tone: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("announce: finalize tone: %w", err)
	}
	return buf.data, nil
}

// seekableBuffer is an in-memory io.WriteSeeker for the WAV encoder,
// which seeks back to patch the RIFF header on Close.
type seekableBuffer struct {
	data []byte
	pos  int64
}

func (b *seekableBuffer) Write(p []byte) (int, error) {
	end := b.pos + int64(len(p))
	if end > int64(len(b.data)) {
		grown := make([]byte, end)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:end], p)
	b.pos = end
	return len(p), nil
}

func (b *seekableBuffer) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = b.pos + offset
	case io.SeekEnd:
		pos = int64(len(b.data)) + offset
	default:
		return 0, fmt.Errorf("announce: invalid seek whence %d", whence)
	}
	if pos < 0 {
		return 0, fmt.Errorf("announce: negative seek position %d", pos)
	}
	b.pos = pos
	return pos, nil
}

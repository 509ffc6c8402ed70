// Package tts provides a unified interface for text-to-speech providers.
//
// Announcement phrases are short, so every provider synthesizes the full
// phrase in one request. Providers implement the Provider interface,
// enabling switching and fallback chaining without changing caller code.
//
// Example usage:
//
//	provider, _ := tts.NewGoogle(
//	    tts.WithAPIKey(os.Getenv("GOOGLE_TTS_API_KEY")),
//	)
//	defer provider.Close()
//
//	result, _ := provider.Synthesize(ctx, "Plastic detected - Recyclable waste")
//	// result.Audio contains MP3 audio bytes
package tts

import (
	"context"
	"time"
)

// Provider defines the TTS provider interface.
type Provider interface {
	// Synthesize converts text to audio, returning the complete audio buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// AudioResult represents a complete audio synthesis result.
type AudioResult struct {
	// Audio contains the raw audio data in the specified format.
	Audio []byte

	// Format describes the audio encoding and sample rate.
	Format AudioFormat

	// Duration is the estimated audio playback duration.
	Duration time.Duration

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the synthesis round trip in milliseconds.
	LatencyMs int64
}

// AudioFormat describes the audio encoding parameters.
type AudioFormat struct {
	// Encoding specifies the audio codec.
	Encoding Encoding

	// SampleRate in Hz (e.g., 16000, 24000).
	SampleRate int

	// Channels is 1 for mono, 2 for stereo.
	Channels int

	// BitDepth for PCM formats (e.g., 16 for PCM16).
	BitDepth int
}

// Encoding represents audio encoding types.
type Encoding string

const (
	// EncodingMP3 is MP3 as returned by the Google synthesis API.
	EncodingMP3 Encoding = "mp3_24000"

	// EncodingWAV is a RIFF/WAV container around mono PCM16, used by
	// the locally generated fallback tone.
	EncodingWAV Encoding = "wav_16000"
)

// SampleRateFromEncoding extracts the sample rate from an encoding type.
func SampleRateFromEncoding(enc Encoding) int {
	switch enc {
	case EncodingWAV:
		return 16000
	default:
		return 24000
	}
}

// VoiceSettings controls the synthesized voice characteristics.
type VoiceSettings struct {
	// Language is the BCP-47 language code (e.g., en-US).
	Language string

	// Voice names a specific voice, empty for the provider default.
	Voice string

	// SpeakingRate scales speech speed, 1.0 is normal.
	SpeakingRate float64

	// Pitch adjusts semitones from the default, 0 is normal.
	Pitch float64

	// VolumeGainDb adjusts loudness in dB, 0 is normal.
	VolumeGainDb float64
}

// Disabled returns a provider whose synthesis always fails with the
// given reason. Callers fall through to their local fallback.
func Disabled(reason error) Provider {
	return disabled{err: reason}
}

type disabled struct {
	err error
}

func (d disabled) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	return nil, WrapError("disabled", d.err)
}

func (d disabled) Health(ctx context.Context) error {
	return WrapError("disabled", d.err)
}

func (d disabled) Close() error {
	return nil
}

// DefaultVoiceSettings returns the announcement voice defaults.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Language:     "en-US",
		Voice:        "en-GB-Standard-F",
		SpeakingRate: 1.0,
		Pitch:        0,
		VolumeGainDb: 0,
	}
}

package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/borlacam/go-borlacam/internal/httpc"
)

const googleBaseURL = "https://texttospeech.googleapis.com/v1"

// Estimated speech pacing used for playback duration when the provider
// does not report one. Roughly 150 words per minute.
const msPerChar = 60

// Google synthesizes speech through the Google Cloud TTS REST API
// using an API key. Output is MP3 at 24kHz mono.
type Google struct {
	config *Config
	http   *http.Client
}

// googleRequest is the text:synthesize request body.
type googleRequest struct {
	Input struct {
		Text string `json:"text"`
	} `json:"input"`
	Voice struct {
		LanguageCode string `json:"languageCode"`
		Name         string `json:"name,omitempty"`
	} `json:"voice"`
	AudioConfig struct {
		AudioEncoding   string  `json:"audioEncoding"`
		SpeakingRate    float64 `json:"speakingRate,omitempty"`
		Pitch           float64 `json:"pitch,omitempty"`
		VolumeGainDb    float64 `json:"volumeGainDb,omitempty"`
		SampleRateHertz int     `json:"sampleRateHertz,omitempty"`
	} `json:"audioConfig"`
}

// googleResponse is the text:synthesize response body.
type googleResponse struct {
	AudioContent string `json:"audioContent"`
	Error        struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewGoogle creates a Google TTS provider.
// An API key is required; see Config for voice options.
func NewGoogle(opts ...Option) (*Google, error) {
	config := DefaultConfig()
	config.BaseURL = googleBaseURL
	config.Apply(opts...)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.Logger = config.Logger.With("component", "tts.google")

	return &Google{
		config: config,
		http:   httpc.NewClient(config.Timeout),
	}, nil
}

// Synthesize converts text to MP3 audio in a single request.
func (g *Google) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	if text == "" {
		return nil, WrapError("google", ErrEmptyText)
	}

	vs := g.config.VoiceSettings
	var body googleRequest
	body.Input.Text = text
	body.Voice.LanguageCode = vs.Language
	body.Voice.Name = vs.Voice
	body.AudioConfig.AudioEncoding = "MP3"
	body.AudioConfig.SpeakingRate = vs.SpeakingRate
	body.AudioConfig.Pitch = vs.Pitch
	body.AudioConfig.VolumeGainDb = vs.VolumeGainDb
	body.AudioConfig.SampleRateHertz = 24000

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, WrapError("google", err)
	}

	url := fmt.Sprintf("%s/text:synthesize?key=%s", g.config.BaseURL, g.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, WrapError("google", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.http.Do(req)
	if err != nil {
		return nil, WrapError("google", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, WrapError("google", err)
	}

	var parsed googleResponse
	if err := json.Unmarshal(raw, &parsed); err != nil && resp.StatusCode == http.StatusOK {
		return nil, WrapError("google", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg := parsed.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg, Provider: "google"}
	}

	audio, err := base64.StdEncoding.DecodeString(parsed.AudioContent)
	if err != nil {
		return nil, WrapError("google", fmt.Errorf("decode audio content: %w", err))
	}

	latency := time.Since(start)
	g.config.Logger.Debug("synthesis complete",
		"chars", len(text),
		"bytes", len(audio),
		"latency_ms", latency.Milliseconds(),
	)

	return &AudioResult{
		Audio: audio,
		Format: AudioFormat{
			Encoding:   EncodingMP3,
			SampleRate: 24000,
			Channels:   1,
		},
		Duration:  time.Duration(len(text)) * msPerChar * time.Millisecond,
		CharCount: len(text),
		LatencyMs: latency.Milliseconds(),
	}, nil
}

// Health verifies the API key by listing the available voices.
func (g *Google) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/voices?languageCode=%s&key=%s",
		g.config.BaseURL, g.config.VoiceSettings.Language, g.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return WrapError("google", err)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return WrapError("google", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: resp.Status, Provider: "google"}
	}
	return nil
}

// Close releases provider resources. The shared HTTP client holds none.
func (g *Google) Close() error {
	return nil
}

// Verify Google implements Provider at compile time.
var _ Provider = (*Google)(nil)

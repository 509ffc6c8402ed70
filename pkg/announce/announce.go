// Package announce turns confirmed detections into spoken audio.
//
// The announcer is a two-state machine: IDLE accepts a detection,
// SPEAKING rejects everything until playback finishes. A cooldown after
// each accepted announcement keeps repeated sightings from chattering.
package announce

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/borlacam/go-borlacam/pkg/detect"
	"github.com/borlacam/go-borlacam/pkg/tts"
)

// Announcer states.
const (
	StateIdle     = "idle"
	StateSpeaking = "speaking"
)

// Player renders synthesized audio and blocks until playback completes.
type Player interface {
	Play(ctx context.Context, audio []byte, format tts.AudioFormat) error
}

// Config holds announcer tuning.
type Config struct {
	// Cooldown is the minimum gap between accepted announcements,
	// measured from dispatch.
	Cooldown time.Duration

	// SynthTimeout bounds one synthesis round trip.
	SynthTimeout time.Duration

	// ToneDuration is the length of the fallback tone.
	ToneDuration time.Duration
}

// DefaultConfig returns the standard announcer tuning.
func DefaultConfig() Config {
	return Config{
		Cooldown:     3 * time.Second,
		SynthTimeout: 10 * time.Second,
		ToneDuration: 300 * time.Millisecond,
	}
}

// AudioAnnouncer speaks detections through a TTS provider, falling back
// to a locally generated tone when synthesis fails. At most one
// announcement is in flight at any time.
type AudioAnnouncer struct {
	cfg      Config
	provider tts.Provider
	player   Player
	clk      clock.Clock
	logger   *slog.Logger

	mu           sync.Mutex
	state        string
	enabled      bool
	lastAccepted time.Time
	haveAccepted bool

	// wg tracks the in-flight playback goroutine for Close.
	wg sync.WaitGroup
}

// New creates an announcer in the IDLE state with sound enabled.
func New(cfg Config, provider tts.Provider, player Player, clk clock.Clock) *AudioAnnouncer {
	return &AudioAnnouncer{
		cfg:      cfg,
		provider: provider,
		player:   player,
		clk:      clk,
		logger:   slog.Default().With("component", "announce"),
		state:    StateIdle,
		enabled:  true,
	}
}

// Announce requests a spoken announcement for the detection. It returns
// true when the announcement was accepted and dispatched; false when
// sound is off, an announcement is already playing, or the cooldown has
// not elapsed. The call never blocks on audio work.
func (a *AudioAnnouncer) Announce(d detect.Detection) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.enabled {
		return false
	}
	if a.state == StateSpeaking {
		return false
	}
	now := a.clk.Now()
	if a.haveAccepted && now.Sub(a.lastAccepted) < a.cfg.Cooldown {
		return false
	}

	a.state = StateSpeaking
	a.lastAccepted = now
	a.haveAccepted = true

	a.wg.Add(1)
	go a.speak(d)
	return true
}

// speak synthesizes and plays one announcement, then returns the
// machine to IDLE regardless of outcome.
func (a *AudioAnnouncer) speak(d detect.Detection) {
	defer a.wg.Done()
	defer func() {
		a.mu.Lock()
		a.state = StateIdle
		a.mu.Unlock()
	}()

	phrase := Phrase(d)
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.SynthTimeout)
	result, err := a.provider.Synthesize(ctx, phrase)
	cancel()

	if err != nil {
		a.logger.Warn("synthesis failed, falling back to tone",
			"phrase", phrase,
			"error", err,
		)
		a.playTone(d)
		return
	}

	if err := a.player.Play(context.Background(), result.Audio, result.Format); err != nil {
		a.logger.Warn("playback failed", "phrase", phrase, "error", err)
	}
}

// playTone plays the fixed-duration fallback tone for the detection.
func (a *AudioAnnouncer) playTone(d detect.Detection) {
	wav, err := EncodeToneWAV(ToneFrequency(d), a.cfg.ToneDuration)
	if err != nil {
		a.logger.Error("tone encode failed", "error", err)
		return
	}
	format := tts.AudioFormat{
		Encoding:   tts.EncodingWAV,
		SampleRate: toneSampleRate,
		Channels:   1,
		BitDepth:   16,
	}
	if err := a.player.Play(context.Background(), wav, format); err != nil {
		a.logger.Warn("tone playback failed", "error", err)
	}
}

// State reports the current machine state.
func (a *AudioAnnouncer) State() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Enabled reports whether sound is on.
func (a *AudioAnnouncer) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// SetEnabled toggles sound. Disabling does not cut off an announcement
// that is already playing.
func (a *AudioAnnouncer) SetEnabled(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = on
}

// Close waits for any in-flight playback to finish and releases the
// provider.
func (a *AudioAnnouncer) Close() error {
	a.wg.Wait()
	return a.provider.Close()
}

// Phrase builds the spoken sentence for a detection. Waste categories
// carry their disposal hint; anything else is announced by label.
func Phrase(d detect.Detection) string {
	category := detect.CategoryFor(d.Label)
	name := detect.Title(d.Label)
	switch {
	case detect.Compostable(category):
		return fmt.Sprintf("%s detected - Compostable waste", name)
	case detect.Recyclable(category):
		return fmt.Sprintf("%s detected - Recyclable waste", name)
	default:
		return fmt.Sprintf("%s detected", name)
	}
}

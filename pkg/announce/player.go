package announce

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/borlacam/go-borlacam/pkg/tts"
)

// FFPlayPlayer plays audio by piping it into an ffplay process. Both
// the MP3 announcements and the WAV fallback tone carry their container
// headers, so ffplay autodetects the format from the stream.
type FFPlayPlayer struct {
	// Binary overrides the ffplay executable path.
	Binary string

	logger *slog.Logger
}

// NewFFPlayPlayer creates a player using ffplay from PATH.
func NewFFPlayPlayer() *FFPlayPlayer {
	return &FFPlayPlayer{
		Binary: "ffplay",
		logger: slog.Default().With("component", "announce.player"),
	}
}

// Play pipes the audio to ffplay and blocks until playback completes
// or the context is cancelled.
func (p *FFPlayPlayer) Play(ctx context.Context, audio []byte, format tts.AudioFormat) error {
	if len(audio) == 0 {
		return nil
	}

	cmd := exec.CommandContext(ctx, p.Binary,
		"-autoexit", "-nodisp", "-loglevel", "quiet", "-")

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("announce: stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("announce: start playback: %w", err)
	}

	if _, err := stdin.Write(audio); err != nil {
		p.logger.Debug("playback write interrupted", "error", err)
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("announce: playback: %w", err)
	}
	return nil
}

// Verify FFPlayPlayer implements Player at compile time.
var _ Player = (*FFPlayPlayer)(nil)

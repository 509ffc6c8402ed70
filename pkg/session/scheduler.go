// Package session implements the client-side detection orchestration
// loop: inference scheduling, adaptive confidence thresholding,
// temporal smoothing and the hand-off to overlay, audio and state.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/borlacam/go-borlacam/pkg/detect"
	"github.com/borlacam/go-borlacam/pkg/inference"
)

// FrameSource supplies the current frame and its native dimensions.
type FrameSource interface {
	CaptureJPEG() (frame []byte, width, height int, err error)
}

// Detector submits one frame to the detection service.
type Detector interface {
	Detect(ctx context.Context, frame []byte, confidence float64) (detect.Batch, error)
}

// Renderer draws the threshold-filtered detections for one cycle.
type Renderer interface {
	Render(frame []byte, dets []detect.Detection, srcW, srcH int)
}

// Announcer voices a confirmed detection, reporting whether it fired.
type Announcer interface {
	Announce(d detect.Detection) bool
}

// StateSink receives the loop's state mutations. There is exactly one
// writer timeline: the scheduler tick.
type StateSink interface {
	SetRunning(running bool)
	SetFPS(fps float64)
	SetThreshold(value float64)
	SetPredictions(dets []detect.Detection)
	SetServiceStatus(kind string)
	ClearServiceStatus()
	CommitHistory(d detect.Detection)
}

// StatusCaptureFailed is surfaced when the frame source cannot deliver.
const StatusCaptureFailed = "capture_failed"

// cycleResult carries one finished inference call back onto the tick
// timeline.
type cycleResult struct {
	gen   int
	frame []byte
	srcW  int
	srcH  int
	batch detect.Batch
	err   error
}

// Scheduler is the single control loop coordinating capture, inference,
// smoothing, overlay and audio. It ticks on a render cadence but fires
// an inference cycle only once per configured interval, never starting
// a second call before the first resolves.
type Scheduler struct {
	cfg    Config
	clk    clock.Clock
	logger *slog.Logger

	source    FrameSource
	detector  Detector
	renderer  Renderer
	announcer Announcer
	state     StateSink

	threshold *AdaptiveThreshold
	smoother  *Smoother

	// Loop state. Mutated only on the tick timeline (Run goroutine);
	// Start/Stop marshal onto it through the command channel.
	running bool
	busy    bool
	gen     int
	lastRun time.Time

	// FPS bookkeeping, decoupled from the inference cadence.
	tickCount int
	fpsMark   time.Time

	results  chan cycleResult
	commands chan func()
	ctx      context.Context
}

// New creates a scheduler wiring all collaborators together.
func New(cfg Config, clk clock.Clock, source FrameSource, detector Detector,
	renderer Renderer, announcer Announcer, state StateSink,
) *Scheduler {
	s := &Scheduler{
		cfg:       cfg,
		clk:       clk,
		logger:    slog.Default().With("component", "session.scheduler"),
		source:    source,
		detector:  detector,
		renderer:  renderer,
		announcer: announcer,
		state:     state,
		threshold: NewAdaptiveThreshold(cfg),
		smoother:  NewSmoother(cfg, clk),
		results:   make(chan cycleResult, 1),
		commands:  make(chan func(), 8),
	}
	s.fpsMark = clk.Now()
	return s
}

// Threshold exposes the adaptive threshold for dashboard reads/nudges.
func (s *Scheduler) Threshold() *AdaptiveThreshold {
	return s.threshold
}

// Start begins effectful work on the next tick. The loop itself must
// already be running (Run); resuming is instantaneous.
func (s *Scheduler) Start() {
	s.enqueue(func() {
		if s.running {
			return
		}
		s.running = true
		s.gen++
		s.busy = false
		s.lastRun = time.Time{}
		s.smoother.Reset()
		s.state.SetRunning(true)
		s.state.ClearServiceStatus()
		s.logger.Info("detection session started", "interval", s.cfg.Interval)
	})
}

// Stop suspends effectful work without killing the loop. An inference
// already in flight resolves but its result is discarded.
func (s *Scheduler) Stop() {
	s.enqueue(func() {
		if !s.running {
			return
		}
		s.running = false
		s.gen++
		s.busy = false
		s.state.SetRunning(false)
		s.state.SetPredictions(nil)
		s.logger.Info("detection session stopped")
	})
}

// SetThreshold applies a manual threshold override on the tick timeline.
func (s *Scheduler) SetThreshold(v float64) {
	s.enqueue(func() {
		s.threshold.Set(v)
		s.state.SetThreshold(s.threshold.Value())
	})
}

// Run drives the loop until the context is cancelled. Ticks continue
// while the session is stopped so that resuming costs nothing.
func (s *Scheduler) Run(ctx context.Context) {
	s.ctx = ctx
	ticker := s.clk.Ticker(s.cfg.TickInterval)
	defer ticker.Stop()

	s.logger.Info("scheduler loop started",
		"tick", s.cfg.TickInterval,
		"interval", s.cfg.Interval,
	)

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-s.commands:
			cmd()
		case res := <-s.results:
			s.applyResult(res)
		case <-ticker.C:
			s.tick()
		}
	}
}

// enqueue marshals a mutation onto the tick timeline.
func (s *Scheduler) enqueue(cmd func()) {
	select {
	case s.commands <- cmd:
	default:
		s.logger.Warn("command queue full, dropping command")
	}
}

// tick runs once per render-frame callback.
func (s *Scheduler) tick() {
	now := s.clk.Now()

	// FPS is computed from the raw tick count once per second,
	// independent of the inference cadence.
	s.tickCount++
	if elapsed := now.Sub(s.fpsMark); elapsed >= time.Second {
		s.state.SetFPS(float64(s.tickCount) / elapsed.Seconds())
		s.tickCount = 0
		s.fpsMark = now
	}

	if !s.running || s.busy {
		return
	}
	if !s.lastRun.IsZero() && now.Sub(s.lastRun) < s.cfg.Interval {
		return
	}

	frame, w, h, err := s.source.CaptureJPEG()
	if err != nil {
		s.state.SetServiceStatus(StatusCaptureFailed)
		s.logger.Error("frame capture failed", "error", err)
		s.lastRun = now // don't hammer a dead camera every tick
		return
	}

	s.busy = true
	gen := s.gen
	confidence := s.threshold.Value()

	go func() {
		batch, err := s.detector.Detect(s.ctx, frame, confidence)
		s.results <- cycleResult{gen: gen, frame: frame, srcW: w, srcH: h, batch: batch, err: err}
	}()
}

// applyResult finishes one inference cycle on the tick timeline, in
// fixed order: threshold update, filtering, smoothing, render, then
// audio and history commit.
func (s *Scheduler) applyResult(res cycleResult) {
	if res.gen != s.gen {
		// Session stopped or restarted while the call was in flight.
		return
	}
	s.busy = false
	s.lastRun = s.clk.Now()

	if res.err != nil {
		kind := inference.Kind(res.err)
		s.state.SetServiceStatus(kind)
		s.logger.Warn("inference cycle failed", "kind", kind, "error", res.err)
		// The failed cycle still contributes an empty batch.
		res.batch = detect.Batch{At: res.batch.At}
	} else {
		s.state.ClearServiceStatus()
	}

	s.threshold.Observe(res.batch)
	s.state.SetThreshold(s.threshold.Value())

	filtered := res.batch.Filter(s.threshold.Value())
	top := res.batch.Top(s.threshold.Value())
	s.smoother.Observe(top)
	s.state.SetPredictions(filtered)

	if s.renderer != nil {
		s.renderer.Render(res.frame, filtered, res.srcW, res.srcH)
	}

	if top != nil && s.smoother.Consistent(top.Label) {
		if s.announcer != nil {
			s.announcer.Announce(*top)
		}
		s.state.CommitHistory(*top)
	}
}

// Package app wires the BorlaCam pipeline: camera capture, the remote
// detection client, the session loop, overlay rendering, announcements
// and the dashboard server.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/borlacam/go-borlacam/internal/log"
	"github.com/borlacam/go-borlacam/pkg/announce"
	"github.com/borlacam/go-borlacam/pkg/capture"
	"github.com/borlacam/go-borlacam/pkg/diag"
	"github.com/borlacam/go-borlacam/pkg/inference"
	"github.com/borlacam/go-borlacam/pkg/metrics"
	"github.com/borlacam/go-borlacam/pkg/overlay"
	"github.com/borlacam/go-borlacam/pkg/session"
	"github.com/borlacam/go-borlacam/pkg/state"
	"github.com/borlacam/go-borlacam/pkg/tts"
	"github.com/borlacam/go-borlacam/pkg/web"
)

// Display surface served to the dashboard.
const (
	displayWidth  = 640
	displayHeight = 480
)

// Config holds the application settings resolved from flags and
// environment.
type Config struct {
	APIURL       string
	Port         string
	CameraIndex  int
	SnapshotPath string
	GoogleTTSKey string
	StaticDir    string

	// Mode selects the session preset: fast, paced or precision.
	Mode string

	// StillPath replays a JPEG instead of opening a camera.
	StillPath string

	// AutoStart begins detection without waiting for the dashboard.
	AutoStart bool
}

// App owns the wired pipeline.
type App struct {
	cfg Config

	state     *state.AppState
	client    *inference.Client
	scheduler *session.Scheduler
	announcer *announce.AudioAnnouncer
	server    *web.Server
	metrics   *metrics.SessionMetrics
	source    io.Closer
}

// sessionProxy defers control binding so the server can be built
// before the scheduler.
type sessionProxy struct {
	sched *session.Scheduler
}

func (p *sessionProxy) Start() {
	if p.sched != nil {
		p.sched.Start()
	}
}

func (p *sessionProxy) Stop() {
	if p.sched != nil {
		p.sched.Stop()
	}
}

func (p *sessionProxy) SetThreshold(v float64) {
	if p.sched != nil {
		p.sched.SetThreshold(v)
	}
}

// New builds the full pipeline.
func New(cfg Config) (*App, error) {
	clk := clock.New()

	st, err := state.New(state.NewFileStore(cfg.SnapshotPath), clk)
	if err != nil {
		return nil, err
	}

	client, err := inference.NewClient(inference.WithBaseURL(cfg.APIURL))
	if err != nil {
		return nil, err
	}

	m, err := metrics.New()
	if err != nil {
		return nil, err
	}

	source, frameSource, err := openSource(cfg)
	if err != nil {
		return nil, err
	}

	announcer := announce.New(announce.DefaultConfig(), ttsProvider(cfg), announce.NewFFPlayPlayer(), clk)

	proxy := &sessionProxy{}
	server := web.NewServer(web.Config{
		Port:      cfg.Port,
		StaticDir: cfg.StaticDir,
		State:     st,
		Control:   proxy,
		Sound:     announcer,
		Prober:    client,
		Metrics:   m.Handler(),
	})
	st.OnStatus = server.PublishStatus

	renderer, err := overlay.NewRenderer(displayWidth, displayHeight, server)
	if err != nil {
		source.Close()
		return nil, err
	}
	renderer.StatusFunc = func() overlay.Status {
		view := st.Status()
		return overlay.Status{
			Threshold: view.Threshold,
			FPS:       view.FPS,
			Sound:     announcer.Enabled(),
		}
	}

	sessCfg, err := sessionConfig(cfg.Mode)
	if err != nil {
		source.Close()
		return nil, err
	}
	if persisted := st.Threshold(); persisted > 0 {
		sessCfg.ThresholdStart = persisted
	}

	sched := session.New(sessCfg, clk,
		frameSource,
		metrics.InstrumentDetector(client, m),
		renderer,
		metrics.InstrumentAnnouncer(announcer, m),
		metrics.InstrumentSink(st, m),
	)
	proxy.sched = sched

	return &App{
		cfg:       cfg,
		state:     st,
		client:    client,
		scheduler: sched,
		announcer: announcer,
		server:    server,
		metrics:   m,
		source:    source,
	}, nil
}

// Run probes the detection service, starts the loop and serves the
// dashboard until the context is cancelled.
func (a *App) Run(ctx context.Context) error {
	diag.Prime()
	a.probeService(ctx)

	go a.scheduler.Run(ctx)
	if a.cfg.AutoStart {
		a.scheduler.Start()
	}

	log.Info("dashboard listening", "port", a.cfg.Port, "api", a.cfg.APIURL)
	return a.server.Run(ctx)
}

// Shutdown releases the camera and waits for audio to drain.
func (a *App) Shutdown() {
	a.source.Close()
	a.announcer.Close()
}

// probeService records the service's advertised models and labels.
// A dead service is not fatal; the loop surfaces it per cycle.
func (a *App) probeService(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	info, err := a.client.Health(probeCtx)
	if err != nil {
		log.Warn("detection service unreachable at startup", "error", err)
		return
	}

	models := info.Models
	if len(models) == 0 && len(info.Classes) > 0 {
		// Older services report a single loaded model only.
		models = []string{"default"}
	}
	a.state.SetModels(models)
	log.Info("detection service ready",
		"model_loaded", info.ModelLoaded,
		"classes", len(info.Classes),
		"device", info.Device,
		"gpu", info.GPU,
	)
}

// openSource picks the frame source: a still frame for development or
// the webcam.
func openSource(cfg Config) (io.Closer, session.FrameSource, error) {
	if cfg.StillPath != "" {
		still, err := capture.OpenStill(cfg.StillPath)
		if err != nil {
			return nil, nil, err
		}
		return still, still, nil
	}

	cam, err := capture.Open(cfg.CameraIndex, capture.DefaultOptions())
	if err != nil {
		return nil, nil, err
	}
	return cam, cam, nil
}

// ttsProvider returns the synthesis chain. Without an API key every
// announcement falls back to the tone.
func ttsProvider(cfg Config) tts.Provider {
	if cfg.GoogleTTSKey == "" {
		log.Warn("no GOOGLE_TTS_API_KEY, announcements use tones")
		return tts.Disabled(tts.ErrNoAPIKey)
	}

	google, err := tts.NewGoogle(tts.WithAPIKey(cfg.GoogleTTSKey))
	if err != nil {
		log.Warn("google tts unavailable, announcements use tones", "error", err)
		return tts.Disabled(err)
	}
	return google
}

// sessionConfig maps a mode name onto a session preset.
func sessionConfig(mode string) (session.Config, error) {
	switch mode {
	case "", "fast":
		return session.DefaultConfig(), nil
	case "paced":
		return session.PacedConfig(), nil
	case "precision":
		return session.PrecisionConfig(), nil
	default:
		return session.Config{}, fmt.Errorf("app: unknown mode %q", mode)
	}
}

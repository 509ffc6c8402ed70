// Package web serves the BorlaCam dashboard: REST control endpoints,
// the live status stream and the rendered overlay feed.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/borlacam/go-borlacam/pkg/hub"
	"github.com/borlacam/go-borlacam/pkg/inference"
	"github.com/borlacam/go-borlacam/pkg/state"
)

// SessionControl is the slice of the detection loop the dashboard can
// drive.
type SessionControl interface {
	Start()
	Stop()
	SetThreshold(v float64)
}

// SoundToggle is the announcer surface exposed to the dashboard.
type SoundToggle interface {
	Enabled() bool
	SetEnabled(on bool)
}

// Prober checks the remote detection service.
type Prober interface {
	Health(ctx context.Context) (*inference.ServiceInfo, error)
}

// Config holds the server wiring.
type Config struct {
	Port      string
	StaticDir string

	State     *state.AppState
	Control   SessionControl
	Sound     SoundToggle
	Prober    Prober
	Metrics   http.Handler
	StartedAt time.Time
}

// Server is the dashboard HTTP and websocket server.
type Server struct {
	cfg    Config
	app    *fiber.App
	logger *slog.Logger

	statusHub  *hub.Hub
	overlayHub *hub.Hub
}

// NewServer builds the fiber app and its routes.
func NewServer(cfg Config) *Server {
	if cfg.StaticDir == "" {
		cfg.StaticDir = "./web"
	}
	if cfg.StartedAt.IsZero() {
		cfg.StartedAt = time.Now()
	}

	s := &Server{
		cfg:        cfg,
		logger:     slog.Default().With("component", "web"),
		statusHub:  hub.New("status"),
		overlayHub: hub.New("overlay"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "BorlaCam Dashboard",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())
	app.Static("/", cfg.StaticDir)

	app.Get("/health", s.handleHealth)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/labels", s.handleLabels)
	api.Post("/session/start", s.handleStart)
	api.Post("/session/stop", s.handleStop)
	api.Get("/threshold", s.handleGetThreshold)
	api.Post("/threshold", s.handleSetThreshold)
	api.Get("/history", s.handleHistory)
	api.Delete("/history", s.handleClearHistory)
	api.Get("/sound", s.handleGetSound)
	api.Post("/sound", s.handleSetSound)
	api.Get("/models", s.handleModels)
	api.Post("/models", s.handleSelectModel)

	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/overlay", websocket.New(s.handleOverlayWS))

	s.app = app
	return s
}

// Run starts the hubs and serves until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	go s.statusHub.Run(ctx)
	go s.overlayHub.Run(ctx)

	errc := make(chan error, 1)
	go func() {
		errc <- s.app.Listen(":" + s.cfg.Port)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down dashboard")
		return s.app.Shutdown()
	case err := <-errc:
		return err
	}
}

// PublishFrame broadcasts a rendered overlay frame. Implements the
// overlay sink.
func (s *Server) PublishFrame(jpeg []byte) {
	s.overlayHub.BroadcastBinary(jpeg)
}

// PublishStatus broadcasts a status update. Wired to the state's
// OnStatus hook.
func (s *Server) PublishStatus(st state.Status) {
	s.statusHub.BroadcastJSON(s.statusPayload(st))
}

// handleStatusWS streams status updates to one dashboard client.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	// Push the current view before the live stream starts.
	c.WriteJSON(s.statusPayload(s.cfg.State.Status()))
	hub.NewClient(s.statusHub, c).Run()
}

// handleOverlayWS streams overlay JPEG frames to one dashboard client.
func (s *Server) handleOverlayWS(c *websocket.Conn) {
	hub.NewClient(s.overlayHub, c).Run()
}

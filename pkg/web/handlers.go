package web

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/borlacam/go-borlacam/pkg/diag"
	"github.com/borlacam/go-borlacam/pkg/state"
)

// contextWithTimeout bounds an outbound probe from a handler.
func contextWithTimeout(c *fiber.Ctx, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), d)
}

// statusPayload is the status document served over REST and websocket.
type statusPayload struct {
	state.Status
	Sound  bool        `json:"sound"`
	System diag.Report `json:"system"`
	Uptime float64     `json:"uptimeSeconds"`
}

func (s *Server) statusPayload(st state.Status) statusPayload {
	return statusPayload{
		Status: st,
		Sound:  s.cfg.Sound.Enabled(),
		System: diag.Collect(),
		Uptime: time.Since(s.cfg.StartedAt).Seconds(),
	}
}

// handleHealth reports process liveness and detection-service
// reachability.
func (s *Server) handleHealth(c *fiber.Ctx) error {
	payload := fiber.Map{
		"status":        "ok",
		"uptimeSeconds": time.Since(s.cfg.StartedAt).Seconds(),
	}

	ctx, cancel := contextWithTimeout(c, 3*time.Second)
	defer cancel()
	if info, err := s.cfg.Prober.Health(ctx); err != nil {
		payload["service"] = fiber.Map{"reachable": false, "error": err.Error()}
	} else {
		payload["service"] = fiber.Map{
			"reachable":   true,
			"modelLoaded": info.ModelLoaded,
			"device":      info.Device,
			"gpu":         info.GPU,
		}
	}
	return c.JSON(payload)
}

// handleStatus returns the live session view.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.statusPayload(s.cfg.State.Status()))
}

// handleLabels returns the class labels the detection service reports.
func (s *Server) handleLabels(c *fiber.Ctx) error {
	ctx, cancel := contextWithTimeout(c, 3*time.Second)
	defer cancel()

	info, err := s.cfg.Prober.Health(ctx)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"labels": info.Classes})
}

// handleStart starts the detection session.
func (s *Server) handleStart(c *fiber.Ctx) error {
	s.cfg.Control.Start()
	return c.JSON(fiber.Map{"running": true})
}

// handleStop stops the detection session.
func (s *Server) handleStop(c *fiber.Ctx) error {
	s.cfg.Control.Stop()
	return c.JSON(fiber.Map{"running": false})
}

// handleGetThreshold returns the current confidence threshold.
func (s *Server) handleGetThreshold(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"threshold": s.cfg.State.Threshold()})
}

// thresholdRequest sets an absolute value or nudges by a delta.
type thresholdRequest struct {
	Value *float64 `json:"value"`
	Delta *float64 `json:"delta"`
}

// handleSetThreshold overrides the adaptive threshold. The loop clamps
// the value into its configured bounds.
func (s *Server) handleSetThreshold(c *fiber.Ctx) error {
	var req thresholdRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	var v float64
	switch {
	case req.Value != nil:
		v = *req.Value
	case req.Delta != nil:
		v = s.cfg.State.Threshold() + *req.Delta
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "value or delta required"})
	}

	s.cfg.Control.SetThreshold(v)
	return c.JSON(fiber.Map{"threshold": v})
}

// handleHistory returns the confirmed detection history.
func (s *Server) handleHistory(c *fiber.Ctx) error {
	return c.JSON(s.cfg.State.History())
}

// handleClearHistory drops the history.
func (s *Server) handleClearHistory(c *fiber.Ctx) error {
	s.cfg.State.ClearHistory()
	return c.SendStatus(fiber.StatusNoContent)
}

// handleGetSound reports the announcement toggle.
func (s *Server) handleGetSound(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"enabled": s.cfg.Sound.Enabled()})
}

// soundRequest toggles announcements.
type soundRequest struct {
	Enabled bool `json:"enabled"`
}

// handleSetSound toggles announcements.
func (s *Server) handleSetSound(c *fiber.Ctx) error {
	var req soundRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}
	s.cfg.Sound.SetEnabled(req.Enabled)
	return c.JSON(fiber.Map{"enabled": req.Enabled})
}

// handleModels lists the models the service advertised.
func (s *Server) handleModels(c *fiber.Ctx) error {
	st := s.cfg.State.Status()
	return c.JSON(fiber.Map{
		"available": st.AvailableModels,
		"selected":  st.SelectedModel,
	})
}

// modelRequest selects a model.
type modelRequest struct {
	Name string `json:"name"`
}

// handleSelectModel switches the active model.
func (s *Server) handleSelectModel(c *fiber.Ctx) error {
	var req modelRequest
	if err := c.BodyParser(&req); err != nil || req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name required"})
	}
	if err := s.cfg.State.SelectModel(req.Name); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"selected": req.Name})
}

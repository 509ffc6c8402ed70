// Package state holds the shared application state: the live session
// view served to the dashboard plus the persisted snapshot of history
// and settings. The detection loop is the only writer of session
// fields; dashboard handlers only read or adjust settings.
package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/borlacam/go-borlacam/pkg/detect"
)

// historyMax bounds the persisted detection history.
const historyMax = 50

// Entry is one confirmed detection in the history.
type Entry struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Category string    `json:"category"`
	Score    float64   `json:"score"`
	At       time.Time `json:"at"`
}

// snapshot is the persisted portion of the state. It is written and
// loaded wholesale.
type snapshot struct {
	History             []Entry  `json:"history"`
	SelectedModel       string   `json:"selectedModel"`
	AvailableModels     []string `json:"availableModels"`
	ConfidenceThreshold float64  `json:"confidenceThreshold"`
}

// Status is the live view served to the dashboard.
type Status struct {
	Running         bool               `json:"running"`
	FPS             float64            `json:"fps"`
	Threshold       float64            `json:"threshold"`
	Predictions     []detect.Detection `json:"predictions"`
	ServiceStatus   string             `json:"serviceStatus,omitempty"`
	SelectedModel   string             `json:"selectedModel"`
	AvailableModels []string           `json:"availableModels"`
	HistoryCount    int                `json:"historyCount"`
}

// AppState is the single source of truth shared between the detection
// loop and the dashboard.
type AppState struct {
	store  Store
	clk    clock.Clock
	logger *slog.Logger

	// OnStatus, when set, is invoked after every mutation with the
	// fresh status. The web layer uses it to push updates.
	OnStatus func(Status)

	mu            sync.RWMutex
	running       bool
	fps           float64
	threshold     float64
	predictions   []detect.Detection
	serviceStatus string
	history       []Entry
	selectedModel string
	available     []string
}

// New creates the state and loads any persisted snapshot.
func New(store Store, clk clock.Clock) (*AppState, error) {
	s := &AppState{
		store:  store,
		clk:    clk,
		logger: slog.Default().With("component", "state"),
	}

	data, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("state: load snapshot: %w", err)
	}
	if len(data) > 0 {
		var snap snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("state: parse snapshot: %w", err)
		}
		s.history = snap.History
		s.selectedModel = snap.SelectedModel
		s.available = snap.AvailableModels
		s.threshold = snap.ConfidenceThreshold
	}
	return s, nil
}

// SetRunning records whether the detection loop is active.
func (s *AppState) SetRunning(running bool) {
	s.mu.Lock()
	s.running = running
	if !running {
		s.serviceStatus = ""
	}
	s.mu.Unlock()
	s.notify()
}

// SetFPS records the measured loop rate.
func (s *AppState) SetFPS(fps float64) {
	s.mu.Lock()
	s.fps = fps
	s.mu.Unlock()
	s.notify()
}

// SetThreshold records and persists the confidence threshold.
func (s *AppState) SetThreshold(v float64) {
	s.mu.Lock()
	changed := s.threshold != v
	s.threshold = v
	s.mu.Unlock()
	if changed {
		s.persist()
	}
	s.notify()
}

// SetPredictions replaces the current detections shown on the overlay.
func (s *AppState) SetPredictions(dets []detect.Detection) {
	s.mu.Lock()
	s.predictions = dets
	s.mu.Unlock()
	s.notify()
}

// SetServiceStatus records a transient detection-service failure kind.
func (s *AppState) SetServiceStatus(kind string) {
	s.mu.Lock()
	s.serviceStatus = kind
	s.mu.Unlock()
	s.notify()
}

// ClearServiceStatus resets the failure indicator after a good cycle.
func (s *AppState) ClearServiceStatus() {
	s.mu.Lock()
	cleared := s.serviceStatus != ""
	s.serviceStatus = ""
	s.mu.Unlock()
	if cleared {
		s.notify()
	}
}

// CommitHistory appends a confirmed detection, evicting the oldest
// entry beyond the cap, and persists the snapshot.
func (s *AppState) CommitHistory(d detect.Detection) {
	entry := Entry{
		ID:       uuid.NewString(),
		Label:    d.Label,
		Category: detect.CategoryFor(d.Label),
		Score:    d.Score,
		At:       s.clk.Now(),
	}

	s.mu.Lock()
	s.history = append(s.history, entry)
	if len(s.history) > historyMax {
		s.history = s.history[len(s.history)-historyMax:]
	}
	s.mu.Unlock()

	s.persist()
	s.notify()
}

// History returns a copy of the detection history, newest last.
func (s *AppState) History() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.history))
	copy(out, s.history)
	return out
}

// ClearHistory drops all history entries and persists.
func (s *AppState) ClearHistory() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
	s.persist()
	s.notify()
}

// SetModels records the models advertised by the detection service and
// picks a selected model when none is set or the previous choice is
// gone.
func (s *AppState) SetModels(available []string) {
	s.mu.Lock()
	s.available = available
	if !contains(available, s.selectedModel) {
		s.selectedModel = ""
		if len(available) > 0 {
			s.selectedModel = available[0]
		}
	}
	s.mu.Unlock()
	s.persist()
	s.notify()
}

// SelectModel switches the active model. The model must be one the
// service advertised.
func (s *AppState) SelectModel(name string) error {
	s.mu.Lock()
	if !contains(s.available, name) {
		s.mu.Unlock()
		return fmt.Errorf("state: unknown model %q", name)
	}
	s.selectedModel = name
	s.mu.Unlock()
	s.persist()
	s.notify()
	return nil
}

// SelectedModel returns the active model name.
func (s *AppState) SelectedModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedModel
}

// Threshold returns the current confidence threshold.
func (s *AppState) Threshold() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.threshold
}

// Status returns the live view for the dashboard.
func (s *AppState) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	preds := make([]detect.Detection, len(s.predictions))
	copy(preds, s.predictions)
	models := make([]string, len(s.available))
	copy(models, s.available)
	return Status{
		Running:         s.running,
		FPS:             s.fps,
		Threshold:       s.threshold,
		Predictions:     preds,
		ServiceStatus:   s.serviceStatus,
		SelectedModel:   s.selectedModel,
		AvailableModels: models,
		HistoryCount:    len(s.history),
	}
}

// persist writes the snapshot. Failures are logged, not fatal; the
// live session keeps running without persistence.
func (s *AppState) persist() {
	s.mu.RLock()
	snap := snapshot{
		History:             s.history,
		SelectedModel:       s.selectedModel,
		AvailableModels:     s.available,
		ConfidenceThreshold: s.threshold,
	}
	s.mu.RUnlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		s.logger.Error("snapshot marshal failed", "error", err)
		return
	}
	if err := s.store.Save(data); err != nil {
		s.logger.Warn("snapshot save failed", "error", err)
	}
}

func (s *AppState) notify() {
	if s.OnStatus != nil {
		s.OnStatus(s.Status())
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

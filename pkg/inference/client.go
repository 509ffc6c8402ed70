// Package inference submits webcam frames to the remote waste-detection
// service and normalizes its responses into canonical detection batches.
//
// The service exposes a Flask-style JSON API. Two response dialects are
// in the wild; both are accepted and normalized here so callers only
// ever see detect.Batch.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/borlacam/go-borlacam/internal/httpc"
	"github.com/borlacam/go-borlacam/pkg/detect"
)

// Client is the HTTP detection service client.
type Client struct {
	baseURL string
	config  *Config
	http    *http.Client
	logger  *slog.Logger
}

// ServiceInfo describes the remote service as reported by its status
// endpoint.
type ServiceInfo struct {
	ModelLoaded bool     `json:"model_loaded"`
	Classes     []string `json:"model_classes"`
	Models      []string `json:"available_models"`
	Device      string   `json:"model_device"`
	GPU         bool     `json:"gpu_available"`
}

// NewClient creates a new detection client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.BaseURL == "" {
		return nil, ErrNoEndpoint
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		config:  cfg,
		http:    httpc.NewClient(cfg.Timeout),
		logger:  cfg.Logger.With("component", "inference.client"),
	}, nil
}

// Detect submits one frame and returns the canonical detection batch.
// The frame is downscaled to the configured bounds before transmission.
// On failure the returned batch is empty and the error carries the
// failure kind; the caller recovers locally and keeps the loop alive.
func (c *Client) Detect(ctx context.Context, frame []byte, confidence float64) (detect.Batch, error) {
	start := time.Now()

	encoded, err := normalizeFrame(frame, c.config.MaxWidth, c.config.MaxHeight, c.config.JPEGQuality)
	if err != nil {
		if errors.Is(err, ErrEmptyFrame) {
			return detect.Batch{At: start}, err
		}
		return detect.Batch{At: start}, &ResponseError{Message: err.Error()}
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"image":      encoded,
		"confidence": confidence,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/predict", bytes.NewReader(payload))
	if err != nil {
		return detect.Batch{At: start}, &ResponseError{Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return detect.Batch{At: start}, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return detect.Batch{At: start}, classifyTransportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return detect.Batch{At: start}, &ResponseError{
			StatusCode: resp.StatusCode,
			Message:    serviceErrorMessage(body),
		}
	}

	var result predictResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return detect.Batch{At: start}, &ResponseError{Message: fmt.Sprintf("decode response: %v", err)}
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "service reported failure"
		}
		return detect.Batch{At: start}, &ResponseError{Message: msg}
	}

	batch := result.toBatch(start)
	c.logger.Debug("detection cycle complete",
		"detections", len(batch.Detections),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return batch, nil
}

// Health probes the service status endpoint. Used at startup to record
// the available model classes and to gate the dashboard health view.
func (c *Client) Health(ctx context.Context) (*ServiceInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/status", nil)
	if err != nil {
		return nil, &ResponseError{Message: err.Error()}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Message: serviceErrorMessage(body)}
	}

	var info ServiceInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, &ResponseError{Message: fmt.Sprintf("decode status: %v", err)}
	}
	return &info, nil
}

// classifyTransportError maps transport failures onto the typed taxonomy.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &TimeoutError{Err: err}
	}
	return &ConnectionError{Err: err}
}

// serviceErrorMessage extracts the error field from a failure body,
// falling back to a truncated raw body.
func serviceErrorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	msg := string(body)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

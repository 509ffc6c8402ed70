package inference

import (
	"log/slog"
	"time"
)

// Config holds detection client configuration.
type Config struct {
	// Connection
	BaseURL string // detection service base URL

	// Frame normalization. Frames larger than MaxWidth x MaxHeight are
	// downscaled before transmission to cap payload size and latency.
	MaxWidth    int
	MaxHeight   int
	JPEGQuality int

	// Timeout bounds the whole request including body read.
	Timeout time.Duration

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*Config)

// WithBaseURL sets the detection service base URL.
// Example: "http://localhost:8000"
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithFrameBounds sets the maximum transmitted frame dimensions.
func WithFrameBounds(w, h int) Option {
	return func(c *Config) {
		c.MaxWidth = w
		c.MaxHeight = h
	}
}

// WithJPEGQuality sets the re-encode quality for transmitted frames.
func WithJPEGQuality(q int) Option {
	return func(c *Config) { c.JPEGQuality = q }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns production defaults for the detection service.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "http://localhost:8000",
		MaxWidth:    640,
		MaxHeight:   480,
		JPEGQuality: 80,
		Timeout:     10 * time.Second,
		Logger:      slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

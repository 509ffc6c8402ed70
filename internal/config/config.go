// Package config provides configuration helpers for go-borlacam commands.
package config

import (
	"os"
	"strconv"
)

// Defaults for the detection client.
const (
	DefaultAPIURL       = "http://localhost:8000"
	DefaultPort         = "8080"
	DefaultSnapshotPath = "borlacam_state.json"
)

// APIURL returns the detection service base URL from BORLA_API_URL.
// Falls back to the local development server if not set.
func APIURL() string {
	if url := os.Getenv("BORLA_API_URL"); url != "" {
		return url
	}
	return DefaultAPIURL
}

// Port returns the dashboard listen port from BORLA_PORT or the default.
func Port() string {
	if port := os.Getenv("BORLA_PORT"); port != "" {
		return port
	}
	return DefaultPort
}

// SnapshotPath returns the persisted state file path from BORLA_SNAPSHOT
// or the default next to the working directory.
func SnapshotPath() string {
	if path := os.Getenv("BORLA_SNAPSHOT"); path != "" {
		return path
	}
	return DefaultSnapshotPath
}

// CameraIndex returns the capture device index from BORLA_CAMERA.
// An unset or malformed value selects device 0.
func CameraIndex() int {
	idx, err := strconv.Atoi(os.Getenv("BORLA_CAMERA"))
	if err != nil || idx < 0 {
		return 0
	}
	return idx
}

// GoogleTTSKey returns the Google Cloud TTS API key, empty if speech
// synthesis should fall back to tones.
func GoogleTTSKey() string {
	return os.Getenv("GOOGLE_TTS_API_KEY")
}

// BorlaCam - waste detection client with spoken announcements.
// Captures webcam frames, queries the remote detection service and
// serves a live dashboard with an annotated overlay stream.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/borlacam/go-borlacam/internal/config"
	"github.com/borlacam/go-borlacam/internal/log"
	"github.com/borlacam/go-borlacam/pkg/app"
)

func main() {
	godotenv.Load()

	cfg, logLevel := parseFlags()
	log.Init(logLevel)

	a, err := app.New(cfg)
	if err != nil {
		log.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		log.Error("runtime error", "error", err)
		os.Exit(1)
	}
}

// parseFlags resolves configuration from flags and environment.
func parseFlags() (app.Config, string) {
	apiURL := flag.String("api", config.APIURL(), "Detection service base URL")
	port := flag.String("port", config.Port(), "Dashboard listen port")
	camera := flag.Int("camera", config.CameraIndex(), "Capture device index")
	snapshot := flag.String("snapshot", config.SnapshotPath(), "Persisted state file")
	mode := flag.String("mode", "fast", "Session preset: fast, paced, precision")
	still := flag.String("still", "", "Replay a JPEG file instead of opening a camera")
	staticDir := flag.String("static", "./web", "Dashboard static assets directory")
	autoStart := flag.Bool("autostart", false, "Start detection immediately")
	logLevel := flag.String("log-level", os.Getenv("LOG_LEVEL"), "Log level: debug, info, warn, error")
	flag.Parse()

	return app.Config{
		APIURL:       *apiURL,
		Port:         *port,
		CameraIndex:  *camera,
		SnapshotPath: *snapshot,
		GoogleTTSKey: config.GoogleTTSKey(),
		StaticDir:    *staticDir,
		Mode:         *mode,
		StillPath:    *still,
		AutoStart:    *autoStart,
	}, *logLevel
}

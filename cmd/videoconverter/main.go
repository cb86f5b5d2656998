// Command videoconverter converts a single video, or every video under a
// directory tree, to flv, ogv, mp4 and webm using mediainfo and ffmpeg.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/kubes/videoconverter/internal/check"
	"github.com/kubes/videoconverter/internal/config"
	"github.com/kubes/videoconverter/internal/display"
	"github.com/kubes/videoconverter/internal/logging"
	"github.com/kubes/videoconverter/internal/pipeline"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

// Exit codes. Per-file conversion failures are logged, not reflected here.
const (
	exitOK      = 0
	exitNoInput = 1 // EPERM
	exitUsage   = 5 // EIO
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// Phase 1: bootstrap. No logger yet, errors go straight to stderr.
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg, args, stdout, version); err != nil {
		switch {
		case errors.Is(err, config.ErrHelp), errors.Is(err, config.ErrVersion):
			return exitOK
		case errors.Is(err, config.ErrUsage):
			fmt.Fprintf(stderr, "videoconverter: %v\n", err)
			fmt.Fprintln(stderr, "Run 'videoconverter --help' for usage.")
			return exitUsage
		}
		fmt.Fprintf(stderr, "videoconverter: %v\n", err)
		return exitNoInput
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "videoconverter: %v\n", err)
		if errors.Is(err, config.ErrNoInput) {
			fmt.Fprintln(stderr, "Run 'videoconverter --help' for usage.")
		}
		return exitNoInput
	}

	base, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(stderr, "videoconverter: %v\n", err)
		return exitNoInput
	}
	defer base.Close()
	runID := uuid.NewString()
	log := base.With(logging.FieldRunID, runID)

	// Phase 2: logger available.
	display.PrintBanner(stdout, version)

	if cfg.CheckOnly {
		if !check.RunCheck(context.Background(), &cfg, log) {
			return exitNoInput
		}
		return exitOK
	}

	log.Info("=== videoconverter v%s (%s) ===", version, commit)

	// Phase 3: cancel on SIGINT/SIGTERM. Running conversions are stopped
	// and no new files are started.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Missing tools surface again as per-file failures, so this only warns.
	if err := check.CheckDeps(ctx, &cfg); err != nil {
		log.Warn("Dependency check: %v", err)
	}

	var metrics *pipeline.Metrics
	if cfg.MetricsFile != "" {
		metrics = pipeline.NewMetrics()
	}
	deps := pipeline.Deps{Out: stdout, Metrics: metrics}

	// Phase 4: convert.
	started := time.Now()
	var stats pipeline.RunStats
	if cfg.Batch() {
		stats = pipeline.Run(ctx, &cfg, log, deps)
	} else {
		stats = pipeline.RunSingle(ctx, &cfg, log, deps)
	}

	if cfg.ReportFile != "" {
		report := pipeline.NewReport(runID, started, time.Now(), &cfg, stats)
		if err := pipeline.WriteReport(cfg.ReportFile, report); err != nil {
			log.Error("Writing report %s: %v", cfg.ReportFile, err)
		} else {
			log.Info("Report written: %s", cfg.ReportFile)
		}
	}
	if metrics != nil {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			log.Error("Writing metrics %s: %v", cfg.MetricsFile, err)
		}
	}
	return exitOK
}

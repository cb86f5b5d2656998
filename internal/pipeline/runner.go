package pipeline

import (
	"context"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kubes/videoconverter/internal/config"
	"github.com/kubes/videoconverter/internal/display"
	"github.com/kubes/videoconverter/internal/ffmpeg"
	"github.com/kubes/videoconverter/internal/logging"
	"github.com/kubes/videoconverter/internal/probe"
)

// Deps are the collaborators of a run. Nil fields are filled from cfg:
// the mediainfo prober, the ffmpeg executor and stdout. Metrics stays nil
// unless the caller wants them.
type Deps struct {
	Prober  Prober
	Runner  ffmpeg.Runner
	Out     io.Writer // Interactive stream for progress lines.
	Metrics *Metrics
}

func (d Deps) withDefaults(cfg *config.Config) Deps {
	if d.Prober == nil {
		d.Prober = probe.Prober{Binary: cfg.ProbeBin, Timeout: cfg.ProbeTimeout}
	}
	if d.Runner == nil {
		ex := ffmpeg.Executor{Timeout: cfg.TranscodeTimeout}
		// ffmpeg's own output is shown only for sequential runs.
		if cfg.Workers <= 1 {
			ex.Tee = os.Stderr
		}
		d.Runner = ex
	}
	if d.Out == nil {
		d.Out = os.Stdout
	}
	return d
}

// Run is the batch entry point. It discovers files under cfg.InputDir,
// converts them through a pool of cfg.Workers workers in sorted order and
// returns aggregate stats. A failed file never stops the batch; cancelling
// ctx stops dispatching new files.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, deps Deps) RunStats {
	deps = deps.withDefaults(cfg)
	var c statsCollector

	files, err := Discover(cfg.InputDir, func(path string, err error) {
		log.Warn("Skipping unreadable path %s: %v", path, err)
	})
	if err != nil {
		log.Error("File discovery failed: %v", err)
		return c.snapshot()
	}
	plan := BuildPlan(files, cfg.InputDir, cfg.OutputDir)
	total := len(plan)
	c.setTotal(total)
	logBatchHeader(cfg, log, total)

	conv := NewConverter(cfg, log, deps)
	prog := display.NewProgress(deps.Out, total)

	var g errgroup.Group
	g.SetLimit(max(cfg.Workers, 1))
	for i, entry := range plan {
		if ctx.Err() != nil {
			log.Warn("Interrupted, %d of %d files not started", total-i, total)
			break
		}
		index := i + 1
		g.Go(func() error {
			prog.Start(index, entry.Source)
			log.Info("Starting %d of %d: %s", index, total, entry.Source)
			res := conv.Convert(ctx, entry.Source, entry.OutputDir)
			done := c.record(res, fileSize(entry.Source))
			log.Info("Finished %d of %d", index, total)
			prog.Done(done)
			return nil
		})
	}
	_ = g.Wait()

	stats := c.snapshot()
	logSummary(cfg, log, &stats)
	return stats
}

// RunSingle converts cfg.InputFile. Outputs go to cfg.OutputDir, or next to
// the file when that is empty.
func RunSingle(ctx context.Context, cfg *config.Config, log *logging.Logger, deps Deps) RunStats {
	deps = deps.withDefaults(cfg)
	var c statsCollector
	c.setTotal(1)

	conv := NewConverter(cfg, log, deps)
	res := conv.Convert(ctx, cfg.InputFile, cfg.OutputDir)
	c.record(res, fileSize(cfg.InputFile))

	stats := c.snapshot()
	logSummary(cfg, log, &stats)
	return stats
}

func fileSize(path string) int64 {
	fi, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, total int) {
	log.Info("Found %d files in %s", total, cfg.InputDir)
	formats := make([]string, len(cfg.Formats))
	for i, f := range cfg.Formats {
		formats[i] = string(f)
	}
	log.Info("Formats: %s", strings.Join(formats, ", "))
	if cfg.OutputDir != "" {
		log.Info("Output root: %s", cfg.OutputDir)
	}
	if cfg.Workers > 1 {
		log.Info("Workers: %d", cfg.Workers)
	}
	if cfg.DryRun {
		log.Warn("Dry run: no files will be written")
	}
}

func logSummary(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d converted, %d ignored, %d failed", stats.Converted, stats.Ignored, stats.Failed)
	log.Info("Conversions: %d done, %d skipped (existing), %d failed",
		stats.Conversions, stats.ConversionsSkipped, stats.ConversionsFailed)
	log.Info("  Total files processed: %d of %d", stats.Current, stats.Total)

	if cfg.DryRun {
		log.Info("  Output written: n/a (dry run)")
		return
	}
	if stats.Failed == 0 {
		log.Success("  Output written: %s from %s of sources",
			display.FormatBytes(stats.TotalOutputBytes),
			display.FormatBytes(stats.TotalInputBytes))
	} else {
		log.Warn("  Output written: %s from %s of sources (%d files failed)",
			display.FormatBytes(stats.TotalOutputBytes),
			display.FormatBytes(stats.TotalInputBytes),
			stats.Failed)
	}
}

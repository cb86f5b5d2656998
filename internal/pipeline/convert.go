package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kubes/videoconverter/internal/config"
	"github.com/kubes/videoconverter/internal/display"
	"github.com/kubes/videoconverter/internal/ffmpeg"
	"github.com/kubes/videoconverter/internal/logging"
	"github.com/kubes/videoconverter/internal/naming"
	"github.com/kubes/videoconverter/internal/planner"
	"github.com/kubes/videoconverter/internal/probe"
)

// Prober reads the media properties of one file. probe.Prober is the real
// implementation.
type Prober interface {
	Probe(ctx context.Context, path string) (probe.Media, error)
}

// Converter runs the per-file protocol: probe, derive, then for each
// format transcode into a temp file, rotate any backup and move the result
// into place.
type Converter struct {
	cfg     *config.Config
	log     *logging.Logger
	prober  Prober
	runner  ffmpeg.Runner
	fs      fsOps
	locks   *naming.PathLocks
	metrics *Metrics
}

// NewConverter wires a Converter from cfg and deps. Zero-valued deps get
// the real mediainfo prober and ffmpeg executor.
func NewConverter(cfg *config.Config, log *logging.Logger, deps Deps) *Converter {
	deps = deps.withDefaults(cfg)
	return &Converter{
		cfg:     cfg,
		log:     log,
		prober:  deps.Prober,
		runner:  deps.Runner,
		fs:      newFS(cfg.DryRun),
		locks:   naming.NewPathLocks(),
		metrics: deps.Metrics,
	}
}

// Convert converts source into every configured format, writing finals to
// outputDir (the source's directory when empty). The first error aborts the
// remaining formats; finished formats are kept.
func (c *Converter) Convert(ctx context.Context, source, outputDir string) FileResult {
	sourceDir := filepath.Dir(source)
	if outputDir == "" {
		outputDir = sourceDir
	}
	res := FileResult{Source: source, OutputDir: outputDir}
	log := c.log.With(logging.FieldFile, source)

	stem, ok := naming.Stem(filepath.Base(source))
	if !ok {
		log.Warn("Ignoring %s: name must have exactly one extension", source)
		res.Ignored = true
		c.metrics.observeFile(res)
		return res
	}

	res.Err = c.convert(ctx, log, &res, sourceDir, stem)
	if res.Err != nil {
		logFailure(log, source, res.Err)
	}
	c.metrics.observeFile(res)
	return res
}

func (c *Converter) convert(ctx context.Context, log *logging.Logger, res *FileResult, sourceDir, stem string) error {
	if !pathExists(res.OutputDir) {
		log.Info("Creating output directory: %s", res.OutputDir)
		if err := c.fs.MkdirAll(res.OutputDir); err != nil {
			return &ffmpeg.Error{Kind: ffmpeg.KindFilesystem, Step: "mkdir", Path: res.Source, Err: err}
		}
	}

	// Probed even in dry-run so the logged commands carry real parameters.
	media, err := c.prober.Probe(ctx, res.Source)
	if err != nil {
		return ffmpeg.ProbeError(res.Source, err)
	}
	params, err := planner.Derive(c.cfg.Policy, media)
	if err != nil {
		return ffmpeg.ProbeError(res.Source, err)
	}
	res.Params = &params
	log.Debug("Parameters: %s", params.Summary())

	name := naming.OutputName(c.cfg.Prefix, stem)
	for _, format := range c.cfg.Formats {
		if err := ctx.Err(); err != nil {
			return &ffmpeg.Error{Kind: ffmpeg.KindProcess, Step: "transcode", Path: res.Source, Format: format, Err: err}
		}
		paths := naming.OutputPaths(sourceDir, res.OutputDir, name, format)
		fr := c.convertFormat(ctx, log.With(logging.FieldFormat, string(format)), res.Source, format, paths, params)
		res.Formats = append(res.Formats, fr)
		c.metrics.observeConversion(fr)
		if fr.Err != nil {
			return fr.Err
		}
	}
	return nil
}

// convertFormat produces one format. The final path stays locked from the
// existence check through the move.
func (c *Converter) convertFormat(
	ctx context.Context,
	log *logging.Logger,
	source string,
	format config.Format,
	paths naming.Paths,
	params planner.Params,
) FormatResult {
	fr := FormatResult{Format: format, Output: paths.Final}
	fail := func(kind ffmpeg.Kind, step string, err error) FormatResult {
		if rmErr := c.fs.Remove(paths.Temp); rmErr != nil {
			log.Warn("Cannot remove temp file %s: %v", paths.Temp, rmErr)
		}
		var fe *ffmpeg.Error
		if !errors.As(err, &fe) {
			fe = &ffmpeg.Error{Kind: kind, Step: step, Path: source, Format: format, Err: err}
		}
		fr.Outcome = OutcomeFailed
		fr.Err = fe
		return fr
	}

	unlock := c.locks.Lock(paths.Final)
	defer unlock()

	if c.cfg.SkipExisting && pathExists(paths.Final) {
		log.Info("Skipping conversion of existing file %s", paths.Final)
		fr.Outcome = OutcomeSkipped
		return fr
	}

	argv, err := ffmpeg.Build(format, ffmpeg.Job{
		Binary:    c.cfg.FFmpegBin,
		Input:     source,
		Output:    paths.Temp,
		Verbosity: c.cfg.Verbosity,
		Params:    params,
	})
	if err != nil {
		return fail(ffmpeg.KindConfig, "build", err)
	}

	log.Info("Conversion: %s", strings.Join(argv, " "))
	if !c.cfg.DryRun {
		d, err := c.transcode(ctx, log, source, format, paths.Temp, argv)
		fr.Duration = d
		if err != nil {
			return fail(ffmpeg.KindProcess, "transcode", err)
		}
	}

	if c.cfg.Backup && pathExists(paths.Final) {
		if pathExists(paths.Backup) {
			log.Info("Removing backup: %s", paths.Backup)
			if err := c.fs.Remove(paths.Backup); err != nil {
				return fail(ffmpeg.KindFilesystem, "backup", err)
			}
		}
		log.Info("Backup existing: %s -> %s", paths.Final, paths.Backup)
		if err := c.fs.Rename(paths.Final, paths.Backup); err != nil {
			return fail(ffmpeg.KindFilesystem, "backup", err)
		}
	}

	log.Info("Moving output: %s -> %s", paths.Temp, paths.Final)
	if err := c.fs.Rename(paths.Temp, paths.Final); err != nil {
		return fail(ffmpeg.KindFilesystem, "move", err)
	}

	if c.cfg.DryRun {
		fr.Outcome = OutcomeDryRun
		return fr
	}
	fr.Outcome = OutcomeConverted
	if fi, err := os.Stat(paths.Final); err == nil {
		fr.Bytes = fi.Size()
	}
	log.Debug("Converted %s: %s in %s", format, display.FormatBytes(fr.Bytes), display.FormatDuration(fr.Duration))
	return fr
}

// transcode runs argv, retrying transient failures within the configured
// budget. The partial temp file is removed before each retry.
func (c *Converter) transcode(
	ctx context.Context,
	log *logging.Logger,
	source string,
	format config.Format,
	temp string,
	argv []string,
) (time.Duration, error) {
	rs := ffmpeg.NewRetryState(c.cfg.Retries)
	var total time.Duration
	for {
		res := c.runner.Run(ctx, argv)
		total += res.Duration
		if res.Err == nil {
			return total, nil
		}
		err := &ffmpeg.Error{
			Kind:   ffmpeg.KindProcess,
			Step:   "transcode",
			Path:   source,
			Format: format,
			Stderr: res.Stderr,
			Err:    res.Err,
		}
		if !rs.Advance(err) {
			return total, err
		}
		log.Warn("Retry %d/%d: %v", rs.Attempt, rs.MaxRetries, res.Err)
		if rmErr := c.fs.Remove(temp); rmErr != nil {
			log.Warn("Cannot remove temp file %s: %v", temp, rmErr)
		}
	}
}

func logFailure(log *logging.Logger, source string, err error) {
	kv := []string{logging.FieldKind, ffmpeg.KindOf(err).String()}
	var fe *ffmpeg.Error
	if errors.As(err, &fe) {
		kv = append(kv, logging.FieldStep, fe.Step)
		if fe.Format != "" {
			kv = append(kv, logging.FieldFormat, string(fe.Format))
		}
	}
	log.ErrorErr(err, "Error converting: "+source, kv...)
	if fe != nil {
		logStderr(log, fe.Stderr)
	}
}

// logStderr logs the last lines of a failed tool's output.
func logStderr(log *logging.Logger, stderr string) {
	if stderr == "" {
		return
	}
	log.Error("Last ffmpeg output:")
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	start := 0
	if len(lines) > 20 {
		start = len(lines) - 20
	}
	for _, l := range lines[start:] {
		log.Error("  %s", l)
	}
}

// Package check provides system diagnostics (--check mode) and the
// pre-run dependency check (CheckDeps) for ffmpeg, mediainfo and the
// encoders each output format needs.
package check

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kubes/videoconverter/internal/config"
	"github.com/kubes/videoconverter/internal/ffmpeg"
)

// Sentinel errors returned by CheckDeps when a required tool or encoder is missing.
var (
	ErrFFmpegNotFound    = errors.New("ffmpeg not found")
	ErrMediainfoNotFound = errors.New("mediainfo not found")
	ErrEncoderMissing    = errors.New("ffmpeg encoder missing")
)

// toolTimeout bounds each diagnostic command.
const toolTimeout = 10 * time.Second

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// stays testable with a recording logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// RunCheck runs the --check flow: tool versions, then per requested format
// whether its encoders are available. It reports whether everything a real
// conversion needs is present.
func RunCheck(ctx context.Context, cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")

	ok := checkTool(ctx, log, "ffmpeg", cfg.FFmpegBin, "-version")
	ok = checkTool(ctx, log, "mediainfo", cfg.ProbeBin, "--Version") && ok
	if !ok {
		return false
	}

	available, err := ListEncoders(ctx, cfg.FFmpegBin)
	if err != nil {
		log.Error("Could not list encoders: %v", err)
		return false
	}
	for _, f := range cfg.Formats {
		missing := MissingEncoders([]config.Format{f}, available)
		if len(missing) == 0 {
			log.Success("%s: %s", f, strings.Join(ffmpeg.RequiredEncoders(f), ", "))
			continue
		}
		log.Error("%s: missing %s", f, strings.Join(missing, ", "))
		ok = false
	}
	return ok
}

// checkTool verifies bin runs and logs the last line of its version output.
func checkTool(ctx context.Context, log Logger, name, bin, versionFlag string) bool {
	if _, err := exec.LookPath(bin); err != nil {
		log.Error("%s not found: %s", name, bin)
		return false
	}
	out, err := output(ctx, bin, versionFlag)
	if err != nil {
		log.Warn("%s found but %s failed: %v", name, versionFlag, err)
		return true
	}
	log.Success("%s: %s", name, versionLine(out))
	return true
}

// CheckDeps is the pre-run validation: mediainfo must exist, and unless
// cfg.DryRun ffmpeg must exist and provide every encoder the requested
// formats use. Returns a wrapped sentinel error on failure.
func CheckDeps(ctx context.Context, cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.ProbeBin); err != nil {
		return fmt.Errorf("%w: %s", ErrMediainfoNotFound, cfg.ProbeBin)
	}
	if cfg.DryRun {
		return nil
	}
	if _, err := exec.LookPath(cfg.FFmpegBin); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, cfg.FFmpegBin)
	}
	available, err := ListEncoders(ctx, cfg.FFmpegBin)
	if err != nil {
		return err
	}
	if missing := MissingEncoders(cfg.Formats, available); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrEncoderMissing, strings.Join(missing, ", "))
	}
	return nil
}

// ListEncoders runs "ffmpeg -hide_banner -encoders" and returns the set of
// encoder names.
func ListEncoders(ctx context.Context, bin string) (map[string]bool, error) {
	out, err := output(ctx, bin, "-hide_banner", "-encoders")
	if err != nil {
		return nil, fmt.Errorf("list encoders: %w", err)
	}
	return ParseEncoders(out), nil
}

// ParseEncoders extracts encoder names from ffmpeg's -encoders listing:
// the second column of every row after the "------" separator.
func ParseEncoders(out string) map[string]bool {
	encoders := make(map[string]bool)
	inTable := false
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if !inTable {
			inTable = strings.HasPrefix(fields[0], "---")
			continue
		}
		if len(fields) >= 2 {
			encoders[fields[1]] = true
		}
	}
	return encoders
}

// MissingEncoders returns the encoders formats need that are not in
// available, each listed once in first-use order.
func MissingEncoders(formats []config.Format, available map[string]bool) []string {
	var missing []string
	seen := make(map[string]bool)
	for _, f := range formats {
		for _, enc := range ffmpeg.RequiredEncoders(f) {
			if available[enc] || seen[enc] {
				continue
			}
			seen[enc] = true
			missing = append(missing, enc)
		}
	}
	return missing
}

// --- internal helpers ---

// output runs a command under toolTimeout and returns its stdout.
func output(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, toolTimeout)
	defer cancel()
	// #nosec G204 -- binary path comes from operator configuration
	out, err := exec.CommandContext(ctx, name, args...).Output()
	return string(out), err
}

// versionLine picks the most specific line of a version banner: ffmpeg puts
// it first, mediainfo last.
func versionLine(out string) string {
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return "unknown version"
	}
	for _, l := range lines {
		if strings.Contains(strings.ToLower(l), "version") || strings.Contains(l, " - v") {
			return l
		}
	}
	return lines[len(lines)-1]
}

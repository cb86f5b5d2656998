// Package config holds runtime configuration: defaults, CLI flag parsing,
// the encode policy, and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// Format is an output format tag. Each tag maps to one fixed ffmpeg
// codec/container profile.
type Format string

const (
	FormatFLV  Format = "flv"  // Flash video (flv1 + mono audio).
	FormatMP4  Format = "mp4"  // H.264 baseline + AAC, iOS playable.
	FormatWebM Format = "webm" // VP8 + Vorbis.
	FormatOGV  Format = "ogv"  // Theora + Vorbis in an Ogg container.
)

// DefaultFormats is the format order used when none are requested.
var DefaultFormats = []Format{FormatFLV, FormatOGV, FormatMP4, FormatWebM}

// ParseFormat maps a tag (case-insensitive, trimmed) to a Format.
func ParseFormat(s string) (Format, bool) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatFLV:
		return FormatFLV, true
	case FormatMP4:
		return FormatMP4, true
	case FormatWebM:
		return FormatWebM, true
	case FormatOGV:
		return FormatOGV, true
	}
	return "", false
}

// ParseFormatList splits a comma-separated tag list. Unknown tags are
// dropped and duplicates keep their first position.
func ParseFormatList(raw string) []Format {
	var out []Format
	seen := make(map[Format]bool)
	for _, part := range strings.Split(raw, ",") {
		f, ok := ParseFormat(part)
		if !ok || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Sentinel validation errors. The CLI maps ErrNoInput to its own exit code.
var (
	ErrNoInput        = errors.New("a root directory or a single video file is required for conversion")
	ErrUnknownFormat  = errors.New("unknown output format")
	ErrInvalidWorkers = errors.New("workers must be at least 1")
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// overridden by [ParseFlags], and checked by [Config.Validate]. The
// pipeline treats it as read-only.
type Config struct {
	// Inputs. InputDir wins when both are set.
	InputDir  string
	InputFile string
	OutputDir string // Empty: write next to each source file.
	Prefix    string // Prepended to every output file name.

	// Behavior flags.
	DryRun       bool
	SkipExisting bool // -e: leave an existing final output alone.
	Backup       bool // -b: rotate an existing final output to .bak.

	// ffmpeg settings.
	Verbosity string   // Passed through as ffmpeg -v. Default: "verbose".
	Formats   []Format // Request order, de-duplicated.
	FFmpegBin string
	ProbeBin  string // mediainfo binary.

	// Execution bounds.
	Workers          int           // Default: 1 (sequential).
	ProbeTimeout     time.Duration // Default: 2m.
	TranscodeTimeout time.Duration // Default: 0 (unbounded).
	Retries          int           // Retries for transient process failures. Default: 0.

	// Encode policy and its optional YAML source.
	PolicyFile string
	Policy     Policy

	// CheckOnly runs tool diagnostics instead of converting.
	CheckOnly bool

	// Display, logging and run artifacts.
	Debug       bool
	ColorMode   ColorMode
	LogFile     string
	ReportFile  string // JSON run report.
	MetricsFile string // Prometheus textfile.
}

// DefaultConfig returns a Config with the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Verbosity:        "verbose",
		Formats:          append([]Format(nil), DefaultFormats...),
		FFmpegBin:        "/usr/local/bin/ffmpeg",
		ProbeBin:         "/usr/bin/mediainfo",
		Workers:          1,
		ProbeTimeout:     2 * time.Minute,
		TranscodeTimeout: 0,
		Retries:          0,
		Policy:           DefaultPolicy(),
		ColorMode:        ColorAuto,
	}
}

// Batch reports whether the config describes a directory run.
func (c *Config) Batch() bool { return c.InputDir != "" }

// Validate checks enum and numeric fields, then resolves the input unless
// CheckOnly is set. Input paths are made absolute. It returns ErrNoInput
// when neither a readable input directory nor a readable file was given.
func (c *Config) Validate() error {
	if len(c.Formats) == 0 {
		c.Formats = append([]Format(nil), DefaultFormats...)
	}
	for _, f := range c.Formats {
		if _, ok := ParseFormat(string(f)); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
	}
	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}
	if c.Workers < 1 {
		return ErrInvalidWorkers
	}
	if c.Retries < 0 {
		return errors.New("retries must not be negative")
	}
	if c.ProbeTimeout < 0 || c.TranscodeTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.FFmpegBin == "" || c.ProbeBin == "" {
		return errors.New("ffmpeg and mediainfo paths must not be empty")
	}
	if err := c.Policy.Validate(); err != nil {
		return err
	}
	if c.CheckOnly {
		return nil
	}
	return c.resolveInput()
}

// resolveInput makes input paths absolute and checks that the selected
// input exists with the right type.
func (c *Config) resolveInput() error {
	if c.InputDir != "" {
		abs, err := filepath.Abs(NormalizeDirArg(c.InputDir))
		if err == nil {
			if fi, err := os.Stat(abs); err == nil && fi.IsDir() {
				c.InputDir = abs
				return c.resolveOutput()
			}
		}
		c.InputDir = ""
	}
	if c.InputFile != "" {
		abs, err := filepath.Abs(c.InputFile)
		if err == nil {
			if fi, err := os.Stat(abs); err == nil && fi.Mode().IsRegular() {
				c.InputFile = abs
				return c.resolveOutput()
			}
		}
	}
	return ErrNoInput
}

func (c *Config) resolveOutput() error {
	if c.OutputDir == "" {
		return nil
	}
	abs, err := filepath.Abs(NormalizeDirArg(c.OutputDir))
	if err != nil {
		return fmt.Errorf("resolve output dir: %w", err)
	}
	c.OutputDir = abs
	return nil
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Package term provides ANSI color state and terminal detection.
//
// Colors are package-level state because logging and display both need
// them. [Configure] sets them once during startup.
package term

import (
	"os"
	"strings"
	"sync/atomic"

	"github.com/mattn/go-isatty"

	"github.com/kubes/videoconverter/internal/config"
)

var enabled atomic.Bool

// Configure resolves the color mode and records whether ANSI colors are
// active. Call once during startup (from [logging.NewLogger]).
func Configure(mode config.ColorMode) {
	enabled.Store(resolve(mode, os.Stdout))
}

// Enabled reports whether ANSI colors are currently active.
func Enabled() bool { return enabled.Load() }

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode, f *os.File) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(f) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY, including Cygwin/MSYS
// pseudo terminals.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

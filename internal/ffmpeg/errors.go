package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/kubes/videoconverter/internal/config"
	"github.com/kubes/videoconverter/internal/planner"
	"github.com/kubes/videoconverter/internal/probe"
)

// Kind classifies a per-file failure.
type Kind int

const (
	KindUnknown    Kind = iota
	KindProbe           // Required media property missing or malformed.
	KindProcess         // mediainfo or ffmpeg failed, timed out, or could not start.
	KindFilesystem      // mkdir, rename or remove failed.
	KindConfig          // Programming or configuration error, e.g. unknown format.
)

func (k Kind) String() string {
	switch k {
	case KindProbe:
		return "probe"
	case KindProcess:
		return "process"
	case KindFilesystem:
		return "filesystem"
	case KindConfig:
		return "config"
	}
	return "unknown"
}

// Error is the tagged failure returned for one (file, format, step).
type Error struct {
	Kind   Kind
	Step   string // "probe", "transcode", "backup", "move", ...
	Path   string // Source file.
	Format config.Format
	Stderr string // Tail of the tool's stderr, process errors only.
	Err    error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Step)
	b.WriteString(" ")
	b.WriteString(e.Path)
	if e.Format != "" {
		fmt.Fprintf(&b, " [%s]", e.Format)
	}
	b.WriteString(": ")
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString(e.Kind.String() + " error")
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether repeating the step could succeed: only process
// failures caused by a timeout, a signal kill, or a transient I/O condition
// in stderr. Cancellation and all data errors are permanent.
func (e *Error) Retryable() bool {
	if e.Kind != KindProcess {
		return false
	}
	if errors.Is(e.Err, context.Canceled) {
		return false
	}
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) && exitErr.ProcessState != nil && exitErr.ProcessState.ExitCode() == -1 {
		return true
	}
	return MatchTransient(e.Stderr)
}

// IsRetryable reports whether err is an *Error that is Retryable.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable()
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ProbeError tags a probe or derive failure: data errors are KindProbe,
// anything else came from running mediainfo.
func ProbeError(path string, err error) *Error {
	kind := KindProcess
	if errors.Is(err, probe.ErrMissingProperty) ||
		errors.Is(err, probe.ErrMalformedProperty) ||
		errors.Is(err, planner.ErrInvalidDimensions) {
		kind = KindProbe
	}
	return &Error{Kind: kind, Step: "probe", Path: path, Err: err}
}

// reTransient matches stderr lines for conditions that may clear on a
// second attempt.
var reTransient = regexp.MustCompile(
	`(?i)Resource temporarily unavailable|` +
		`Cannot allocate memory|` +
		`Input/output error|` +
		`Connection reset by peer`)

// MatchTransient reports whether stderr contains a transient failure.
func MatchTransient(stderr string) bool {
	return reTransient.MatchString(stderr)
}

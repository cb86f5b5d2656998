// Package logging provides the leveled logger used across the converter.
// It keeps a printf-style surface (Info, Success, Warn, Error, Debug) on
// top of zerolog so call sites stay short while entries still carry
// structured fields such as run_id, file and format.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/kubes/videoconverter/internal/config"
	"github.com/kubes/videoconverter/internal/term"
)

const timeFormat = "2006-01-02 15:04:05"

// Logger writes human-readable entries to stdout (errors to stderr) and,
// optionally, appends uncolored entries to a log file. Child loggers made
// with [Logger.With] share the parent's sinks.
type Logger struct {
	zl    zerolog.Logger
	sinks *sinks
}

type sinks struct {
	mu   sync.Mutex
	file *os.File
}

// NewLogger configures colors from cfg and opens cfg.LogFile for append
// when set. Call Close when done.
func NewLogger(cfg *config.Config) (*Logger, error) {
	term.Configure(cfg.ColorMode)
	noColor := !term.Enabled()

	stdout := consoleWriter(os.Stdout, noColor)
	stderr := consoleWriter(os.Stderr, noColor)
	writers := []io.Writer{levelSplitWriter{out: stdout, err: stderr}}

	s := &sinks{}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return nil, err
		}
		// #nosec G304 -- log path is supplied by the operator
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		s.file = f
		writers = append(writers, consoleWriter(f, true))
	}

	return build(zerolog.MultiLevelWriter(writers...), cfg.Debug, s), nil
}

// New returns a logger writing uncolored entries to w. Writes are
// serialized, so w need not be goroutine-safe.
func New(w io.Writer, debug bool) *Logger {
	return build(consoleWriter(zerolog.SyncWriter(w), true), debug, &sinks{})
}

func build(w io.Writer, debug bool, s *sinks) *Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(w).Level(level).With().Timestamp().Logger()
	return &Logger{zl: zl, sinks: s}
}

func consoleWriter(w io.Writer, noColor bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{Out: w, NoColor: noColor, TimeFormat: timeFormat}
}

// levelSplitWriter sends error-level entries to err and everything else to out.
type levelSplitWriter struct {
	out io.Writer
	err io.Writer
}

func (w levelSplitWriter) Write(p []byte) (int, error) { return w.out.Write(p) }

func (w levelSplitWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level >= zerolog.ErrorLevel {
		return w.err.Write(p)
	}
	return w.out.Write(p)
}

// With returns a child logger that adds key=value to every entry.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger(), sinks: l.sinks}
}

// Close closes the log file if one was opened.
func (l *Logger) Close() error {
	l.sinks.mu.Lock()
	defer l.sinks.mu.Unlock()
	if l.sinks.file != nil {
		err := l.sinks.file.Close()
		l.sinks.file = nil
		return err
	}
	return nil
}

// DebugEnabled reports whether Debug entries are written.
func (l *Logger) DebugEnabled() bool {
	return l.zl.GetLevel() <= zerolog.DebugLevel
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

// Success logs at INFO level tagged event=success.
func (l *Logger) Success(format string, args ...interface{}) {
	l.zl.Info().Str(FieldEvent, "success").Msg(fmt.Sprintf(format, args...))
}

// Warn logs at WARN level.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

// Error logs at ERROR level, to stderr.
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

// ErrorErr logs err at ERROR level with extra string fields given as
// key/value pairs.
func (l *Logger) ErrorErr(err error, msg string, kv ...string) {
	ev := l.zl.Error().Err(err)
	for i := 0; i+1 < len(kv); i += 2 {
		ev = ev.Str(kv[i], kv[i+1])
	}
	ev.Msg(msg)
}

// Debug logs at DEBUG level; a no-op unless the logger was built with debug on.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}

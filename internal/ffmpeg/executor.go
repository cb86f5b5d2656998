package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// stderrTailBytes is how much ffmpeg stderr is kept per run.
const stderrTailBytes = 16 * 1024

// ExecResult holds the outcome of a single ffmpeg invocation.
type ExecResult struct {
	Stderr   string
	Err      error
	Duration time.Duration
}

// Runner executes one command line. Executor is the real implementation;
// tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, argv []string) ExecResult
}

// Executor runs commands as child processes. When Tee is set, stderr is
// also copied there in real time.
type Executor struct {
	Timeout time.Duration // Zero means no limit beyond ctx.
	Tee     io.Writer
}

// Run starts argv[0] with argv[1:] and waits for it. On timeout or
// cancellation the process is killed and Err wraps the context error.
func (e Executor) Run(ctx context.Context, argv []string) ExecResult {
	if len(argv) == 0 {
		return ExecResult{Err: errors.New("empty command")}
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	// #nosec G204 -- argv is built by Build from validated config
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	tail := &tailBuffer{max: stderrTailBytes}
	if e.Tee != nil {
		cmd.Stderr = io.MultiWriter(tail, e.Tee)
	} else {
		cmd.Stderr = tail
	}

	start := time.Now()
	err := cmd.Run()
	res := ExecResult{Stderr: tail.String(), Duration: time.Since(start)}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		res.Err = err
	}
	return res
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	max int
	buf []byte
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string { return string(t.buf) }

package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kubes/videoconverter/internal/planner"
	"github.com/kubes/videoconverter/internal/probe"
)

func TestError_Message(t *testing.T) {
	e := &Error{Kind: KindFilesystem, Step: "move", Path: "/in/a.mov", Format: "mp4", Err: os.ErrNotExist}
	assert.Equal(t, "move /in/a.mov [mp4]: file does not exist", e.Error())
	assert.ErrorIs(t, e, os.ErrNotExist)

	bare := &Error{Kind: KindProbe, Step: "probe", Path: "/in/a.mov"}
	assert.Equal(t, "probe /in/a.mov: probe error", bare.Error())
}

func TestError_Retryable(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want bool
	}{
		{"timeout", &Error{Kind: KindProcess, Err: fmt.Errorf("%w (signal: killed)", context.DeadlineExceeded)}, true},
		{"cancelled", &Error{Kind: KindProcess, Err: fmt.Errorf("%w (signal: killed)", context.Canceled)}, false},
		{"transient stderr", &Error{Kind: KindProcess, Err: errors.New("exit status 1"), Stderr: "av_interleaved_write_frame(): Input/output error"}, true},
		{"plain exit", &Error{Kind: KindProcess, Err: errors.New("exit status 1"), Stderr: "Unknown encoder 'libfdk_aac'"}, false},
		{"probe data", &Error{Kind: KindProbe, Err: probe.ErrMissingProperty}, false},
		{"filesystem", &Error{Kind: KindFilesystem, Err: os.ErrPermission, Stderr: "Input/output error"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Retryable())
			assert.Equal(t, tt.want, IsRetryable(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindFilesystem, KindOf(fmt.Errorf("x: %w", &Error{Kind: KindFilesystem})))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, "process", KindProcess.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestProbeError_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"missing", fmt.Errorf("%w: video_width", probe.ErrMissingProperty), KindProbe},
		{"malformed", fmt.Errorf("%w: video_height", probe.ErrMalformedProperty), KindProbe},
		{"dimensions", planner.ErrInvalidDimensions, KindProbe},
		{"tool failed", errors.New("mediainfo \"a.mov\": exit status 1"), KindProcess},
		{"timeout", context.DeadlineExceeded, KindProcess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := ProbeError("/in/a.mov", tt.err)
			assert.Equal(t, tt.want, e.Kind)
			assert.Equal(t, "probe", e.Step)
			assert.ErrorIs(t, e, tt.err)
		})
	}
}

func TestMatchTransient(t *testing.T) {
	assert.True(t, MatchTransient("read: resource temporarily unavailable"))
	assert.True(t, MatchTransient("Error: Cannot allocate memory"))
	assert.False(t, MatchTransient("Invalid data found when processing input"))
	assert.False(t, MatchTransient(""))
}

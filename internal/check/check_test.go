package check

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubes/videoconverter/internal/config"
)

const encodersOutput = `Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D flv                  FLV / Sorenson Spark / Sorenson H.263 (Flash Video)
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC (codec h264)
 V....D libvpx               libvpx VP8 (codec vp8)
 A....D libvorbis            libvorbis (codec vorbis)
 A....D aac                  AAC (Advanced Audio Coding)
`

func TestParseEncoders(t *testing.T) {
	got := ParseEncoders(encodersOutput)
	for _, name := range []string{"flv", "libx264", "libvpx", "libvorbis", "aac"} {
		assert.True(t, got[name], name)
	}
	// Legend rows before the separator are not encoders.
	assert.False(t, got["="])
	assert.Len(t, got, 5)
}

func TestMissingEncoders(t *testing.T) {
	available := ParseEncoders(encodersOutput)
	missing := MissingEncoders(config.DefaultFormats, available)
	// flv, ogv, mp4, webm: libtheora (ogv) then libfdk_aac (mp4); libvorbis present.
	assert.Equal(t, []string{"libtheora", "libfdk_aac"}, missing)
	assert.Empty(t, MissingEncoders([]config.Format{config.FormatFLV, config.FormatWebM}, available))
}

func TestVersionLine(t *testing.T) {
	assert.Equal(t, "ffmpeg version 6.1.1 Copyright (c) 2000-2023",
		versionLine("ffmpeg version 6.1.1 Copyright (c) 2000-2023\nbuilt with gcc\n"))
	assert.Equal(t, "MediaInfoLib - v23.11",
		versionLine("MediaInfo Command line,\nMediaInfoLib - v23.11\n"))
	assert.Equal(t, "unknown version", versionLine("\n\n"))
}

// fakeTools writes shell scripts standing in for ffmpeg and mediainfo.
func fakeTools(t *testing.T, encoders string) (ffmpegBin, mediainfoBin string) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	ffmpegBin = filepath.Join(dir, "ffmpeg")
	mediainfoBin = filepath.Join(dir, "mediainfo")
	ff := fmt.Sprintf("#!/bin/sh\nif [ \"$1\" = \"-version\" ]; then echo 'ffmpeg version 6.1'; exit 0; fi\ncat <<'EOF'\n%sEOF\n", encoders)
	require.NoError(t, os.WriteFile(ffmpegBin, []byte(ff), 0o755))
	require.NoError(t, os.WriteFile(mediainfoBin, []byte("#!/bin/sh\necho 'MediaInfoLib - v23.11'\n"), 0o755))
	return ffmpegBin, mediainfoBin
}

func TestCheckDeps(t *testing.T) {
	ff, mi := fakeTools(t, encodersOutput)
	ctx := context.Background()

	t.Run("missing mediainfo", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.ProbeBin = filepath.Join(t.TempDir(), "nope")
		assert.ErrorIs(t, CheckDeps(ctx, &cfg), ErrMediainfoNotFound)
	})

	t.Run("missing ffmpeg", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.ProbeBin = mi
		cfg.FFmpegBin = filepath.Join(t.TempDir(), "nope")
		assert.ErrorIs(t, CheckDeps(ctx, &cfg), ErrFFmpegNotFound)
	})

	t.Run("dry run needs no ffmpeg", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.ProbeBin = mi
		cfg.FFmpegBin = filepath.Join(t.TempDir(), "nope")
		cfg.DryRun = true
		assert.NoError(t, CheckDeps(ctx, &cfg))
	})

	t.Run("missing encoder", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.ProbeBin, cfg.FFmpegBin = mi, ff
		err := CheckDeps(ctx, &cfg)
		require.ErrorIs(t, err, ErrEncoderMissing)
		assert.Contains(t, err.Error(), "libfdk_aac")
	})

	t.Run("all present", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.ProbeBin, cfg.FFmpegBin = mi, ff
		cfg.Formats = []config.Format{config.FormatFLV, config.FormatWebM}
		assert.NoError(t, CheckDeps(ctx, &cfg))
	})
}

type recordingLogger struct{ lines []string }

func (r *recordingLogger) add(level, format string, args ...interface{}) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}
func (r *recordingLogger) Info(f string, a ...interface{})    { r.add("INFO", f, a...) }
func (r *recordingLogger) Success(f string, a ...interface{}) { r.add("OK", f, a...) }
func (r *recordingLogger) Warn(f string, a ...interface{})    { r.add("WARN", f, a...) }
func (r *recordingLogger) Error(f string, a ...interface{})   { r.add("ERROR", f, a...) }

func TestRunCheck(t *testing.T) {
	ff, mi := fakeTools(t, encodersOutput)
	cfg := config.DefaultConfig()
	cfg.ProbeBin, cfg.FFmpegBin = mi, ff

	log := &recordingLogger{}
	ok := RunCheck(context.Background(), &cfg, log)
	assert.False(t, ok)

	out := strings.Join(log.lines, "\n")
	assert.Contains(t, out, "OK ffmpeg: ffmpeg version 6.1")
	assert.Contains(t, out, "OK mediainfo: MediaInfoLib - v23.11")
	assert.Contains(t, out, "OK flv: flv")
	assert.Contains(t, out, "ERROR ogv: missing libtheora")
	assert.Contains(t, out, "ERROR mp4: missing libfdk_aac")
	assert.Contains(t, out, "OK webm: libvpx, libvorbis")
}

func TestRunCheck_MissingTool(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.FFmpegBin = filepath.Join(t.TempDir(), "nope")
	cfg.ProbeBin = cfg.FFmpegBin
	log := &recordingLogger{}
	assert.False(t, RunCheck(context.Background(), &cfg, log))
	assert.Contains(t, strings.Join(log.lines, "\n"), "ERROR ffmpeg not found")
}

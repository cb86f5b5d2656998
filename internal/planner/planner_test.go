package planner

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubes/videoconverter/internal/config"
	"github.com/kubes/videoconverter/internal/probe"
)

// --- Helper builders ---

func media(width, height, fps string) probe.Media {
	return probe.Media{
		probe.KeyWidth:     width,
		probe.KeyHeight:    height,
		probe.KeyFrameRate: fps,
	}
}

func hdMOV() probe.Media {
	m := media("1 280 pixels", "720 pixels", "30 fps")
	m[probe.KeyVideoBitrate] = "2 mbps"
	m[probe.KeyAudioBitrate] = "40 kbps"
	m[probe.KeyAudioSampling] = "48 khz"
	return m
}

// --- Derive ---

func TestDerive_HDScenario(t *testing.T) {
	p, err := Derive(config.DefaultPolicy(), hdMOV())
	require.NoError(t, err)

	assert.Equal(t, 640, p.ResizeWidth)
	assert.Equal(t, 360, p.ResizeHeight)
	assert.Equal(t, 640, p.CanvasWidth)
	assert.Equal(t, 480, p.CanvasHeight)
	assert.Equal(t, "scale=640:360,pad=640:480:(ow-iw)/2:(oh-ih)/2:black", p.PadScale)
	assert.Equal(t, 30, p.FrameRate)
	assert.Equal(t, 1024, p.VideoBitrateKbps, "2048 kbps is capped")
	assert.Equal(t, 40, p.AudioBitrateKbps, "under the cap, unchanged")
	assert.Equal(t, 22050, p.AudioSamplingHz, "49152 Hz is capped")
}

func TestDerive_SmallSourcePassesThrough(t *testing.T) {
	p, err := Derive(config.DefaultPolicy(), media("320 pixels", "240 pixels", "15 fps"))
	require.NoError(t, err)
	assert.Equal(t, 320, p.ResizeWidth)
	assert.Equal(t, 240, p.ResizeHeight)
	assert.Equal(t, "scale=320:240,pad=640:480:(ow-iw)/2:(oh-ih)/2:black", p.PadScale)
}

func TestDerive_AbsentRatesTakeMaximum(t *testing.T) {
	p, err := Derive(config.DefaultPolicy(), media("640 pixels", "480 pixels", "25 fps"))
	require.NoError(t, err)
	assert.Equal(t, 1024, p.VideoBitrateKbps)
	assert.Equal(t, 56, p.AudioBitrateKbps)
	assert.Equal(t, 22050, p.AudioSamplingHz)
}

func TestDerive_LowRatesAreKept(t *testing.T) {
	m := media("640 pixels", "480 pixels", "25 fps")
	m[probe.KeyVideoBitrate] = "500 kbps"
	m[probe.KeyAudioBitrate] = "32 kbps"
	m[probe.KeyAudioSampling] = "11 025 hz"
	p, err := Derive(config.DefaultPolicy(), m)
	require.NoError(t, err)
	assert.Equal(t, 500, p.VideoBitrateKbps)
	assert.Equal(t, 32, p.AudioBitrateKbps)
	assert.Equal(t, 11025, p.AudioSamplingHz)
}

func TestDerive_CustomPolicy(t *testing.T) {
	policy := config.Policy{
		CanvasWidth: 1280, CanvasHeight: 720,
		MaxVideoBitrateKbps: 4000, MaxAudioBitrateKbps: 128,
		MaxAudioSamplingHz: 48000, KHzMultiplier: 1000,
	}
	p, err := Derive(policy, hdMOV())
	require.NoError(t, err)
	assert.Equal(t, 1280, p.ResizeWidth)
	assert.Equal(t, 720, p.ResizeHeight)
	assert.Equal(t, 2048, p.VideoBitrateKbps)
	assert.Equal(t, 48000, p.AudioSamplingHz)
}

func TestDerive_Errors(t *testing.T) {
	tests := []struct {
		name  string
		media probe.Media
		want  error
	}{
		{"missing width", probe.Media{probe.KeyHeight: "480 pixels", probe.KeyFrameRate: "25 fps"}, probe.ErrMissingProperty},
		{"missing height", probe.Media{probe.KeyWidth: "640 pixels", probe.KeyFrameRate: "25 fps"}, probe.ErrMissingProperty},
		{"missing frame rate", probe.Media{probe.KeyWidth: "640 pixels", probe.KeyHeight: "480 pixels"}, probe.ErrMissingProperty},
		{"malformed width", media("n/a", "480 pixels", "25 fps"), probe.ErrMalformedProperty},
		{"zero width", media("0 pixels", "480 pixels", "25 fps"), ErrInvalidDimensions},
		{"negative height", media("640 pixels", "-1 pixels", "25 fps"), ErrInvalidDimensions},
		{"zero frame rate", media("640 pixels", "480 pixels", "0 fps"), probe.ErrMalformedProperty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Derive(config.DefaultPolicy(), tt.media)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

// --- Fit ---

func TestFit_Cases(t *testing.T) {
	tests := []struct {
		name   string
		w, h   float64
		wantW  float64
		wantH  float64
		passes int
	}{
		{"fits", 640, 480, 640, 480, 0},
		{"wide 16:9", 1920, 1080, 640, 360, 1},
		{"tall portrait", 720, 1280, 270, 480, 1},
		{"height only", 600, 960, 300, 480, 1},
		{"square", 1000, 1000, 480, 480, 1},
		{"cinemascope", 2560, 1080, 640, 270, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rw, rh, passes := Fit(tt.w, tt.h, 640, 480)
			assert.InDelta(t, tt.wantW, rw, 1e-9)
			assert.InDelta(t, tt.wantH, rh, 1e-9)
			assert.Equal(t, tt.passes, passes)
		})
	}
}

// A width-then-height correction can in principle leave a dimension over
// the bound; the loop re-checks, but for a fixed aspect ratio one pass is
// always enough. Pin that so a change to the fit order is noticed.
func TestFit_SinglePassAlwaysSuffices(t *testing.T) {
	for w := 1; w <= 8000; w += 13 {
		for h := 1; h <= 6000; h += 17 {
			rw, rh, passes := Fit(float64(w), float64(h), 640, 480)
			if passes > 1 {
				t.Fatalf("%dx%d needed %d passes", w, h, passes)
			}
			if rw > 640 || rh > 480 {
				t.Fatalf("%dx%d -> %.3fx%.3f exceeds canvas", w, h, rw, rh)
			}
		}
	}
}

func TestDerive_BoundsAndAspectProperty(t *testing.T) {
	policy := config.DefaultPolicy()
	for w := 16; w <= 4096; w += 37 {
		for h := 16; h <= 3072; h += 29 {
			m := media(itoa(w)+" pixels", itoa(h)+" pixels", "24 fps")
			p, err := Derive(policy, m)
			require.NoError(t, err)

			if p.CanvasWidth != 640 || p.CanvasHeight != 480 {
				t.Fatalf("%dx%d: canvas %dx%d", w, h, p.CanvasWidth, p.CanvasHeight)
			}
			if w <= 640 && h <= 480 {
				if p.ResizeWidth != w || p.ResizeHeight != h {
					t.Fatalf("%dx%d: resized to %dx%d without need", w, h, p.ResizeWidth, p.ResizeHeight)
				}
				continue
			}
			if p.ResizeWidth > 640 || p.ResizeHeight > 480 {
				t.Fatalf("%dx%d: resize %dx%d exceeds canvas", w, h, p.ResizeWidth, p.ResizeHeight)
			}
			// One side lands exactly on the canvas, the other follows the aspect.
			wantH := 640 * float64(h) / float64(w)
			wantW := 480 * float64(w) / float64(h)
			switch {
			case p.ResizeWidth == 640 && math.Abs(float64(p.ResizeHeight)-wantH) < 1:
			case p.ResizeHeight == 480 && math.Abs(float64(p.ResizeWidth)-wantW) < 1:
			default:
				t.Fatalf("%dx%d: resize %dx%d breaks aspect", w, h, p.ResizeWidth, p.ResizeHeight)
			}
		}
	}
}

func TestDerive_RatesNeverExceedPolicy(t *testing.T) {
	policy := config.DefaultPolicy()
	values := []string{"", "1 kbps", "56 kbps", "57 kbps", "1024 kbps", "1025 kbps", "9.5 mbps", "44.1 khz", "8000 hz", "96 khz", "junk"}
	for _, v := range values {
		m := media("640 pixels", "480 pixels", "25 fps")
		m[probe.KeyVideoBitrate] = v
		m[probe.KeyAudioBitrate] = v
		m[probe.KeyAudioSampling] = v
		p, err := Derive(policy, m)
		require.NoError(t, err)
		assert.LessOrEqual(t, p.VideoBitrateKbps, 1024, v)
		assert.LessOrEqual(t, p.AudioBitrateKbps, 56, v)
		assert.LessOrEqual(t, p.AudioSamplingHz, 22050, v)
		assert.Positive(t, p.VideoBitrateKbps, v)
	}
}

func TestPadScale(t *testing.T) {
	assert.Equal(t, "scale=100:50,pad=200:100:(ow-iw)/2:(oh-ih)/2:black", PadScale(100, 50, 200, 100))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(0, 1, 10))
	assert.Equal(t, 10, Clamp(11, 1, 10))
	assert.Equal(t, 5, Clamp(5, 1, 10))
}

func TestParams_Summary(t *testing.T) {
	p, err := Derive(config.DefaultPolicy(), hdMOV())
	require.NoError(t, err)
	assert.Equal(t, "1280x720 -> 640x360 on 640x480, 30 fps, video 1024k, audio 40k @ 22050 Hz", p.Summary())
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

package probe

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Property keys read by the planner.
const (
	KeyWidth         = "video_width"
	KeyHeight        = "video_height"
	KeyFrameRate     = "video_frame_rate"
	KeyVideoBitrate  = "video_bit_rate"
	KeyAudioBitrate  = "audio_bit_rate"
	KeyAudioSampling = "audio_sampling_rate"
)

var (
	// ErrMissingProperty reports a required key absent from the report.
	ErrMissingProperty = errors.New("missing media property")
	// ErrMalformedProperty reports a required value that does not parse.
	ErrMalformedProperty = errors.New("malformed media property")
)

// stripped returns the value for key with every occurrence of unit and
// all whitespace removed. mediainfo groups digits with spaces ("1 280").
func (m Media) stripped(key, unit string) (string, bool) {
	v, ok := m[key]
	if !ok || v == "" {
		return "", false
	}
	v = strings.ReplaceAll(v, unit, "")
	return strings.Join(strings.Fields(v), ""), true
}

func (m Media) requiredInt(key, unit string) (int, error) {
	v, ok := m.stripped(key, unit)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingProperty, key)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrMalformedProperty, key, m[key])
	}
	return n, nil
}

// Width returns the video width in pixels.
func (m Media) Width() (int, error) { return m.requiredInt(KeyWidth, "pixels") }

// Height returns the video height in pixels.
func (m Media) Height() (int, error) { return m.requiredInt(KeyHeight, "pixels") }

// FrameRate returns the video frame rate truncated to whole frames.
// Variable-rate reports such as "29.970 (29970/1000) fps" use the leading
// number.
func (m Media) FrameRate() (int, error) {
	raw, ok := m[KeyFrameRate]
	if !ok || raw == "" {
		return 0, fmt.Errorf("%w: %s", ErrMissingProperty, KeyFrameRate)
	}
	fields := strings.Fields(strings.ReplaceAll(raw, "fps", ""))
	if len(fields) == 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrMalformedProperty, KeyFrameRate, raw)
	}
	lead := fields[0]
	if i := strings.IndexByte(lead, '('); i >= 0 {
		lead = lead[:i]
	}
	f, err := strconv.ParseFloat(lead, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrMalformedProperty, KeyFrameRate, raw)
	}
	return int(f), nil
}

// VideoBitrate returns the video bitrate in kbps, if reported.
func (m Media) VideoBitrate() (int, bool) { return m.bitrateKbps(KeyVideoBitrate) }

// AudioBitrate returns the audio bitrate in kbps, if reported.
func (m Media) AudioBitrate() (int, bool) { return m.bitrateKbps(KeyAudioBitrate) }

// bitrateKbps understands "kbps"/"kb/s" and "mbps"/"mb/s" (x1024). Any
// other unit, or an unparsable number, counts as absent.
func (m Media) bitrateKbps(key string) (int, bool) {
	raw := m[key]
	for _, u := range []struct {
		unit string
		mult float64
	}{
		{"kbps", 1},
		{"kb/s", 1},
		{"mbps", 1024},
		{"mb/s", 1024},
	} {
		if !strings.Contains(raw, u.unit) {
			continue
		}
		v, _ := m.stripped(key, u.unit)
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return int(f * u.mult), true
	}
	return 0, false
}

// AudioSampling returns the audio sampling rate in Hz, if reported.
// "khz" values are multiplied by khzMultiplier.
func (m Media) AudioSampling(khzMultiplier int) (int, bool) {
	raw := m[KeyAudioSampling]
	unit, mult := "", 1.0
	switch {
	case strings.Contains(raw, "khz"):
		unit, mult = "khz", float64(khzMultiplier)
	case strings.Contains(raw, "hz"):
		unit = "hz"
	default:
		return 0, false
	}
	v, _ := m.stripped(KeyAudioSampling, unit)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return int(f * mult), true
}

package planner

import (
	"errors"
	"fmt"

	"github.com/kubes/videoconverter/internal/config"
	"github.com/kubes/videoconverter/internal/probe"
)

// ErrInvalidDimensions reports a probed width or height that is not positive.
var ErrInvalidDimensions = errors.New("invalid video dimensions")

// Derive turns a probe report into encode parameters bounded by policy.
//
// Flow:
//  1. Read width, height and frame rate (required) plus the optional rates
//  2. Fit the picture inside the canvas, keeping its aspect ratio
//  3. Build the scale+pad filter for the canvas
//  4. Cap video bitrate, audio bitrate and sampling rate at the policy
//     maxima; absent values take the maximum
func Derive(policy config.Policy, m probe.Media) (Params, error) {
	width, err := m.Width()
	if err != nil {
		return Params{}, err
	}
	height, err := m.Height()
	if err != nil {
		return Params{}, err
	}
	if width <= 0 || height <= 0 {
		return Params{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	fps, err := m.FrameRate()
	if err != nil {
		return Params{}, err
	}
	if fps <= 0 {
		return Params{}, fmt.Errorf("%w: %s=%q", probe.ErrMalformedProperty, probe.KeyFrameRate, m[probe.KeyFrameRate])
	}

	rw, rh, _ := Fit(float64(width), float64(height),
		float64(policy.CanvasWidth), float64(policy.CanvasHeight))
	resizeW := Clamp(int(rw), 1, policy.CanvasWidth)
	resizeH := Clamp(int(rh), 1, policy.CanvasHeight)

	videoKbps, videoOK := m.VideoBitrate()
	audioKbps, audioOK := m.AudioBitrate()
	samplingHz, samplingOK := m.AudioSampling(policy.KHzMultiplier)

	return Params{
		SourceWidth:      width,
		SourceHeight:     height,
		ResizeWidth:      resizeW,
		ResizeHeight:     resizeH,
		CanvasWidth:      policy.CanvasWidth,
		CanvasHeight:     policy.CanvasHeight,
		PadScale:         PadScale(resizeW, resizeH, policy.CanvasWidth, policy.CanvasHeight),
		FrameRate:        fps,
		VideoBitrateKbps: capAt(videoKbps, videoOK, policy.MaxVideoBitrateKbps),
		AudioBitrateKbps: capAt(audioKbps, audioOK, policy.MaxAudioBitrateKbps),
		AudioSamplingHz:  capAt(samplingHz, samplingOK, policy.MaxAudioSamplingHz),
	}, nil
}

// capAt returns v, or limit when v is absent, non-positive or above limit.
func capAt(v int, ok bool, limit int) int {
	if !ok || v <= 0 || v > limit {
		return limit
	}
	return v
}

// Clamp restricts v to the inclusive range [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

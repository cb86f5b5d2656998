package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy bounds every derived encode parameter. It is passed by value so
// callers (and parallel tests) can use different policies side by side.
type Policy struct {
	CanvasWidth         int `yaml:"canvas_width"`
	CanvasHeight        int `yaml:"canvas_height"`
	MaxVideoBitrateKbps int `yaml:"max_video_bitrate_kbps"`
	MaxAudioBitrateKbps int `yaml:"max_audio_bitrate_kbps"`
	MaxAudioSamplingHz  int `yaml:"max_audio_sampling_hz"`

	// KHzMultiplier converts a "khz" sampling rate to Hz. Default 1024;
	// set 1000 for the physically correct value.
	KHzMultiplier int `yaml:"khz_multiplier"`
}

// DefaultPolicy returns the 640x480 canvas with 1024/56 kbps caps
// and a 22050 Hz sampling cap.
func DefaultPolicy() Policy {
	return Policy{
		CanvasWidth:         640,
		CanvasHeight:        480,
		MaxVideoBitrateKbps: 1024,
		MaxAudioBitrateKbps: 56,
		MaxAudioSamplingHz:  22050,
		KHzMultiplier:       1024,
	}
}

// Validate requires every bound to be positive.
func (p Policy) Validate() error {
	fields := []struct {
		name string
		v    int
	}{
		{"canvas_width", p.CanvasWidth},
		{"canvas_height", p.CanvasHeight},
		{"max_video_bitrate_kbps", p.MaxVideoBitrateKbps},
		{"max_audio_bitrate_kbps", p.MaxAudioBitrateKbps},
		{"max_audio_sampling_hz", p.MaxAudioSamplingHz},
		{"khz_multiplier", p.KHzMultiplier},
	}
	for _, f := range fields {
		if f.v <= 0 {
			return fmt.Errorf("policy: %s must be positive (got %d)", f.name, f.v)
		}
	}
	return nil
}

// LoadPolicy reads a YAML policy file. Keys absent from the file keep their
// default values; unknown keys are rejected.
func LoadPolicy(path string) (Policy, error) {
	// #nosec G304 -- policy path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes YAML policy bytes over [DefaultPolicy].
func ParsePolicy(data []byte) (Policy, error) {
	p := DefaultPolicy()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return p, nil
		}
		return Policy{}, fmt.Errorf("strict policy parse error: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Policy{}, errors.New("policy file contains multiple documents or trailing content")
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

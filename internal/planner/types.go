package planner

import "fmt"

// Params is the encode parameter set for one source file. Only the
// codec and container differ between output formats.
type Params struct {
	SourceWidth  int
	SourceHeight int

	// Content size after the aspect fit, before padding.
	ResizeWidth  int
	ResizeHeight int

	// Output frame size; always the policy canvas.
	CanvasWidth  int
	CanvasHeight int

	// PadScale is the ffmpeg -vf expression: scale to the resize size,
	// then pad centered onto a black canvas.
	PadScale string

	FrameRate        int
	VideoBitrateKbps int
	AudioBitrateKbps int
	AudioSamplingHz  int
}

// Summary is a one-line description for logs.
func (p Params) Summary() string {
	return fmt.Sprintf("%dx%d -> %dx%d on %dx%d, %d fps, video %dk, audio %dk @ %d Hz",
		p.SourceWidth, p.SourceHeight, p.ResizeWidth, p.ResizeHeight,
		p.CanvasWidth, p.CanvasHeight, p.FrameRate,
		p.VideoBitrateKbps, p.AudioBitrateKbps, p.AudioSamplingHz)
}

package ffmpeg

import (
	"fmt"
	"strconv"

	"github.com/kubes/videoconverter/internal/config"
	"github.com/kubes/videoconverter/internal/planner"
)

// Job is everything Build needs for one (file, format) transcode.
type Job struct {
	Binary    string // ffmpeg path; argv[0].
	Input     string
	Output    string // Temp path; the pipeline moves it into place.
	Verbosity string // ffmpeg -v value.
	Params    planner.Params
}

// profile is the fixed codec/container tuning for one output format.
type profile struct {
	codec    []string // Codec, preset and container flags after -i.
	level    []string // Profile level, between tuning and audio flags.
	channels int
	// sampling is the fixed -ar value; 0 means the derived sampling rate.
	sampling int
	rate     []string // Rate control and pixel format after audio flags.
}

var profiles = map[config.Format]profile{
	config.FormatFLV: {
		codec:    []string{"-vcodec", "flv", "-f", "flv"},
		channels: 1,
		sampling: 22050,
	},
	config.FormatMP4: {
		codec: []string{
			"-vcodec", "libx264",
			"-acodec", "libfdk_aac",
			"-preset", "slow",
			"-profile:v", "baseline",
			"-strict", "experimental",
			"-f", "mp4",
		},
		level:    []string{"-level", "30"},
		channels: 2,
		sampling: 22050,
		rate: []string{
			"-maxrate", "10000000",
			"-bufsize", "10000000",
			"-threads", "0",
			"-pix_fmt", "yuv420p",
		},
	},
	config.FormatWebM: {
		codec:    []string{"-vcodec", "libvpx", "-acodec", "libvorbis", "-f", "webm"},
		channels: 1,
	},
	config.FormatOGV: {
		codec:    []string{"-vcodec", "libtheora", "-acodec", "libvorbis", "-f", "ogg"},
		channels: 1,
	},
}

// Build constructs the complete ffmpeg argument slice for one format.
// argv[0] is job.Binary. The layout is shared by all formats:
//
//	<bin> -i <input> <codec/container> -r -b:v -g 160 -cmp dct -subcmp dct
//	-mbd 2 -trellis 1 [level] -ac -ar -ab [rate control] -v -vf <output>
//
// An unknown format is a caller bug and returns config.ErrUnknownFormat.
func Build(format config.Format, job Job) ([]string, error) {
	prof, ok := profiles[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownFormat, format)
	}
	p := job.Params

	args := make([]string, 0, 48)
	args = append(args, job.Binary, "-i", job.Input)
	args = append(args, prof.codec...)

	// --- Video rate and motion estimation tuning ---
	args = append(args,
		"-r", strconv.Itoa(p.FrameRate),
		"-b:v", kbps(p.VideoBitrateKbps),
		"-g", "160",
		"-cmp", "dct",
		"-subcmp", "dct",
		"-mbd", "2",
		"-trellis", "1",
	)
	args = append(args, prof.level...)

	// --- Audio ---
	sampling := prof.sampling
	if sampling == 0 {
		sampling = p.AudioSamplingHz
	}
	args = append(args,
		"-ac", strconv.Itoa(prof.channels),
		"-ar", strconv.Itoa(sampling),
		"-ab", kbps(p.AudioBitrateKbps),
	)
	args = append(args, prof.rate...)

	// --- Logging, filter, output ---
	args = append(args, "-v", job.Verbosity, "-vf", p.PadScale, job.Output)
	return args, nil
}

func kbps(n int) string { return strconv.Itoa(n) + "k" }

// RequiredEncoders lists the ffmpeg encoders named by a format's profile,
// in flag order. Unknown formats return nil.
func RequiredEncoders(format config.Format) []string {
	prof, ok := profiles[format]
	if !ok {
		return nil
	}
	var out []string
	for i := 0; i+1 < len(prof.codec); i++ {
		if prof.codec[i] == "-vcodec" || prof.codec[i] == "-acodec" {
			out = append(out, prof.codec[i+1])
		}
	}
	return out
}

package config

// This file implements CLI flag parsing and help text on cobra/pflag.
// Short flags are the historical single letters (-i -t -p -f -d -e -b -v -g -m).

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	// ErrHelp is returned after usage text was printed (-h or no arguments).
	ErrHelp = errors.New("help requested")
	// ErrVersion is returned after the version line was printed.
	ErrVersion = errors.New("version requested")
	// ErrUsage wraps every flag parsing failure.
	ErrUsage = errors.New("usage error")
)

// ParseFlags parses args (without the program name) into cfg. Help and
// version output go to out; callers check ErrHelp / ErrVersion with
// errors.Is and exit cleanly.
func ParseFlags(cfg *Config, args []string, out io.Writer, version string) error {
	if len(args) == 0 {
		printUsage(out, version)
		return ErrHelp
	}

	var (
		formats     string
		showVersion bool
		ran         bool
	)

	cmd := &cobra.Command{
		Use:           "videoconverter",
		Short:         "Convert videos to flv, mp4, webm and ogv",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(_ *cobra.Command, rest []string) error {
			if len(rest) > 0 {
				return fmt.Errorf("%w: unexpected arguments %v", ErrUsage, rest)
			}
			return nil
		},
		RunE: func(*cobra.Command, []string) error {
			ran = true
			return nil
		},
	}
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetHelpFunc(func(*cobra.Command, []string) { printUsage(out, version) })
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	})

	fs := cmd.Flags()
	defineInputFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg, &formats)
	defineExecutionFlags(fs, cfg)
	defineDisplayFlags(fs, cfg, &showVersion)

	if err := cmd.Execute(); err != nil {
		if errors.Is(err, ErrUsage) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if !ran {
		return ErrHelp
	}
	if showVersion {
		fmt.Fprintln(out, "videoconverter v"+version)
		return ErrVersion
	}

	if fs.Changed("format") {
		cfg.Formats = ParseFormatList(formats)
	}
	if cfg.PolicyFile != "" {
		p, err := LoadPolicy(cfg.PolicyFile)
		if err != nil {
			return err
		}
		cfg.Policy = p
	}
	return nil
}

// defineInputFlags registers -i, -t, -p, -f.
func defineInputFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.InputDir, "input-dir", "i", "", "Video input root directory")
	fs.StringVarP(&cfg.OutputDir, "output-dir", "t", "", "Video output directory")
	fs.StringVarP(&cfg.Prefix, "prefix", "p", "", "Filename prefix for video outputs")
	fs.StringVarP(&cfg.InputFile, "file", "f", "", "Single input video file to convert")
}

// defineBehaviorFlags registers -d, -e, -b, -v, -m.
func defineBehaviorFlags(fs *pflag.FlagSet, cfg *Config, formats *string) {
	fs.BoolVarP(&cfg.DryRun, "dry-run", "d", false, "Print commands, don't convert")
	fs.BoolVarP(&cfg.SkipExisting, "exists", "e", false, "Ignore file if output already exists")
	fs.BoolVarP(&cfg.Backup, "backup", "b", false, "Back up old outputs as *.bak")
	fs.StringVarP(&cfg.Verbosity, "verbosity", "v", cfg.Verbosity, "ffmpeg verbosity, quiet to debug")
	fs.StringVarP(formats, "format", "m", "", "Comma-separated output formats (flv,ogv,mp4,webm)")
}

// defineExecutionFlags registers worker, timeout, retry and tool path flags.
func defineExecutionFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Files converted in parallel")
	fs.DurationVar(&cfg.ProbeTimeout, "probe-timeout", cfg.ProbeTimeout, "Timeout for one mediainfo run")
	fs.DurationVar(&cfg.TranscodeTimeout, "timeout", cfg.TranscodeTimeout, "Timeout for one ffmpeg run (0 = none)")
	fs.IntVar(&cfg.Retries, "retries", cfg.Retries, "Retries for timed-out or killed ffmpeg runs")
	fs.StringVar(&cfg.FFmpegBin, "ffmpeg", cfg.FFmpegBin, "Path to ffmpeg")
	fs.StringVar(&cfg.ProbeBin, "mediainfo", cfg.ProbeBin, "Path to mediainfo")
	fs.StringVar(&cfg.PolicyFile, "policy", "", "YAML file overriding canvas and bitrate caps")
	fs.BoolVar(&cfg.CheckOnly, "check", false, "Check ffmpeg, mediainfo and encoders, then exit")
}

// defineDisplayFlags registers logging, color, report and version flags.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config, showVersion *bool) {
	fs.StringVarP(&cfg.LogFile, "logfile", "g", "", "Append logs to file")
	fs.Var(&colorModeValue{&cfg.ColorMode}, "color", "Colored output: auto | always | never")
	fs.BoolVar(&cfg.Debug, "debug", false, "Debug logging")
	fs.StringVar(&cfg.ReportFile, "report", "", "Write a JSON run report")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", "", "Write Prometheus metrics in textfile format")
	fs.BoolVar(showVersion, "version", false, "Print version and exit")
}

// printUsage writes the help text. Column-aligned for readability.
func printUsage(out io.Writer, version string) {
	const col1 = 30
	lines := []struct {
		flags string
		desc  string
	}{
		{"", "videoconverter v" + version + " - flash and HTML5 video converter"},
		{"", ""},
		{"  videoconverter [-hitpfdebvgm] [OPTIONS]", ""},
		{"", ""},
		{"Input & output", ""},
		{"  -i, --input-dir <dir>", "Video input root directory"},
		{"  -t, --output-dir <dir>", "Video output directory"},
		{"  -p, --prefix <text>", "Filename prefix for video outputs"},
		{"  -f, --file <path>", "Input video file to convert"},
		{"", ""},
		{"Behavior", ""},
		{"  -d, --dry-run", "Print commands, don't convert"},
		{"  -e, --exists", "Ignore file if output already exists"},
		{"  -b, --backup", "Back up old videos, rename to *.bak"},
		{"  -v, --verbosity <level>", "ffmpeg verbosity, quiet to debug (default: verbose)"},
		{"  -m, --format <list>", "Output formats, overrides default (flv,ogv,mp4,webm)"},
		{"  --policy <file>", "YAML canvas and bitrate caps"},
		{"", ""},
		{"Execution", ""},
		{"  --workers <n>", "Files converted in parallel (default: 1)"},
		{"  --probe-timeout <dur>", "Timeout per mediainfo run (default: 2m)"},
		{"  --timeout <dur>", "Timeout per ffmpeg run (default: none)"},
		{"  --retries <n>", "Retries for timed-out ffmpeg runs (default: 0)"},
		{"  --ffmpeg <path>", "ffmpeg binary"},
		{"  --mediainfo <path>", "mediainfo binary"},
		{"  --check", "Check tools and encoders, then exit"},
		{"", ""},
		{"Display & reports", ""},
		{"  -g, --logfile <path>", "Append logs to file"},
		{"  --color <mode>", "auto | always | never"},
		{"  --debug", "Debug logging"},
		{"  --report <path>", "JSON run report"},
		{"  --metrics-file <path>", "Prometheus textfile metrics"},
		{"  --version", "Print version and exit"},
		{"  -h, --help", "Show this help and exit"},
	}

	for _, l := range lines {
		switch {
		case l.flags == "" && l.desc == "":
			fmt.Fprintln(out)
		case l.desc == "":
			fmt.Fprintln(out, l.flags)
		case l.flags == "":
			fmt.Fprintln(out, l.desc)
		default:
			padding := col1 - len(l.flags)
			if padding < 1 {
				padding = 1
			}
			fmt.Fprintf(out, "%s%*s%s\n", l.flags, padding, "", l.desc)
		}
	}
}

// pflag.Value adapter so ColorMode can be set with fs.Var.

type colorModeValue struct{ p *ColorMode }

func (c *colorModeValue) String() string { return string(*c.p) }
func (c *colorModeValue) Type() string   { return "mode" }
func (c *colorModeValue) Set(s string) error {
	switch strings.ToLower(s) {
	case "auto":
		*c.p = ColorAuto
	case "always":
		*c.p = ColorAlways
	case "never":
		*c.p = ColorNever
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", s)
	}
	return nil
}

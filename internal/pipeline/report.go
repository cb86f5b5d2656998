package pipeline

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/renameio/v2"

	"github.com/kubes/videoconverter/internal/config"
	"github.com/kubes/videoconverter/internal/ffmpeg"
)

// Report is the JSON run report written by --report.
type Report struct {
	RunID      string          `json:"run_id"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	DryRun     bool            `json:"dry_run"`
	Formats    []config.Format `json:"formats"`
	Totals     ReportTotals    `json:"totals"`
	Files      []FileReport    `json:"files"`
}

type ReportTotals struct {
	Files              int   `json:"files"`
	Converted          int   `json:"converted"`
	Ignored            int   `json:"ignored"`
	Failed             int   `json:"failed"`
	Conversions        int   `json:"conversions"`
	ConversionsSkipped int   `json:"conversions_skipped"`
	ConversionsFailed  int   `json:"conversions_failed"`
	InputBytes         int64 `json:"input_bytes"`
	OutputBytes        int64 `json:"output_bytes"`
}

type FileReport struct {
	Source    string         `json:"source"`
	OutputDir string         `json:"output_dir"`
	Ignored   bool           `json:"ignored,omitempty"`
	Params    string         `json:"params,omitempty"`
	Error     string         `json:"error,omitempty"`
	ErrorKind string         `json:"error_kind,omitempty"`
	Formats   []FormatReport `json:"formats,omitempty"`
}

type FormatReport struct {
	Format     config.Format `json:"format"`
	Outcome    Outcome       `json:"outcome"`
	Output     string        `json:"output"`
	Bytes      int64         `json:"bytes,omitempty"`
	DurationMS int64         `json:"duration_ms,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// NewReport builds a report from a finished run. Files are sorted by
// source path so reports from parallel runs compare cleanly.
func NewReport(runID string, started, finished time.Time, cfg *config.Config, stats RunStats) Report {
	r := Report{
		RunID:      runID,
		StartedAt:  started.UTC(),
		FinishedAt: finished.UTC(),
		DryRun:     cfg.DryRun,
		Formats:    cfg.Formats,
		Totals: ReportTotals{
			Files:              stats.Total,
			Converted:          stats.Converted,
			Ignored:            stats.Ignored,
			Failed:             stats.Failed,
			Conversions:        stats.Conversions,
			ConversionsSkipped: stats.ConversionsSkipped,
			ConversionsFailed:  stats.ConversionsFailed,
			InputBytes:         stats.TotalInputBytes,
			OutputBytes:        stats.TotalOutputBytes,
		},
		Files: make([]FileReport, 0, len(stats.Results)),
	}
	for _, res := range stats.Results {
		r.Files = append(r.Files, fileReport(res))
	}
	sort.Slice(r.Files, func(i, j int) bool { return r.Files[i].Source < r.Files[j].Source })
	return r
}

func fileReport(res FileResult) FileReport {
	fr := FileReport{Source: res.Source, OutputDir: res.OutputDir, Ignored: res.Ignored}
	if res.Params != nil {
		fr.Params = res.Params.Summary()
	}
	if res.Err != nil {
		fr.Error = res.Err.Error()
		fr.ErrorKind = ffmpeg.KindOf(res.Err).String()
	}
	for _, f := range res.Formats {
		rep := FormatReport{
			Format:     f.Format,
			Outcome:    f.Outcome,
			Output:     f.Output,
			Bytes:      f.Bytes,
			DurationMS: f.Duration.Milliseconds(),
		}
		if f.Err != nil {
			rep.Error = f.Err.Error()
		}
		fr.Formats = append(fr.Formats, rep)
	}
	return fr
}

// WriteReport writes r as indented JSON, atomically replacing path.
func WriteReport(path string, r Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

package pipeline

import (
	"sync"
	"time"

	"github.com/kubes/videoconverter/internal/config"
	"github.com/kubes/videoconverter/internal/planner"
)

// Outcome is the result of one (file, format) conversion.
type Outcome string

const (
	OutcomeConverted Outcome = "converted"
	OutcomeDryRun    Outcome = "dry_run"
	OutcomeSkipped   Outcome = "skipped" // Final output existed and -e was set.
	OutcomeFailed    Outcome = "failed"
)

// FormatResult records one format attempted for a file.
type FormatResult struct {
	Format   config.Format
	Outcome  Outcome
	Output   string // Final path.
	Bytes    int64  // Size of the final output after a real conversion.
	Duration time.Duration
	Err      error
}

// FileResult is everything Convert learned about one source file. Formats
// holds one entry per format attempted; formats after a failure are absent.
type FileResult struct {
	Source    string
	OutputDir string
	Ignored   bool // Name did not have exactly one extension.
	Params    *planner.Params
	Formats   []FormatResult
	Err       error
}

// Failed reports whether the file hit an error.
func (r FileResult) Failed() bool { return r.Err != nil }

// RunStats tracks aggregate counters across a run.
type RunStats struct {
	Total   int // Files planned.
	Current int // Files finished.

	// Per file.
	Converted int // Every requested format converted, skipped or dry-run.
	Ignored   int
	Failed    int

	// Per (file, format).
	Conversions        int
	ConversionsSkipped int
	ConversionsFailed  int

	TotalInputBytes  int64 // Sizes of sources that were processed.
	TotalOutputBytes int64 // Sizes of outputs written.

	Results []FileResult // In completion order.
}

// statsCollector guards RunStats for concurrent workers.
type statsCollector struct {
	mu    sync.Mutex
	stats RunStats
}

func (c *statsCollector) setTotal(n int) {
	c.mu.Lock()
	c.stats.Total = n
	c.mu.Unlock()
}

// record folds one file's result into the totals and returns the number
// of files finished so far.
func (c *statsCollector) record(res FileResult, inputBytes int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &c.stats
	s.Current++
	s.Results = append(s.Results, res)
	switch {
	case res.Ignored:
		s.Ignored++
	case res.Failed():
		s.Failed++
	default:
		s.Converted++
	}
	if !res.Ignored {
		s.TotalInputBytes += inputBytes
	}
	for _, f := range res.Formats {
		switch f.Outcome {
		case OutcomeConverted, OutcomeDryRun:
			s.Conversions++
			s.TotalOutputBytes += f.Bytes
		case OutcomeSkipped:
			s.ConversionsSkipped++
		case OutcomeFailed:
			s.ConversionsFailed++
		}
	}
	return s.Current
}

func (c *statsCollector) snapshot() RunStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.stats
	out.Results = append([]FileResult(nil), c.stats.Results...)
	return out
}

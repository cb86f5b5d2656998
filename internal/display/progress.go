package display

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"

	"github.com/kubes/videoconverter/internal/term"
)

// Progress writes batch progress to the interactive stream. It is safe
// for concurrent workers; each call writes whole lines.
type Progress struct {
	mu    sync.Mutex
	out   io.Writer
	total int
	bar   progress.Model
	color bool
}

// NewProgress returns a reporter for a batch of total files.
func NewProgress(out io.Writer, total int) *Progress {
	return &Progress{
		out:   out,
		total: total,
		bar: progress.New(
			progress.WithGradient("#7C3AED", "#10B981"),
			progress.WithWidth(50),
			progress.WithoutPercentage(),
		),
		color: term.Enabled(),
	}
}

// Start announces file index (1-based) before it is converted.
func (p *Progress) Start(index int, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "Converting %d of %d: %s\n", index, p.total, path)
}

// Done renders the bar after done files have finished.
func (p *Progress) Done(done int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, p.line(done))
}

func (p *Progress) line(done int) string {
	pct := 1.0
	if p.total > 0 {
		pct = float64(done) / float64(p.total)
	}
	count := fmt.Sprintf("%d/%d", done, p.total)
	if !p.color {
		return fmt.Sprintf("Progress: %s (%d%%)", count, int(pct*100))
	}
	return p.bar.ViewAs(pct) + " " + countStyle.Render(count)
}

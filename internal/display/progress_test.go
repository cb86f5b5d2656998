package display

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/kubes/videoconverter/internal/config"
	"github.com/kubes/videoconverter/internal/term"
)

func TestProgress_PlainLines(t *testing.T) {
	term.Configure(config.ColorNever)
	var buf bytes.Buffer
	p := NewProgress(&buf, 4)

	p.Start(1, "/in/a.mov")
	p.Done(1)

	want := "Converting 1 of 4: /in/a.mov\nProgress: 1/4 (25%)\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestProgress_ZeroTotal(t *testing.T) {
	term.Configure(config.ColorNever)
	var buf bytes.Buffer
	NewProgress(&buf, 0).Done(0)
	if got := buf.String(); got != "Progress: 0/0 (100%)\n" {
		t.Errorf("got %q", got)
	}
}

func TestProgress_ColorBarIncludesCount(t *testing.T) {
	term.Configure(config.ColorAlways)
	defer term.Configure(config.ColorNever)
	var buf bytes.Buffer
	NewProgress(&buf, 2).Done(1)
	if !strings.Contains(buf.String(), "1/2") {
		t.Errorf("bar line missing count: %q", buf.String())
	}
}

func TestProgress_ConcurrentWholeLines(t *testing.T) {
	term.Configure(config.ColorNever)
	var buf bytes.Buffer
	p := NewProgress(&buf, 20)
	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.Start(i, "/in/x.mov")
		}(i)
	}
	wg.Wait()
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 20 {
		t.Fatalf("got %d lines, want 20", len(lines))
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "Converting ") || !strings.HasSuffix(l, " of 20: /in/x.mov") {
			t.Errorf("torn line %q", l)
		}
	}
}

func TestPrintBanner_Plain(t *testing.T) {
	term.Configure(config.ColorNever)
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")
	if !strings.Contains(buf.String(), "version 1.2.3") {
		t.Errorf("banner missing version: %q", buf.String())
	}
}

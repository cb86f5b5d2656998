package probe

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Media is the flattened mediainfo report for one file. Keys are
// "<section>_<label>" with both parts lower-cased and label spaces
// replaced by underscores; values are trimmed and lower-cased.
type Media map[string]string

// Parse reads mediainfo text output. A non-empty line without a colon
// starts a new section; a line with exactly one colon is a property.
// Every other line is ignored.
func Parse(r io.Reader) (Media, error) {
	m := make(Media)
	section := ""
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, ":")
		switch len(parts) {
		case 1:
			section = strings.ToLower(strings.TrimSpace(line))
		case 2:
			label := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(parts[0])), " ", "_")
			m[section+"_"+label] = strings.ToLower(strings.TrimSpace(parts[1]))
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read mediainfo output: %w", err)
	}
	return m, nil
}

// ParseString is Parse for in-memory output.
func ParseString(s string) (Media, error) {
	return Parse(strings.NewReader(s))
}

// String renders "key: value" lines in key order.
func (m Media) String() string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(m[k])
		b.WriteByte('\n')
	}
	return b.String()
}

package probe

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Prober runs mediainfo. The zero Timeout means no limit beyond ctx.
type Prober struct {
	Binary  string
	Timeout time.Duration
}

// Probe runs "<Binary> <path>" and parses its stdout. A non-zero exit is
// returned with the tool's stderr attached.
func (p Prober) Probe(ctx context.Context, path string) (Media, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	// #nosec G204 -- binary path comes from operator configuration
	cmd := exec.CommandContext(ctx, p.Binary, path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("mediainfo %q: %w", path, ctxErr)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("mediainfo %q: %w: %s", path, err, msg)
		}
		return nil, fmt.Errorf("mediainfo %q: %w", path, err)
	}
	return Parse(bytes.NewReader(out))
}

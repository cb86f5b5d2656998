// Package display renders the interactive output stream: the startup
// banner, per-file progress lines and human-readable sizes.
package display

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/kubes/videoconverter/internal/term"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorSuccess = lipgloss.Color("#10B981")
	colorMuted   = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	countStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess)
)

const banner = `        _     _                                         _
 __   _(_) __| | ___  ___    ___ ___  _ ____   _____ _ __| |_ ___ _ __
 \ \ / / |/ _` + "`" + ` |/ _ \/ _ \  / __/ _ \| '_ \ \ / / _ \ '__| __/ _ \ '__|
  \ V /| | (_| |  __/ (_) || (_| (_) | | | \ V /  __/ |  | ||  __/ |
   \_/ |_|\__,_|\___|\___/  \___\___/|_| |_|\_/ \___|_|   \__\___|_|`

// PrintBanner writes the banner and version line to w, styled when colors
// are enabled.
func PrintBanner(w io.Writer, version string) {
	if !term.Enabled() {
		fmt.Fprintln(w, banner)
		fmt.Fprintf(w, "version %s\n\n", version)
		return
	}
	fmt.Fprintln(w, titleStyle.Render(banner))
	fmt.Fprintln(w, mutedStyle.Render("version "+version))
	fmt.Fprintln(w)
}

package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
)

var (
	accent  = lipgloss.Color("#FF5F87")
	muted   = lipgloss.Color("#666666")
	success = lipgloss.Color("#00CC66")

	titleStyle   = lipgloss.NewStyle().Bold(true)
	accentStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	successStyle = lipgloss.NewStyle().Foreground(success).Bold(true)
)

// heading prints a section title.
func heading(w io.Writer, title string) {
	fmt.Fprintln(w, accentStyle.Render("▸ "+title))
}

// field prints an aligned "label value" line.
func field(w io.Writer, label string, value any) {
	fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render(fmt.Sprintf("%-12s", label+":")), titleStyle.Render(fmt.Sprint(value)))
}

// newProgress builds the batch progress bar on w.
func newProgress(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

package output

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// humanElapsedPrecision is the rounding applied to elapsed times in the
// footer.
const humanElapsedPrecision = time.Millisecond

// Color constants using the ANSI 256-color palette.
const (
	// ColorSuccess is used for OK status (green).
	ColorSuccess = lipgloss.Color("42")

	// ColorDanger is used for FAILED status and removals (red).
	ColorDanger = lipgloss.Color("196")

	// ColorWarning is used for modifications and additions (orange).
	ColorWarning = lipgloss.Color("214")

	// ColorMuted is used for the stats footer (gray).
	ColorMuted = lipgloss.Color("245")
)

var (
	okStyle     = lipgloss.NewStyle().Foreground(ColorSuccess).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(ColorDanger).Bold(true)
	changeStyle = lipgloss.NewStyle().Foreground(ColorWarning)
	mutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
)

// PrettyFormatter renders results with color for interactive terminals.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, msg := range r.Messages {
		switch {
		case strings.HasSuffix(msg, ": OK"):
			fmt.Fprintln(w, okStyle.Render(msg))
		case strings.HasSuffix(msg, ": FAILED"):
			fmt.Fprintln(w, failStyle.Render(msg))
		default:
			fmt.Fprintln(w, changeStyle.Render(msg))
		}
	}

	footer := fmt.Sprintf("%d files, %d dirs, %s in %s",
		r.Stats.Files, r.Stats.Dirs,
		humanize.IBytes(uint64(r.Stats.TotalSize)),
		r.Stats.Elapsed.Round(humanElapsedPrecision))
	fmt.Fprintln(w, mutedStyle.Render(footer))
	return nil
}

func init() {
	Register("pretty", func() Formatter {
		return &PrettyFormatter{}
	})
}

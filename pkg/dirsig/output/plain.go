package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
)

// PlainFormatter formats output as plain text suitable for scripting
// and piping. No colors or styling are applied.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *Result) error {
	for _, msg := range r.Messages {
		if _, err := fmt.Fprintln(w, msg); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "digest\t%s\n", r.Digest)
	fmt.Fprintf(tw, "files\t%d\n", r.Stats.Files)
	fmt.Fprintf(tw, "dirs\t%d\n", r.Stats.Dirs)
	fmt.Fprintf(tw, "size\t%s\n", humanize.IBytes(uint64(r.Stats.TotalSize)))
	return tw.Flush()
}

func init() {
	Register("plain", func() Formatter {
		return &PlainFormatter{}
	})
}

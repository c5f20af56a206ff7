package output

import (
	"bytes"
	"encoding/json"

	"github.com/dustin/go-humanize"
)

// jsonOutput is the full JSON output structure.
type jsonOutput struct {
	Path     string    `json:"path"`
	Digest   string    `json:"digest"`
	OK       bool      `json:"ok"`
	Messages []string  `json:"messages"`
	Stats    jsonStats `json:"stats"`
}

// jsonStats carries the counters with a human-readable size alongside.
type jsonStats struct {
	Files     int64  `json:"files"`
	Dirs      int64  `json:"dirs"`
	TotalSize int64  `json:"total_size"`
	SizeHuman string `json:"size_human"`
	Elapsed   string `json:"elapsed"`
}

// JSONFormatter formats output as a single indented JSON object.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *Result) error {
	messages := r.Messages
	if messages == nil {
		messages = []string{}
	}

	out := jsonOutput{
		Path:     r.Path,
		Digest:   r.Digest,
		OK:       r.OK,
		Messages: messages,
		Stats: jsonStats{
			Files:     r.Stats.Files,
			Dirs:      r.Stats.Dirs,
			TotalSize: r.Stats.TotalSize,
			SizeHuman: humanize.IBytes(uint64(r.Stats.TotalSize)),
			Elapsed:   r.Stats.Elapsed.String(),
		},
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

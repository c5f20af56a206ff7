package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	return &Result{
		Path:   "/srv/data",
		Digest: "abc123",
		OK:     false,
		Messages: []string{
			"/srv/data/b.txt: file modified.",
			"/srv/data: FAILED",
		},
		Stats: Stats{
			Files:     12,
			Dirs:      3,
			TotalSize: 4096,
			Elapsed:   150 * time.Millisecond,
		},
	}
}

func TestGetUnknownFormat(t *testing.T) {
	_, err := Get("sparkles")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sparkles")
}

func TestFormatsRegistered(t *testing.T) {
	formats := Formats()
	assert.Contains(t, formats, "plain")
	assert.Contains(t, formats, "json")
	assert.Contains(t, formats, "pretty")
}

func TestPlainFormatter(t *testing.T) {
	f, err := Get("plain")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "/srv/data/b.txt: file modified.")
	assert.Contains(t, out, "/srv/data: FAILED")
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "4.0 KiB")
}

func TestJSONFormatter(t *testing.T) {
	f, err := Get("json")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleResult()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "/srv/data", decoded["path"])
	assert.Equal(t, false, decoded["ok"])
	assert.Len(t, decoded["messages"], 2)
}

func TestJSONFormatterEmptyMessages(t *testing.T) {
	f, err := Get("json")
	require.NoError(t, err)

	r := sampleResult()
	r.Messages = nil

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, r))
	assert.Contains(t, buf.String(), `"messages": []`)
}

func TestPrettyFormatter(t *testing.T) {
	f, err := Get("pretty")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleResult()))
	assert.Contains(t, buf.String(), "FAILED")
	assert.Contains(t, buf.String(), "12 files")
}

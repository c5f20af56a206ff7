// Package output provides formatters for displaying verification and
// probe results in various output formats (plain, json, pretty).
//
// The package uses a registry pattern so formatter implementations can
// be selected at runtime:
//
//	formatter, err := output.Get("plain")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var buf bytes.Buffer
//	if err := formatter.Format(&buf, result); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Print(buf.String())
package output

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Stats summarizes the fingerprinting work behind a result.
type Stats struct {
	// Files and Dirs are recursive entry counts.
	Files int64 `json:"files"`
	Dirs  int64 `json:"dirs"`

	// TotalSize is the total bytes under the root.
	TotalSize int64 `json:"total_size"`

	// Elapsed is how long the check took.
	Elapsed time.Duration `json:"elapsed"`
}

// Result is a verification outcome prepared for rendering.
type Result struct {
	// Path is the verified root.
	Path string `json:"path"`

	// Digest is the freshly computed root digest.
	Digest string `json:"digest"`

	// OK reports whether the tree matched its previous fingerprint.
	OK bool `json:"ok"`

	// Messages is the ordered change report, OK/FAILED line included.
	Messages []string `json:"messages"`

	// Stats holds aggregate counters.
	Stats Stats `json:"stats"`
}

// Formatter renders a result into a buffer.
type Formatter interface {
	Format(w *bytes.Buffer, r *Result) error
}

// factory creates a new formatter instance.
type factory func() Formatter

var (
	registryMu sync.RWMutex
	registry   = make(map[string]factory)
)

// Register adds a formatter factory under a name. Called from init
// functions of the formatter files.
func Register(name string, f factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Get returns a new formatter for the given name.
func Get(name string) (Formatter, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %v)", name, Formats())
	}
	return f(), nil
}

// Formats returns the registered format names, sorted.
func Formats() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

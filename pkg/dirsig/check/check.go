// Package check compares a freshly fingerprinted tree against the
// previously recorded one and reports what changed.
package check

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/jamesainslie/dirsig/pkg/dirsig/manifest"
)

// Detector verifies paths against a previously persisted record.
type Detector struct {
	// Builder fingerprints directories. Its OnProgress callback, when
	// set, drives progress reporting during a check.
	Builder *manifest.Builder
}

// NewDetector returns a Detector using b.
func NewDetector(b *manifest.Builder) *Detector {
	return &Detector{Builder: b}
}

// Result is the outcome of a check.
type Result struct {
	// OK reports whether the path matched its previous fingerprint.
	OK bool

	// Messages is the ordered human-readable report: itemized changes
	// in path order (removals last), then the overall OK/FAILED line.
	Messages []string

	// Build is the fresh manifest, nil when dir was a plain file.
	Build *manifest.Result
}

// Check verifies dir against prev. A plain file is compared digest to
// digest; a directory is first checked by its aggregate digest alone and
// only diffed entry by entry on mismatch. A missing dir surfaces as the
// underlying I/O error.
func (d *Detector) Check(dir string, prev manifest.Record) (*Result, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		return d.checkFile(dir, prev)
	}

	build, err := d.Builder.Build(dir)
	if err != nil {
		return nil, err
	}

	if fp, ok := prev[dir]; ok && fp.Digest == build.Digest {
		return &Result{
			OK:       true,
			Messages: []string{dir + ": OK"},
			Build:    build,
		}, nil
	}

	return d.diff(dir, prev, build), nil
}

// checkFile is the single-file fast path.
func (d *Detector) checkFile(path string, prev manifest.Record) (*Result, error) {
	digest, err := d.Builder.Hasher.Digest(path)
	if err != nil {
		return nil, err
	}

	if fp, ok := prev[path]; ok && fp.Digest == digest {
		return &Result{OK: true, Messages: []string{path + ": OK"}}, nil
	}
	return &Result{OK: false, Messages: []string{path + ": FAILED"}}, nil
}

// diff itemizes the differences between build and the previously known
// entries under dir.
func (d *Detector) diff(dir string, prev manifest.Record, build *manifest.Result) *Result {
	// Previously known paths under dir, the candidate set.
	candidates := make(map[string]manifest.Fingerprint)
	for path, fp := range prev {
		if path != dir && strings.HasPrefix(path, dir) {
			candidates[path] = fp
		}
	}

	// First run against this tree: nothing to diff.
	if len(candidates) == 0 {
		return &Result{
			OK:       false,
			Messages: []string{dir + ": FAILED"},
			Build:    build,
		}
	}

	var messages []string
	visited := make(map[string]bool, len(build.Entries))

	for _, entry := range build.Entries {
		path := manifest.JoinPath(dir, entry.Path)
		fp, known := candidates[path]
		if !known {
			messages = append(messages, fmt.Sprintf("%s: new %s added.", path, kindNoun(entry.Kind)))
			continue
		}
		visited[path] = true
		if fp.Digest != entry.Digest {
			messages = append(messages, fmt.Sprintf("%s: %s modified.", path, kindNoun(entry.Kind)))
		}
	}

	// Whatever the walk never visited has been removed. The set
	// difference is computed after the walk, sorted for a stable report.
	var removed []string
	for path := range candidates {
		if !visited[path] {
			removed = append(removed, path)
		}
	}
	sort.Strings(removed)
	for _, path := range removed {
		messages = append(messages, fmt.Sprintf("%s: %s removed.", path, kindNoun(candidates[path].Kind)))
	}

	messages = append(messages, dir+": FAILED")
	return &Result{OK: false, Messages: messages, Build: build}
}

// kindNoun returns the wording used in diff messages.
func kindNoun(k manifest.Kind) string {
	if k == manifest.KindDir {
		return "directory"
	}
	return "file"
}

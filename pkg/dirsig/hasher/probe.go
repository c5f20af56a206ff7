package hasher

import (
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// ProbeResult is a dry estimate of the work a fingerprinting pass will do
// over a tree, used to size progress indicators before any hashing starts.
type ProbeResult struct {
	// Entries is the number of files and directories encountered.
	Entries int64

	// CappedSize is the total bytes that will be hashed: each file
	// contributes min(PartialThreshold, size).
	CappedSize int64
}

// Probe walks path without hashing anything and returns the entry count
// and capped byte total. A plain file probes as a single entry. Symlinks
// are skipped, matching the fingerprinting walk.
func (h *Hasher) Probe(path string) (ProbeResult, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return ProbeResult{}, fmt.Errorf("probe %s: %w", path, err)
	}
	if !info.IsDir() {
		return ProbeResult{Entries: 1, CappedSize: h.CappedSize(info.Size())}, nil
	}

	var entries, capped atomic.Int64

	conf := fastwalk.Config{
		Follow: false,
	}

	err = fastwalk.Walk(&conf, path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if d.IsDir() {
			entries.Add(1)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		entries.Add(1)
		capped.Add(h.CappedSize(info.Size()))
		return nil
	})
	if err != nil {
		return ProbeResult{}, fmt.Errorf("probe %s: %w", path, err)
	}

	return ProbeResult{
		Entries:    entries.Load(),
		CappedSize: capped.Load(),
	}, nil
}

package manifest

import (
	"bytes"
	"fmt"
	"sort"
)

// serialize renders one directory level as the byte stream its digest is
// computed from: tab-delimited records, one per line, sorted by digest so
// the result is independent of directory listing order. Names are the
// immediate child names, always forward-slashed, and lines end in a bare
// \n on every platform.
func serialize(level []levelEntry) []byte {
	sorted := make([]levelEntry, len(level))
	copy(sorted, level)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].entry.Digest < sorted[j].entry.Digest
	})

	var buf bytes.Buffer
	for _, le := range sorted {
		e := le.entry
		fmt.Fprintf(&buf, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			e.Digest, e.Kind, e.FileCount, e.DirCount, e.Size,
			e.TotalFileCount, e.TotalSize, le.name)
	}
	return buf.Bytes()
}

// levelEntry pairs an entry with its name relative to the directory
// being serialized.
type levelEntry struct {
	name  string
	entry Entry
}

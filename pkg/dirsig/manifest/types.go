// Package manifest builds content-derived fingerprints of directory
// trees. Each directory digest is computed from the serialized, digest-
// sorted manifest of its immediate children, so a change to any file
// propagates to every ancestor digest while unaffected siblings keep
// theirs.
package manifest

import "encoding/json"

// Kind marks an entry as a file or a directory. The values double as
// the kind markers in the serialized manifest and the persisted record.
type Kind string

const (
	// KindFile marks a regular file entry.
	KindFile Kind = "-"
	// KindDir marks a directory entry.
	KindDir Kind = "d"
)

// Entry describes one filesystem entry in a built manifest.
type Entry struct {
	// Path is relative to the scan root and always uses forward slashes.
	Path string

	// Digest is the hex content digest: file bytes for files, the
	// serialized child manifest for directories.
	Digest string

	// Kind is the entry kind.
	Kind Kind

	// FileCount and DirCount are the counts of immediate children
	// (1/0 for a file entry).
	FileCount int64
	DirCount  int64

	// Size is the byte size counted for this entry: the file size for
	// files, the sum of direct file children sizes for directories.
	Size int64

	// TotalFileCount and TotalSize are recursive totals under this entry.
	TotalFileCount int64
	TotalSize      int64
}

// Result is the aggregate outcome of fingerprinting a directory.
type Result struct {
	// Digest is the directory's own digest.
	Digest string

	// FileCount and DirCount are immediate children counts.
	FileCount int64
	DirCount  int64

	// Size is the total size of immediate file children.
	Size int64

	// TotalFileCount and TotalSize are recursive totals.
	TotalFileCount int64
	TotalSize      int64

	// Entries lists every entry under the root, in path order.
	Entries []Entry
}

// Fingerprint is the persisted identity of one path.
type Fingerprint struct {
	Digest string
	Kind   Kind
}

// MarshalJSON encodes the fingerprint as the two-element array
// ["digest", "kind"] used in the persisted store layout.
func (f Fingerprint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{f.Digest, string(f.Kind)})
}

// UnmarshalJSON decodes the two-element array form.
func (f *Fingerprint) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	f.Digest = pair[0]
	f.Kind = Kind(pair[1])
	return nil
}

// Record maps paths (as passed to the builder, joined with forward
// slashes) to their last known fingerprints. It is rebuilt wholesale on
// every run rather than patched incrementally.
type Record map[string]Fingerprint

// Record builds the fingerprint record for a tree rooted at root,
// including the root itself.
func (r *Result) Record(root string) Record {
	rec := make(Record, len(r.Entries)+1)
	rec[root] = Fingerprint{Digest: r.Digest, Kind: KindDir}
	for _, e := range r.Entries {
		rec[JoinPath(root, e.Path)] = Fingerprint{Digest: e.Digest, Kind: e.Kind}
	}
	return rec
}

// JoinPath joins a root with a forward-slash relative path without
// cleaning either part, so record keys round-trip exactly.
func JoinPath(root, rel string) string {
	if rel == "" {
		return root
	}
	if len(root) > 0 && root[len(root)-1] == '/' {
		return root + rel
	}
	return root + "/" + rel
}

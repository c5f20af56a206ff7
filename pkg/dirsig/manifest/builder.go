package manifest

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/jamesainslie/dirsig/pkg/dirsig/hashcache"
	"github.com/jamesainslie/dirsig/pkg/dirsig/hasher"
)

// Builder fingerprints directory trees. It walks synchronously on the
// calling goroutine; there is no cancellation, a build runs to
// completion or fails on the first I/O error.
type Builder struct {
	// Hasher computes file and manifest digests.
	Hasher *hasher.Hasher

	// Cache optionally memoizes file digests by size and mtime.
	// Nil disables memoization.
	Cache *hashcache.Cache

	// ReadDir lists immediate children of a directory. Defaults to
	// os.ReadDir; injectable so tests can vary listing order.
	ReadDir func(string) ([]os.DirEntry, error)

	// OnProgress, when set, is invoked once per hashed file with its
	// capped size contribution, min(PartialThreshold, size). It runs
	// synchronously on the building goroutine.
	OnProgress func(int64)
}

// NewBuilder returns a Builder using h with defaults for everything else.
func NewBuilder(h *hasher.Hasher) *Builder {
	return &Builder{Hasher: h}
}

// Build fingerprints the tree rooted at dir. Symlinks are skipped.
// A missing or unreadable dir surfaces as the underlying I/O error.
func (b *Builder) Build(dir string) (*Result, error) {
	run := &buildRun{b: b}
	if b.Cache != nil {
		run.pending = make(map[string]*hashcache.Entry)
	}

	result, err := run.level(dir, "")
	if err != nil {
		return nil, err
	}

	if len(run.pending) > 0 {
		if err := b.Cache.PutBatch(run.pending); err != nil {
			return nil, err
		}
	}

	sort.Slice(result.Entries, func(i, j int) bool {
		return result.Entries[i].Path < result.Entries[j].Path
	})
	return result, nil
}

// buildRun carries per-build state so a Builder can be reused.
type buildRun struct {
	b       *Builder
	pending map[string]*hashcache.Entry
}

// level fingerprints one directory level and recurses into children.
// rel is the directory's path relative to the scan root ("" for the
// root itself).
func (r *buildRun) level(dir, rel string) (*Result, error) {
	readDir := r.b.ReadDir
	if readDir == nil {
		readDir = os.ReadDir
	}

	children, err := readDir(dir)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	level := make([]levelEntry, 0, len(children))

	for _, child := range children {
		if child.Type()&fs.ModeSymlink != 0 {
			continue
		}

		name := child.Name()
		full := filepath.Join(dir, name)
		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}

		switch {
		case child.IsDir():
			sub, err := r.level(full, childRel)
			if err != nil {
				return nil, err
			}
			entry := Entry{
				Path:           childRel,
				Digest:         sub.Digest,
				Kind:           KindDir,
				FileCount:      sub.FileCount,
				DirCount:       sub.DirCount,
				Size:           sub.Size,
				TotalFileCount: sub.TotalFileCount,
				TotalSize:      sub.TotalSize,
			}
			level = append(level, levelEntry{name: name, entry: entry})
			result.Entries = append(result.Entries, entry)
			result.Entries = append(result.Entries, sub.Entries...)

			result.DirCount++
			result.TotalFileCount += sub.TotalFileCount
			result.TotalSize += sub.TotalSize

		case child.Type().IsRegular():
			info, err := child.Info()
			if err != nil {
				return nil, err
			}
			digest, err := r.digestFile(full, info)
			if err != nil {
				return nil, err
			}
			entry := Entry{
				Path:           childRel,
				Digest:         digest,
				Kind:           KindFile,
				FileCount:      1,
				DirCount:       0,
				Size:           info.Size(),
				TotalFileCount: 1,
				TotalSize:      info.Size(),
			}
			level = append(level, levelEntry{name: name, entry: entry})
			result.Entries = append(result.Entries, entry)

			result.FileCount++
			result.Size += info.Size()
			result.TotalFileCount++
			result.TotalSize += info.Size()

			if r.b.OnProgress != nil {
				r.b.OnProgress(r.b.Hasher.CappedSize(info.Size()))
			}
		}
		// Other entry kinds (sockets, devices, fifos) carry no content
		// identity and are skipped like symlinks.
	}

	// The directory digest is the digest of its serialized child
	// manifest, so an empty directory still has an identity distinct
	// from an absent one.
	result.Digest = r.b.Hasher.DigestBytes(serialize(level))
	return result, nil
}

// digestFile hashes one file, consulting the memo cache when present.
func (r *buildRun) digestFile(path string, info fs.FileInfo) (string, error) {
	if r.b.Cache != nil {
		if digest, ok := r.b.Cache.Lookup(path, info.Size(), info.ModTime().UnixNano()); ok {
			return digest, nil
		}
	}

	digest, err := r.b.Hasher.Digest(path)
	if err != nil {
		return "", err
	}

	if r.pending != nil {
		r.pending[path] = &hashcache.Entry{
			Size:      info.Size(),
			MtimeNano: info.ModTime().UnixNano(),
			Digest:    digest,
		}
	}
	return digest, nil
}

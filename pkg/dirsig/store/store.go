// Package store implements a durable key-value map backed by a single
// file. Writes stay in memory until Sync, which replaces the backing
// file atomically, so readers never observe a half-written store. The
// on-disk format is sniffed on load by trying each supported decoder in
// a fixed order, most structurally restrictive first.
//
// A store is meant for single-process, single-invocation use per backing
// file. Nothing locks concurrent invocations against the same file;
// racing Syncs interleave at atomic-rename granularity with last-writer-
// wins semantics.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Mode controls how a store treats its backing file.
type Mode int

const (
	// ModeCreate loads the backing file when present and allows Sync.
	ModeCreate Mode = iota
	// ModeReadOnly loads the backing file and turns Sync into a no-op.
	ModeReadOnly
	// ModeTruncate ignores any existing backing file and starts empty.
	ModeTruncate
)

// ErrBadFormat is returned when no supported decoder can parse the
// backing file.
var ErrBadFormat = errors.New("store file not in a supported format")

// ErrNotFound is returned by Get for absent keys.
var ErrNotFound = errors.New("store key not found")

// Options configures Open.
type Options struct {
	// Mode defaults to ModeCreate.
	Mode Mode

	// Format selects the serialization used by Sync. Loading always
	// sniffs the format independently. Defaults to FormatGob.
	Format Format

	// Perm, when nonzero, is applied to the backing file after every
	// successful Sync.
	Perm os.FileMode
}

// Store is an in-memory key-value map with a durable backing file.
// Values are held as raw JSON so heterogeneous data (fingerprint pairs,
// cached lookup results) can share one store.
type Store struct {
	path   string
	mode   Mode
	format Format
	perm   os.FileMode
	values map[string]json.RawMessage
	synced bool
}

// Open opens the store backed by path. A missing file yields an empty
// store; an unreadable or undecodable one yields an error.
func Open(path string, opts Options) (*Store, error) {
	if opts.Format == "" {
		opts.Format = FormatGob
	}

	s := &Store{
		path:   path,
		mode:   opts.Mode,
		format: opts.Format,
		perm:   opts.Perm,
		values: make(map[string]json.RawMessage),
	}

	if opts.Mode == ModeTruncate {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	values, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	s.values = values
	return s, nil
}

// Set stores v under key, replacing any previous value.
func (s *Store) Set(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store set %s: %w", key, err)
	}
	s.values[key] = data
	return nil
}

// Get unmarshals the value stored under key into out.
func (s *Store) Get(key string, out any) error {
	data, ok := s.values[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return json.Unmarshal(data, out)
}

// Contains reports whether key is present.
func (s *Store) Contains(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Delete removes key from the in-memory map.
func (s *Store) Delete(key string) {
	delete(s.values, key)
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	return len(s.values)
}

// Sync writes the whole map to disk. It serializes into a sibling temp
// file and atomically renames it over the backing file; on a mid-write
// failure the temp file is removed and the original is left untouched.
// Read-only stores sync as a no-op.
func (s *Store) Sync() error {
	if s.mode == ModeReadOnly {
		return nil
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("sync store %s: %w", s.path, err)
	}

	if err := encode(f, s.format, s.values); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync store %s: %w", s.path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("sync store %s: %w", s.path, err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("sync store %s: %w", s.path, err)
	}

	if s.perm != 0 {
		if err := os.Chmod(s.path, s.perm); err != nil {
			return fmt.Errorf("sync store %s: %w", s.path, err)
		}
	}
	return nil
}

// Close syncs exactly once; later calls are no-ops. Suitable for defer.
func (s *Store) Close() error {
	if s.synced {
		return nil
	}
	s.synced = true
	return s.Sync()
}

// Clear deletes the backing file and resets the in-memory map.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear store %s: %w", s.path, err)
	}
	s.values = make(map[string]json.RawMessage)
	return nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// With opens a store, passes it to fn, and guarantees exactly one Sync
// on the way out, whether fn succeeds or fails. fn's error wins over the
// sync error.
func With(path string, opts Options, fn func(*Store) error) error {
	s, err := Open(path, opts)
	if err != nil {
		return err
	}

	fnErr := fn(s)
	if syncErr := s.Close(); fnErr == nil {
		return syncErr
	}
	return fnErr
}

// Package hashcache memoizes file content digests across fingerprinting
// runs. A cached digest is reused only when the file's size and mtime
// both match, so a hit never changes what the digest would have been.
package hashcache

import (
	"bytes"
	"encoding/gob"
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when a cache entry doesn't exist.
var ErrNotFound = errors.New("hashcache entry not found")

// Entry is a memoized digest with the file identity it was computed for.
type Entry struct {
	Size      int64
	MtimeNano int64
	Digest    string
}

// Encode serializes the entry to bytes using gob.
func (e *Entry) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes bytes into the entry using gob.
func (e *Entry) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(e)
}

// Cache wraps Badger for digest memoization.
type Cache struct {
	db *badger.DB
}

// Open opens or creates a cache at the given directory.
func Open(path string) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable badger logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Cache{db: db}, nil
}

// Close closes the cache.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Lookup returns the memoized digest for path if the recorded size and
// mtime still match. A mismatch reads as a miss, not an error.
func (c *Cache) Lookup(path string, size, mtimeNano int64) (string, bool) {
	var entry Entry

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(path))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(entry.Decode)
	})
	if err != nil {
		return "", false
	}

	if entry.Size != size || entry.MtimeNano != mtimeNano {
		return "", false
	}
	return entry.Digest, true
}

// Put stores a digest for path.
func (c *Cache) Put(path string, entry *Entry) error {
	value, err := entry.Encode()
	if err != nil {
		return err
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(path), value)
	})
}

// PutBatch stores multiple digests in a single write batch.
func (c *Cache) PutBatch(entries map[string]*Entry) error {
	wb := c.db.NewWriteBatch()
	defer wb.Cancel()

	for path, entry := range entries {
		value, err := entry.Encode()
		if err != nil {
			return err
		}
		if err := wb.Set([]byte(path), value); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Clear removes all memoized digests.
func (c *Cache) Clear() error {
	return c.db.DropAll()
}

// Package hasher computes content digests for files and byte streams.
//
// Files below the partial threshold are hashed in full. Larger files are
// hashed by sampling the first and last halves of the threshold (32 MiB
// head plus 32 MiB tail at the defaults), so the cost of fingerprinting
// a very large file is bounded regardless of its size.
package hasher

import (
	"bytes"
	"crypto/md5" //nolint:gosec // fingerprinting, not security; digests must stay md5-compatible
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
)

// Default read policy.
const (
	// DefaultBlockSize is the read granularity for hashing.
	DefaultBlockSize = 1 * MiB

	// DefaultPartialThreshold is the file size at and above which only
	// the head and tail of the file are hashed.
	DefaultPartialThreshold = 64 * MiB
)

// Hasher computes hex-encoded content digests.
//
// The zero value is not usable; construct with New. BlockSize and
// PartialThreshold are exported so tests can exercise the partial-read
// boundary without multi-gigabyte fixtures.
type Hasher struct {
	// BlockSize is the size of individual reads.
	BlockSize int64

	// PartialThreshold is the size at which partial hashing kicks in.
	// Files of at least this size contribute only their first and last
	// PartialThreshold/2 bytes to the digest.
	PartialThreshold int64
}

// New returns a Hasher with the default read policy.
func New() *Hasher {
	return &Hasher{
		BlockSize:        DefaultBlockSize,
		PartialThreshold: DefaultPartialThreshold,
	}
}

// Digest computes the content digest of the file at path.
// Symlinks are not followed; callers are expected to filter them out
// before hashing.
func (h *Hasher) Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", path, err)
	}

	digest, err := h.digest(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return digest, nil
}

// DigestBytes computes the digest of an in-memory byte stream using the
// same read policy as Digest, so a serialized manifest hashes exactly as
// it would if written to a file first.
func (h *Hasher) DigestBytes(data []byte) string {
	// A bytes.Reader cannot fail, so neither can the digest.
	digest, _ := h.digest(bytes.NewReader(data), int64(len(data)))
	return digest
}

// digest hashes r according to the partial-read policy.
func (h *Hasher) digest(r io.ReadSeeker, size int64) (string, error) {
	sum := md5.New() //nolint:gosec
	buf := make([]byte, h.BlockSize)

	if size < h.PartialThreshold {
		if _, err := io.CopyBuffer(sum, r, buf); err != nil {
			return "", err
		}
		return hex.EncodeToString(sum.Sum(nil)), nil
	}

	// Head and tail, skipping the middle entirely.
	half := h.PartialThreshold / 2
	if _, err := io.CopyBuffer(sum, io.LimitReader(r, half), buf); err != nil {
		return "", err
	}
	if _, err := r.Seek(-half, io.SeekEnd); err != nil {
		return "", err
	}
	if _, err := io.CopyBuffer(sum, io.LimitReader(r, half), buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(sum.Sum(nil)), nil
}

// CappedSize returns the number of bytes of a file that contribute to
// its digest: the full size below the threshold, the threshold above it.
func (h *Hasher) CappedSize(size int64) int64 {
	if size < h.PartialThreshold {
		return size
	}
	return h.PartialThreshold
}

package hashcache

import (
	"testing"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLookupMiss(t *testing.T) {
	c := openTestCache(t)

	if _, ok := c.Lookup("/no/such/file", 1, 2); ok {
		t.Error("expected miss for unknown path")
	}
}

func TestPutAndLookup(t *testing.T) {
	c := openTestCache(t)

	entry := &Entry{Size: 100, MtimeNano: 42, Digest: "abc"}
	if err := c.Put("/a", entry); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	digest, ok := c.Lookup("/a", 100, 42)
	if !ok || digest != "abc" {
		t.Errorf("expected hit with digest abc, got %q ok=%v", digest, ok)
	}
}

func TestLookupStale(t *testing.T) {
	c := openTestCache(t)

	if err := c.Put("/a", &Entry{Size: 100, MtimeNano: 42, Digest: "abc"}); err != nil {
		t.Fatal(err)
	}

	if _, ok := c.Lookup("/a", 101, 42); ok {
		t.Error("size mismatch must read as a miss")
	}
	if _, ok := c.Lookup("/a", 100, 43); ok {
		t.Error("mtime mismatch must read as a miss")
	}
}

func TestPutBatch(t *testing.T) {
	c := openTestCache(t)

	entries := map[string]*Entry{
		"/a": {Size: 1, MtimeNano: 1, Digest: "d1"},
		"/b": {Size: 2, MtimeNano: 2, Digest: "d2"},
	}
	if err := c.PutBatch(entries); err != nil {
		t.Fatalf("PutBatch failed: %v", err)
	}

	for path, want := range entries {
		digest, ok := c.Lookup(path, want.Size, want.MtimeNano)
		if !ok || digest != want.Digest {
			t.Errorf("%s: expected %q, got %q ok=%v", path, want.Digest, digest, ok)
		}
	}
}

func TestClear(t *testing.T) {
	c := openTestCache(t)

	if err := c.Put("/a", &Entry{Size: 1, MtimeNano: 1, Digest: "d1"}); err != nil {
		t.Fatal(err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := c.Lookup("/a", 1, 1); ok {
		t.Error("expected miss after Clear")
	}
}

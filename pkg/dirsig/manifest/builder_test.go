package manifest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jamesainslie/dirsig/pkg/dirsig/hasher"
)

func testBuilder() *Builder {
	return NewBuilder(hasher.New())
}

func write(t *testing.T, root string, rel string, content string) {
	t.Helper()
	full := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func mkdir(t *testing.T, root string, rel string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(rel)), 0o755); err != nil {
		t.Fatal(err)
	}
}

// buildDigest builds and returns just the root digest.
func buildDigest(t *testing.T, b *Builder, dir string) string {
	t.Helper()
	res, err := b.Build(dir)
	if err != nil {
		t.Fatalf("Build(%s) failed: %v", dir, err)
	}
	return res.Digest
}

func TestBuildDeterministic(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.txt", "hello")
	write(t, root, "sub/b.txt", "world")
	mkdir(t, root, "empty")

	b := testBuilder()
	first := buildDigest(t, b, root)
	second := buildDigest(t, b, root)
	if first != second {
		t.Errorf("digest not deterministic: %s != %s", first, second)
	}
}

func TestBuildIgnoresListingOrder(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.txt", "hello")
	write(t, root, "b.txt", "world")
	write(t, root, "sub/c.txt", "deep")

	forward := testBuilder()
	reversed := testBuilder()
	reversed.ReadDir = func(dir string) ([]os.DirEntry, error) {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
		return entries, nil
	}

	if f, r := buildDigest(t, forward, root), buildDigest(t, reversed, root); f != r {
		t.Errorf("digest depends on listing order: %s != %s", f, r)
	}
}

func TestBuildSensitivity(t *testing.T) {
	root := t.TempDir()
	write(t, root, "sub/inner/a.txt", "hello")
	write(t, root, "sibling/b.txt", "world")

	b := testBuilder()
	before, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}

	write(t, root, "sub/inner/a.txt", "hellp")

	after, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}

	if before.Digest == after.Digest {
		t.Error("root digest unchanged after file edit")
	}

	digests := func(r *Result) map[string]string {
		m := make(map[string]string)
		for _, e := range r.Entries {
			m[e.Path] = e.Digest
		}
		return m
	}
	db, da := digests(before), digests(after)

	for _, path := range []string{"sub/inner/a.txt", "sub/inner", "sub"} {
		if db[path] == da[path] {
			t.Errorf("%s: digest should change after edit", path)
		}
	}
	for _, path := range []string{"sibling", "sibling/b.txt"} {
		if db[path] != da[path] {
			t.Errorf("%s: sibling digest must be unchanged", path)
		}
	}
}

func TestEmptyDirDigest(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()
	mkdir(t, rootA, "first")
	mkdir(t, rootB, "second")

	b := testBuilder()
	resA, err := b.Build(rootA)
	if err != nil {
		t.Fatal(err)
	}
	resB, err := b.Build(rootB)
	if err != nil {
		t.Fatal(err)
	}

	// The name participates only at the parent level, so differently
	// named empty directories have the same subtree digest...
	if resA.Entries[0].Digest != resB.Entries[0].Digest {
		t.Error("empty directories should share a subtree digest regardless of name")
	}
	// ...while the parents that contain them do not.
	if resA.Digest == resB.Digest {
		t.Error("parent digest must reflect the differing child name")
	}
}

func TestEmptyDirDistinctFromAbsent(t *testing.T) {
	withDir := t.TempDir()
	without := t.TempDir()
	write(t, withDir, "a.txt", "hello")
	write(t, without, "a.txt", "hello")
	mkdir(t, withDir, "empty")

	b := testBuilder()
	if buildDigest(t, b, withDir) == buildDigest(t, b, without) {
		t.Error("an empty directory must contribute identity")
	}
}

func TestBuildAggregates(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.txt", "12345")
	write(t, root, "sub/b.txt", "123")
	write(t, root, "sub/deeper/c.txt", "1")

	b := testBuilder()
	res, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}

	if res.FileCount != 1 || res.DirCount != 1 {
		t.Errorf("root direct counts: files=%d dirs=%d", res.FileCount, res.DirCount)
	}
	if res.Size != 5 {
		t.Errorf("root direct size=%d", res.Size)
	}
	if res.TotalFileCount != 3 || res.TotalSize != 9 {
		t.Errorf("root totals: files=%d size=%d", res.TotalFileCount, res.TotalSize)
	}

	byPath := make(map[string]Entry)
	for _, e := range res.Entries {
		byPath[e.Path] = e
	}

	sub := byPath["sub"]
	if sub.Kind != KindDir {
		t.Fatalf("sub kind=%q", sub.Kind)
	}
	if sub.FileCount != 1 || sub.DirCount != 1 || sub.Size != 3 {
		t.Errorf("sub direct: files=%d dirs=%d size=%d", sub.FileCount, sub.DirCount, sub.Size)
	}
	if sub.TotalFileCount != 2 || sub.TotalSize != 4 {
		t.Errorf("sub totals: files=%d size=%d", sub.TotalFileCount, sub.TotalSize)
	}

	file := byPath["a.txt"]
	if file.Kind != KindFile || file.FileCount != 1 || file.TotalSize != 5 {
		t.Errorf("a.txt entry: %+v", file)
	}
}

func TestBuildEntriesPathOrder(t *testing.T) {
	root := t.TempDir()
	write(t, root, "z.txt", "z")
	write(t, root, "a/x.txt", "x")
	write(t, root, "a/a.txt", "a")

	b := testBuilder()
	res, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i < len(res.Entries); i++ {
		if res.Entries[i-1].Path >= res.Entries[i].Path {
			t.Fatalf("entries not in path order: %q before %q",
				res.Entries[i-1].Path, res.Entries[i].Path)
		}
	}
}

func TestBuildProgress(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.txt", "hello")
	write(t, root, "sub/b.txt", "worlds")

	b := testBuilder()
	var calls int
	var total int64
	b.OnProgress = func(n int64) {
		calls++
		total += n
	}

	if _, err := b.Build(root); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("expected 2 progress calls, got %d", calls)
	}
	if total != 11 {
		t.Errorf("expected 11 capped bytes reported, got %d", total)
	}
}

func TestBuildSkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	root := t.TempDir()
	write(t, root, "a.txt", "hello")

	plain := buildDigest(t, testBuilder(), root)

	if err := os.Symlink(filepath.Join(root, "a.txt"), filepath.Join(root, "link")); err != nil {
		t.Fatal(err)
	}

	withLink, err := testBuilder().Build(root)
	if err != nil {
		t.Fatal(err)
	}
	if withLink.Digest != plain {
		t.Error("symlink must not affect the digest")
	}
	if len(withLink.Entries) != 1 {
		t.Errorf("symlink must not appear in entries, got %d entries", len(withLink.Entries))
	}
}

func TestBuildMissingRoot(t *testing.T) {
	b := testBuilder()
	if _, err := b.Build(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestRecord(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a.txt", "hello")
	write(t, root, "sub/b.txt", "world")

	b := testBuilder()
	res, err := b.Build(root)
	if err != nil {
		t.Fatal(err)
	}

	rec := res.Record(root)
	if len(rec) != 4 {
		t.Fatalf("expected 4 record entries, got %d", len(rec))
	}
	if fp := rec[root]; fp.Digest != res.Digest || fp.Kind != KindDir {
		t.Errorf("root fingerprint: %+v", fp)
	}
	if fp, ok := rec[JoinPath(root, "sub/b.txt")]; !ok || fp.Kind != KindFile {
		t.Errorf("sub/b.txt fingerprint missing or wrong kind: %+v", fp)
	}
}

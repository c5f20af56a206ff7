package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/jamesainslie/dirsig/pkg/dirsig/manifest"
)

func TestVerifyStorePathDerived(t *testing.T) {
	viper.Set("store_path", "")
	defer viper.Set("store_path", nil)

	p1 := verifyStorePath("/some/dir")
	p2 := verifyStorePath("/some/dir")
	p3 := verifyStorePath("/other/dir")

	if p1 != p2 {
		t.Errorf("same path should derive same store file: %q vs %q", p1, p2)
	}
	if p1 == p3 {
		t.Errorf("different paths should derive different store files: %q", p1)
	}
	if !strings.HasPrefix(filepath.Base(p1), "dirsig-") {
		t.Errorf("unexpected store file name: %q", p1)
	}
}

func TestVerifyStorePathConfigured(t *testing.T) {
	viper.Set("store_path", "/tmp/custom-store")
	defer viper.Set("store_path", nil)

	if got := verifyStorePath("/some/dir"); got != "/tmp/custom-store" {
		t.Errorf("configured store path not honored: %q", got)
	}
}

func TestCountDirs(t *testing.T) {
	build := &manifest.Result{
		Entries: []manifest.Entry{
			{Path: "a.txt", Kind: manifest.KindFile},
			{Path: "sub", Kind: manifest.KindDir},
			{Path: "sub/b.txt", Kind: manifest.KindFile},
			{Path: "sub/deep", Kind: manifest.KindDir},
		},
	}

	if got := countDirs(build); got != 2 {
		t.Errorf("countDirs = %d, want 2", got)
	}
}

func TestNormalizePathMissing(t *testing.T) {
	if _, err := normalizePath(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestNormalizePathExisting(t *testing.T) {
	dir := t.TempDir()
	got, err := normalizePath(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != dir {
		t.Errorf("normalizePath = %q, want %q", got, dir)
	}

	if _, err := os.Stat(got); err != nil {
		t.Fatal(err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Point config discovery at an empty directory so host config
	// cannot leak into the test.
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.StoreFormat != DefaultStoreFormat {
		t.Errorf("store format: %q", cfg.StoreFormat)
	}
	if cfg.VagrantBinary != DefaultVagrantBinary {
		t.Errorf("vagrant binary: %q", cfg.VagrantBinary)
	}
	if cfg.VagrantDir != DefaultVagrantDir {
		t.Errorf("vagrant dir: %q", cfg.VagrantDir)
	}
	if cfg.Output != DefaultOutput {
		t.Errorf("output: %q", cfg.Output)
	}
	if cfg.Cache.Enabled {
		t.Error("cache must default to disabled")
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("log level: %q", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	dir := filepath.Join(configHome, "dirsig")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "store_format: gob\nvagrant_binary: /opt/vagrant/bin/vagrant\ncache:\n  enabled: true\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.StoreFormat != "gob" {
		t.Errorf("store format: %q", cfg.StoreFormat)
	}
	if cfg.VagrantBinary != "/opt/vagrant/bin/vagrant" {
		t.Errorf("vagrant binary: %q", cfg.VagrantBinary)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache.enabled not read from file")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	got, err := ExpandPath("~/x")
	if err != nil {
		t.Fatal(err)
	}
	if got != filepath.Join(home, "x") {
		t.Errorf("ExpandPath(~/x) = %q", got)
	}

	got, err = ExpandPath("/abs/path")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/abs/path" {
		t.Errorf("absolute path must pass through, got %q", got)
	}
}

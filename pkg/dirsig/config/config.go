package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level"`
	Path       string            `mapstructure:"path"`
	Components map[string]string `mapstructure:"components"`
}

// CacheConfig configures the digest memo cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Config represents the application configuration.
type Config struct {
	// StorePath is the fingerprint store backing file. Empty derives a
	// host-unique path in the system temp directory.
	StorePath string `mapstructure:"store_path"`

	// StoreFormat is the write format for the store: gob, json, or csv.
	StoreFormat string `mapstructure:"store_format"`

	// VagrantBinary is the vagrant executable used by the inventory.
	VagrantBinary string `mapstructure:"vagrant_binary"`

	// VagrantDir is the directory fingerprinted to decide cache
	// freshness for inventory data.
	VagrantDir string `mapstructure:"vagrant_dir"`

	// Output selects the verify/probe output format.
	Output string `mapstructure:"output"`

	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/dirsig/config.yaml
//   - $HOME/.config/dirsig/config.yaml
//
// Environment variables are prefixed with DIRSIG_ (e.g. DIRSIG_STORE_PATH).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "dirsig"))
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "dirsig"))

	v.SetEnvPrefix("DIRSIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	// A missing config file is fine; defaults apply.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// SetDefaults registers the default values on a viper instance. The CLI
// shares these with Load.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("store_path", "")
	v.SetDefault("store_format", DefaultStoreFormat)
	v.SetDefault("vagrant_binary", DefaultVagrantBinary)
	v.SetDefault("vagrant_dir", DefaultVagrantDir)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.path", DefaultCachePath())
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.path", "")
}

// DefaultCachePath returns the XDG cache directory for the digest memo
// cache.
func DefaultCachePath() string {
	return filepath.Join(xdg.CacheHome, "dirsig", "digests")
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

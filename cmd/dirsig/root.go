package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/dirsig/pkg/dirsig/config"
	"github.com/jamesainslie/dirsig/pkg/dirsig/logging"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "dirsig",
		Short: "Directory fingerprinting and change detection",
		Long: `Dirsig fingerprints directory trees with content digests and detects
what changed between runs.

Invoked with --list or --host, it acts as an Ansible dynamic inventory
for running Vagrant machines, caching vagrant output until the Vagrant
state directory's fingerprint changes.

Examples:
  dirsig verify ~/projects/app   # Check a tree against its last record
  dirsig hash ./data             # Print a tree's aggregate digest
  dirsig watch ./data            # Re-verify on filesystem changes
  dirsig --list                  # Ansible inventory: running machines
  dirsig --host web              # Ansible inventory: one machine's vars`,
		Args: cobra.NoArgs,
		RunE: runInventory,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/dirsig/config.yaml)")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (plain, json, pretty)")
	rootCmd.PersistentFlags().String("store", "", "fingerprint store file")
	rootCmd.PersistentFlags().String("store-format", "", "store write format (gob, json, csv)")
	rootCmd.PersistentFlags().Bool("cache", false, "memoize file digests across runs")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	// Ansible dynamic-inventory protocol flags.
	rootCmd.Flags().Bool("list", false, "print inventory groups as JSON")
	rootCmd.Flags().String("host", "", "print hostvars for one machine as JSON")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("store_path", rootCmd.PersistentFlags().Lookup("store"))
	_ = viper.BindPFlag("store_format", rootCmd.PersistentFlags().Lookup("store-format"))
	_ = viper.BindPFlag("cache.enabled", rootCmd.PersistentFlags().Lookup("cache"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "dirsig"))
		}

		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "dirsig"))
		}
	}

	viper.SetEnvPrefix("DIRSIG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// initLogging configures logging from the effective settings. Verbose
// and quiet override the configured level.
func initLogging() error {
	level := viper.GetString("logging.level")
	if getVerbose() {
		level = "debug"
	} else if getQuiet() {
		level = "error"
	}

	return logging.Init(logging.Config{
		Level:      level,
		Path:       viper.GetString("logging.path"),
		Components: viper.GetStringMapString("logging.components"),
	})
}

// Execute runs the root command.
func Execute() error {
	defer func() { _ = logging.Close() }()
	return rootCmd.Execute()
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Printf(format+"\n", args...)
	}
}

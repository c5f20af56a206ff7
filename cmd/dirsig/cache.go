package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/dirsig/pkg/dirsig/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the digest memo cache",
	Long: `Commands for managing the digest memo cache.

The cache stores file digests keyed by path, size, and modification
time so unchanged files are not re-read on repeat runs. Cache data is
stored in the XDG cache directory (typically ~/.cache/dirsig/digests).`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cached digests",
	Long:  `Removes all cached digests. The next run will re-read every file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cachePath := effectiveCachePath()

		if _, err := os.Stat(cachePath); os.IsNotExist(err) {
			fmt.Println("Cache is already empty.")
			return nil
		}

		if err := os.RemoveAll(cachePath); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}

		fmt.Println("Cache cleared.")
		return nil
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Long:  `Displays information about the cache including its location, size, and last modified time.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cachePath := effectiveCachePath()

		info, err := os.Stat(cachePath)
		if os.IsNotExist(err) {
			fmt.Println("Cache: empty (no cache directory)")
			fmt.Printf("Cache location: %s\n", cachePath)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to stat cache: %w", err)
		}

		var size int64
		var fileCount int
		err = filepath.Walk(cachePath, func(_ string, info os.FileInfo, err error) error {
			if err == nil && !info.IsDir() {
				size += info.Size()
				fileCount++
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to calculate cache size: %w", err)
		}

		fmt.Printf("Cache location: %s\n", cachePath)
		fmt.Printf("Cache size: %s\n", humanize.IBytes(uint64(size)))
		fmt.Printf("Cache files: %d\n", fileCount)
		fmt.Printf("Last modified: %s\n", info.ModTime().Format("2006-01-02 15:04:05"))

		return nil
	},
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show cache location",
	Long:  `Prints the path to the cache directory.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(effectiveCachePath())
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}

func effectiveCachePath() string {
	if configured := viper.GetString("cache.path"); configured != "" {
		return configured
	}
	return config.DefaultCachePath()
}

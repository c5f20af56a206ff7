package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/dirsig/pkg/dirsig/check"
	"github.com/jamesainslie/dirsig/pkg/dirsig/logging"
	"github.com/jamesainslie/dirsig/pkg/dirsig/manifest"
	"github.com/jamesainslie/dirsig/pkg/dirsig/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch <path>",
	Short: "Re-verify a path whenever it changes on disk",
	Long: `Watches a directory tree and re-runs verification after each burst of
filesystem changes, logging what changed. The fingerprint record is
refreshed after every run, so each report describes the changes since
the previous one. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watcher.DefaultDebounce, "quiet period before re-verifying")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}
	logger := logging.Get("watch")

	path, err := normalizePath(args[0])
	if err != nil {
		return err
	}

	builder, cleanup, err := newBuilder()
	if err != nil {
		return err
	}
	defer cleanup()

	detector := check.NewDetector(builder)

	// Seed the record so the first change reports a real diff instead
	// of a bare first-run failure.
	prev := manifest.Record{}
	if build, err := builder.Build(path); err == nil {
		prev = build.Record(path)
	} else {
		return err
	}
	printInfo("Watching %s", path)

	w, err := watcher.New()
	if err != nil {
		return err
	}
	defer w.Close()

	if debounce, err := cmd.Flags().GetDuration("debounce"); err == nil && debounce > 0 {
		w.SetDebounce(debounce)
	}

	if err := w.Watch(path); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		printInfo("\nInterrupted, stopping watch...")
		cancel()
	}()

	w.Run(ctx, func() {
		start := time.Now()
		result, err := detector.Check(path, prev)
		if err != nil {
			logger.Error("verification failed", "path", path, "error", err)
			return
		}

		for _, msg := range result.Messages {
			printInfo("%s", msg)
		}
		logger.Debug("re-verified", "path", path, "ok", result.OK, "elapsed", time.Since(start))

		if result.Build != nil {
			prev = result.Build.Record(path)
		}
	})

	return nil
}

package main

import (
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/dirsig/pkg/dirsig/hasher"
)

var probeCmd = &cobra.Command{
	Use:   "probe <path>",
	Short: "Estimate the work a fingerprint of a path would take",
	Long: `Walks a tree without hashing anything and reports how many entries a
fingerprint would cover and how many bytes it would read. Large files
count at their capped sample size, so the byte figure reflects actual
read volume rather than file sizes.`,
	Args: cobra.ExactArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}

	path, err := normalizePath(args[0])
	if err != nil {
		return err
	}

	probe, err := hasher.New().Probe(path)
	if err != nil {
		return err
	}

	printInfo("%s: %d entries, %s to read", path, probe.Entries, humanize.IBytes(uint64(probe.CappedSize)))
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/dirsig/pkg/dirsig/manifest"
)

var hashCmd = &cobra.Command{
	Use:   "hash <path>",
	Short: "Print the content digest of a file or directory tree",
	Long: `Computes and prints the aggregate content digest of a path.

A file's digest covers its content; very large files are sampled from
the head and tail. A directory's digest covers the digests of
everything beneath it, so any nested change alters it.`,
	Args: cobra.ExactArgs(1),
	RunE: runHash,
}

func init() {
	hashCmd.Flags().Bool("entries", false, "also print the digest of every nested entry")
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}

	path, err := normalizePath(args[0])
	if err != nil {
		return err
	}

	builder, cleanup, err := newBuilder()
	if err != nil {
		return err
	}
	defer cleanup()

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !info.IsDir() {
		digest, err := builder.Hasher.Digest(path)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %s\n", digest, path)
		return nil
	}

	build, err := builder.Build(path)
	if err != nil {
		return err
	}

	if entries, _ := cmd.Flags().GetBool("entries"); entries {
		for _, entry := range build.Entries {
			fmt.Printf("%s %s %s\n", entry.Digest, entry.Kind, manifest.JoinPath(path, entry.Path))
		}
	}
	fmt.Printf("%s  %s\n", build.Digest, path)
	return nil
}

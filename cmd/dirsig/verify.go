package main

import (
	"bytes"
	"crypto/md5" //nolint:gosec // Not used for security, only store naming
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/dirsig/pkg/dirsig/check"
	"github.com/jamesainslie/dirsig/pkg/dirsig/config"
	"github.com/jamesainslie/dirsig/pkg/dirsig/manifest"
	"github.com/jamesainslie/dirsig/pkg/dirsig/output"
	"github.com/jamesainslie/dirsig/pkg/dirsig/store"
)

// recordKey is the store key for a path's fingerprint record.
const recordKey = "record"

var verifyCmd = &cobra.Command{
	Use:   "verify <path>",
	Short: "Check a path against its recorded fingerprint",
	Long: `Fingerprints a file or directory tree and compares it against the
record persisted by the previous run, reporting added, modified, and
removed entries. The record is replaced with the fresh fingerprint
afterwards, so each run verifies against the run before it.

The first run of a path has no record and reports FAILED.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().Bool("no-update", false, "report changes without refreshing the record")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	if err := initLogging(); err != nil {
		return err
	}

	path, err := normalizePath(args[0])
	if err != nil {
		return err
	}

	formatter, err := output.Get(viper.GetString("output"))
	if err != nil {
		return fmt.Errorf("unknown output format %q: available formats are %v",
			viper.GetString("output"), output.Formats())
	}

	opts, err := storeOptions(store.ModeCreate)
	if err != nil {
		return err
	}

	st, err := store.Open(verifyStorePath(path), opts)
	if err != nil {
		return err
	}
	defer st.Close()

	builder, cleanup, err := newBuilder()
	if err != nil {
		return err
	}
	defer cleanup()

	var prev manifest.Record
	_ = st.Get(recordKey, &prev)

	start := time.Now()
	result, err := check.NewDetector(builder).Check(path, prev)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	noUpdate, _ := cmd.Flags().GetBool("no-update")
	if !noUpdate {
		if err := st.Set(recordKey, freshRecord(path, result, builder)); err != nil {
			return err
		}
	}

	out := &output.Result{
		Path:     path,
		OK:       result.OK,
		Messages: result.Messages,
	}
	if result.Build != nil {
		out.Digest = result.Build.Digest
		out.Stats = output.Stats{
			Files:     result.Build.TotalFileCount,
			Dirs:      countDirs(result.Build),
			TotalSize: result.Build.TotalSize,
			Elapsed:   elapsed,
		}
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, out); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(buf.String())

	if !result.OK {
		// Callers scripting verify rely on the exit status.
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("%s: verification failed", path)
	}
	return nil
}

// freshRecord builds the replacement record for path. Directories get
// the full manifest record; plain files a single fingerprint.
func freshRecord(path string, result *check.Result, builder *manifest.Builder) manifest.Record {
	if result.Build != nil {
		return result.Build.Record(path)
	}

	digest, err := builder.Hasher.Digest(path)
	if err != nil {
		return manifest.Record{}
	}
	return manifest.Record{path: {Digest: digest, Kind: manifest.KindFile}}
}

// countDirs totals the directory entries of a build. The root's direct
// DirCount misses nested directories, which only the entry list carries.
func countDirs(build *manifest.Result) int64 {
	var n int64
	for _, entry := range build.Entries {
		if entry.Kind == manifest.KindDir {
			n++
		}
	}
	return n
}

// normalizePath expands ~ and checks the path exists.
func normalizePath(path string) (string, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(expanded); err != nil {
		return "", err
	}
	return expanded, nil
}

// verifyStorePath places per-path records in the configured store file,
// or one derived from the path when unset.
func verifyStorePath(path string) string {
	if configured := viper.GetString("store_path"); configured != "" {
		return configured
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	name := fmt.Sprintf("dirsig-%x", md5.Sum([]byte(abs)))
	return filepath.Join(os.TempDir(), name)
}

// Package logging provides component loggers for dirsig.
//
// Basic usage:
//
//	if err := logging.Init(logging.Config{Level: "info"}); err != nil {
//	    log.Fatal(err)
//	}
//	logger := logging.Get("manifest")
//	logger.Info("build finished", "path", root)
//
// Before Init is called all loggers are silent, so library packages can
// log unconditionally.
package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

// ErrInvalidLevel is returned when an invalid log level string is provided.
var ErrInvalidLevel = errors.New("invalid log level")

// ParseLevel parses a level string into a charmbracelet/log level.
func ParseLevel(s string) (log.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return log.DebugLevel, nil
	case "info", "":
		return log.InfoLevel, nil
	case "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return log.InfoLevel, fmt.Errorf("%w: %s", ErrInvalidLevel, s)
	}
}

// Config configures the logging system.
type Config struct {
	// Level is the default log level (debug, info, warn, error).
	Level string

	// Path is the log file path. Empty logs to stderr.
	Path string

	// Components maps component names to level overrides.
	Components map[string]string
}

// state holds the global logging state.
type state struct {
	mu         sync.Mutex
	out        io.Writer
	file       *os.File
	level      log.Level
	components map[string]log.Level
	loggers    map[string]*log.Logger
}

var globalState = &state{
	out:        io.Discard,
	components: make(map[string]log.Level),
	loggers:    make(map[string]*log.Logger),
}

// Init initializes the logging system. Calling it again reconfigures
// all existing component loggers.
func Init(cfg Config) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}

	components := make(map[string]log.Level, len(cfg.Components))
	for comp, lvl := range cfg.Components {
		parsed, err := ParseLevel(lvl)
		if err != nil {
			return fmt.Errorf("component %s: %w", comp, err)
		}
		components[comp] = parsed
	}

	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.file != nil {
		_ = globalState.file.Close()
		globalState.file = nil
	}

	out := io.Writer(os.Stderr)
	if cfg.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return fmt.Errorf("creating log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		globalState.file = f
		out = f
	}

	globalState.out = out
	globalState.level = level
	globalState.components = components

	for name, logger := range globalState.loggers {
		logger.SetOutput(out)
		logger.SetLevel(levelFor(name))
	}
	return nil
}

// levelFor returns the effective level for a component.
// Caller must hold globalState.mu.
func levelFor(component string) log.Level {
	if lvl, ok := globalState.components[component]; ok {
		return lvl
	}
	return globalState.level
}

// Get returns the logger for a component, creating it on first use.
func Get(component string) *log.Logger {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if logger, ok := globalState.loggers[component]; ok {
		return logger
	}

	logger := log.NewWithOptions(globalState.out, log.Options{
		Prefix:          component,
		ReportTimestamp: true,
	})
	logger.SetLevel(levelFor(component))
	globalState.loggers[component] = logger
	return logger
}

// Close releases the log file, if any.
func Close() error {
	globalState.mu.Lock()
	defer globalState.mu.Unlock()

	if globalState.file == nil {
		return nil
	}
	err := globalState.file.Close()
	globalState.file = nil
	return err
}

// DefaultLogPath returns the XDG state path for the dirsig log file.
func DefaultLogPath() string {
	return filepath.Join(xdg.StateHome, "dirsig", "dirsig.log")
}

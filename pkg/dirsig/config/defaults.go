// Package config provides configuration management for dirsig.
package config

// Default configuration values for dirsig.
const (
	// DefaultStoreFormat is the serialization the fingerprint store is
	// written in. Loading sniffs the on-disk format regardless.
	DefaultStoreFormat = "json"

	// DefaultVagrantBinary is the vagrant executable looked up on PATH.
	DefaultVagrantBinary = "vagrant"

	// DefaultVagrantDir is the directory whose fingerprint decides
	// whether cached inventory data is still valid. The VAGRANT_CWD
	// environment variable overrides it.
	DefaultVagrantDir = ".vagrant"

	// DefaultOutput is the output format for verify and probe.
	DefaultOutput = "plain"

	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"
)

// Package config provides configuration loading for ADB-aware tooling:
// the managed root location, repository list, signature verification
// policy, fetch behavior, and logging - the settings cmd/adbinfo and
// its sibling applets share.
//
// The struct shape (nested sub-configs tagged for YAML, a DefaultConfig
// constructor, a separate validation pass) is kept from the teacher's
// internal/config; the fields themselves are ADB's own.
package config

import "time"

// Config holds the complete tool configuration.
type Config struct {
	Root       RootConfig       `yaml:"root"`
	Repository RepositoryConfig `yaml:"repository"`
	Signing    SigningConfig    `yaml:"signing"`
	Logging    LogConfig        `yaml:"logging"`
}

// RootConfig describes the managed apk root (internal/adblayout.Options).
type RootConfig struct {
	Path              string `yaml:"path"`
	CreateIfNotExists bool   `yaml:"createIfNotExists"`
}

// RepositoryConfig controls how repository indexes are fetched and cached.
type RepositoryConfig struct {
	URLs           []string      `yaml:"urls"`
	FetchTimeout   time.Duration `yaml:"fetchTimeout"`
	AllowInsecure  bool          `yaml:"allowInsecureTransport"`
}

// SigningConfig controls signature verification policy.
type SigningConfig struct {
	// Enabled requires every fetched archive to pass adbsign verification.
	Enabled bool `yaml:"enabled"`
	// KeysDir overrides internal/adblayout's default keys directory.
	KeysDir string `yaml:"keysDir"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Package config loads the CLI's runtime settings. Defaults come first,
// then an optional JSON file (-c/-config), then command-line flags, with
// later sources winning.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the ziplock CLI.
type Config struct {
	// ServerURL is the base URL of the share server.
	ServerURL string

	// DataDir holds the local share database.
	DataDir string

	// MaxTotalSize bounds one selection, in bytes.
	MaxTotalSize int64

	// MinDuration floors the perceived compression time so tiny
	// selections do not flash to 100% instantly.
	MinDuration time.Duration

	// ArchiveName is the filename the server sees on upload.
	ArchiveName string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DataDir = defaultDataDir()
	c.MaxTotalSize = 500 * 1024 * 1024
	c.MinDuration = 2 * time.Second
	c.ArchiveName = "ziplocked-files.zip"
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".ziplock"
	}
	return filepath.Join(base, "ziplock")
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and command-line flags (if present).
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/karimrkhoury/ziplock/internal/flagx"
	"github.com/karimrkhoury/ziplock/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies
// on timex.Duration so intervals can be written either as strings like
// "2s" or as integer nanoseconds.
type JsonConfig struct {
	ServerURL    string         `json:"server_url"`
	DataDir      string         `json:"data_dir"`
	MaxTotalSize int64          `json:"max_total_size"`
	MinDuration  timex.Duration `json:"min_duration"`
	ArchiveName  string         `json:"archive_name"`
}

// parseJson overlays cfg with values from the JSON file named by the
// -c/-config flags. Absent file path means nothing to do; unreadable or
// malformed JSON panics, config errors are not recoverable at startup.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != "" {
		cfg.ServerURL = jc.ServerURL
	}
	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.MaxTotalSize > 0 {
		cfg.MaxTotalSize = jc.MaxTotalSize
	}
	if jc.MinDuration.Duration > 0 {
		cfg.MinDuration = time.Duration(jc.MinDuration.Duration)
	}
	if jc.ArchiveName != "" {
		cfg.ArchiveName = jc.ArchiveName
	}
}

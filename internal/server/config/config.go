// Package config loads the share server's settings from the environment.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime settings for the share server and the sweeper.
type Config struct {
	ServerPort    int    `envconfig:"SERVER_PORT" default:"8080"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`

	// MaxUploadSize bounds one upload body in bytes. The default matches
	// the client-side selection limit of 500 MiB.
	MaxUploadSize int64 `envconfig:"MAX_UPLOAD_SIZE" default:"524288000"`

	// StorageBackend selects where archives live: "s3" or "disk".
	StorageBackend string `envconfig:"STORAGE_BACKEND" default:"s3"`

	S3Bucket       string `envconfig:"S3_BUCKET"`
	S3Region       string `envconfig:"S3_REGION" default:"us-east-1"`
	S3BaseEndpoint string `envconfig:"S3_BASE_ENDPOINT"`
	S3AccessKey    string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey    string `envconfig:"S3_SECRET_KEY"`

	DiskDir string `envconfig:"DISK_DIR" default:"./data"`

	// SignSecret signs download links for the disk backend.
	SignSecret string `envconfig:"SIGN_SECRET"`

	// LinkTTL is how long a signed download URL stays valid. Independent
	// of the 24h share lifetime; links are minted per visit.
	LinkTTL time.Duration `envconfig:"LINK_TTL" default:"15m"`
}

// Load populates cfg from environment variables.
func Load(cfg *Config) error {
	return envconfig.Process("", cfg)
}

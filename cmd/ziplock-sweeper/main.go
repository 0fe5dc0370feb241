// The sweeper is a one-shot job: delete every uploaded archive older than
// the share lifetime. Run it from cron or a scheduler; link expiry is
// nothing but object deletion.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/karimrkhoury/ziplock/internal/logging"
	"github.com/karimrkhoury/ziplock/internal/server/config"
	"github.com/karimrkhoury/ziplock/internal/server/storage"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using environment as-is")
	}

	var cfg config.Config
	if err := config.Load(&cfg); err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger := logging.NewJSONLogger(os.Stdout)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	store, err := buildStore(ctx, &cfg)
	if err != nil {
		log.Fatalf("initializing storage: %v", err)
	}

	sweeper := storage.NewSweeper(store, storage.SweepMaxAge, logger)
	n, err := sweeper.Run(ctx)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}
	logger.Info(ctx, "sweep complete", "deleted", n)
}

func buildStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	switch cfg.StorageBackend {
	case "s3":
		return storage.NewS3Store(ctx, storage.S3Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
	case "disk":
		signer, err := storage.NewLinkSigner(cfg.SignSecret)
		if err != nil {
			return nil, err
		}
		return storage.NewDiskStore(cfg.DiskDir, cfg.PublicBaseURL, signer)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

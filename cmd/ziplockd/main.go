package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/karimrkhoury/ziplock/internal/logging"
	"github.com/karimrkhoury/ziplock/internal/server/api"
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
	ctx := context.Background()

	store, signer, err := buildStore(ctx, &cfg)
	if err != nil {
		log.Fatalf("initializing storage: %v", err)
	}

	handler := api.NewHandler(store, signer, api.Config{
		MaxUploadSize: cfg.MaxUploadSize,
		LinkTTL:       cfg.LinkTTL,
		PublicBaseURL: cfg.PublicBaseURL,
	}, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      handler.Routes(),
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info(ctx, "server listening", "port", cfg.ServerPort, "backend", cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("starting server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
}

func buildStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, *storage.LinkSigner, error) {
	switch cfg.StorageBackend {
	case "s3":
		store, err := storage.NewS3Store(ctx, storage.S3Options{
			Bucket:       cfg.S3Bucket,
			Region:       cfg.S3Region,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
		return store, nil, err
	case "disk":
		signer, err := storage.NewLinkSigner(cfg.SignSecret)
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewDiskStore(cfg.DiskDir, cfg.PublicBaseURL, signer)
		return store, signer, err
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

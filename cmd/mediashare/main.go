package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"mediashare/internal/app"
	"mediashare/internal/cache"
	"mediashare/internal/config"
	"mediashare/internal/server"
	"mediashare/internal/util"
	"mediashare/pkg/storage"
	"mediashare/pkg/store"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	dataStore, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init postgres store: %v", err)
	}

	objects, err := storage.NewMinioStore(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioBucket,
		cfg.MinioUseSSL,
		cfg.PublicBaseURL,
	)
	if err != nil {
		log.Fatalf("failed to init object store: %v", err)
	}

	var listings cache.ListingCache
	switch cfg.CacheBackend {
	case "redis":
		listings = cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
	default:
		listings = cache.NewMemoryCache()
	}

	appCore, err := app.New(app.Config{
		Store:    dataStore,
		Objects:  objects,
		Listings: listings,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer, err := server.New(server.Config{
		App:            appCore,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("media server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}

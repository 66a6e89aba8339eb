package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"franchisor/internal/cli"
	apphttp "franchisor/internal/http"
	applog "franchisor/internal/log"
	"franchisor/internal/normalizer"
	ports "franchisor/internal/sheets"
	gsheet "franchisor/internal/sheets/google"
	mem "franchisor/internal/sheets/memory"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)
	reg := cli.LoadRegistry(logger, cfg)

	var src ports.TabReader
	switch cfg.DataBackend {
	case "sheets":
		client, err := gsheet.NewFromCredentials(context.Background(),
			cfg.GoogleServiceAccountJSON, cfg.GoogleServiceAccountFile)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client",
				applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
			os.Exit(1)
		}
		src = client
		logger.Info("Initialized Google Sheets backend", applog.FieldBackend, cfg.DataBackend)
	default:
		store := mem.New()
		seedDemoData(store, reg)
		src = store
		logger.Info("Initialized memory backend with demo data", applog.FieldBackend, cfg.DataBackend)
	}

	norm := normalizer.New(src, reg).WithTimeout(cfg.FetchTimeout)
	srv := apphttp.NewServer(":"+cfg.Port, norm, reg, apphttp.Options{
		CacheTTL:       cfg.CacheTTL,
		CacheSize:      cfg.CacheSize,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	logger.Info("Starting franchisor server", "port", cfg.Port, applog.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

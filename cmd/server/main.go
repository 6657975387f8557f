package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"

	"github.com/shopclip/backend/config"
	httpDelivery "github.com/shopclip/backend/internal/delivery/http"
	"github.com/shopclip/backend/internal/domain"
	"github.com/shopclip/backend/internal/infrastructure/browser"
	"github.com/shopclip/backend/internal/infrastructure/cache"
	"github.com/shopclip/backend/internal/infrastructure/fetcher"
	"github.com/shopclip/backend/internal/infrastructure/storage/sqlite"
	"github.com/shopclip/backend/internal/infrastructure/token"
	"github.com/shopclip/backend/internal/usecase"
)

const version = "1.0.0"

// closableCache is a cache backend that holds resources until shutdown
type closableCache interface {
	domain.CacheRepository
	Close() error
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", "err", err)
	}

	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	}

	log.Info("starting shopclip backend", "version", version, "env", cfg.Server.Environment, "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize infrastructure dependencies
	db, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatal("failed to open database", "path", cfg.Storage.SQLitePath, "err", err)
	}
	defer db.Close()
	log.Info("database ready", "path", cfg.Storage.SQLitePath)

	scrapeCache, err := newCache(ctx, cfg.Cache)
	if err != nil {
		log.Fatal("failed to initialize cache", "type", cfg.Cache.Type, "err", err)
	}
	defer scrapeCache.Close()
	log.Info("cache ready", "type", cfg.Cache.Type, "ttl", cfg.Cache.TTL)

	fetchCfg := fetcher.DefaultConfig()
	fetchCfg.Timeout = cfg.Scraper.Timeout
	fetchCfg.MaxRetries = cfg.Scraper.MaxRetries
	fetchCfg.RequestsPerSecond = cfg.Scraper.RequestsPerSecond
	fetchCfg.Burst = cfg.Scraper.Burst
	fetchCfg.UserAgent = cfg.Scraper.UserAgent
	pages := fetcher.NewClient(fetchCfg)

	// The headless pass is optional; a nil interface disables it
	var headless domain.PageFetcher
	if cfg.Scraper.Headless.Enabled {
		b, err := browser.New(browser.Config{
			ExecPath:    cfg.Scraper.Headless.ExecPath,
			UserAgent:   cfg.Scraper.UserAgent,
			Timeout:     cfg.Scraper.Headless.Timeout,
			SettleDelay: cfg.Scraper.Headless.Settle,
		})
		if err != nil {
			log.Warn("headless browser disabled", "err", err)
		} else {
			defer b.Close()
			headless = b
		}
	}

	// Initialize usecase layer
	scrapeService := usecase.NewScrapeService(scrapeCache, pages, headless, usecase.ScrapeServiceConfig{
		CacheTTL: cfg.Cache.TTL,
	})
	authService := usecase.NewAuthService(db.Users(), token.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), usecase.AuthServiceConfig{
		MaxUsers:   cfg.Auth.MaxUsers,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	projectService := usecase.NewProjectService(db.Projects(), scrapeService, usecase.ProjectServiceConfig{
		EarlyAccountCutoff: cfg.Projects.EarlyAccountCutoff,
		EarlyQuota:         cfg.Projects.EarlyQuota,
		StandardQuota:      cfg.Projects.StandardQuota,
	})

	if users, err := db.Users().Count(ctx); err == nil {
		log.Info("accounts", "used", users, "max", cfg.Auth.MaxUsers)
	}

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(scrapeService, authService, projectService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", "err", err)
		}
	case <-ctx.Done():
		log.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}
}

// newCache builds the scrape cache selected by cache.type
func newCache(ctx context.Context, cfg config.CacheConfig) (closableCache, error) {
	switch cfg.Type {
	case "redis":
		rc, err := cache.NewRedisCache(ctx, cfg.RedisURL, "shopclip:")
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		return cache.NewMemoryCache(), nil
	}
}

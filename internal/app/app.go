// Package app wires configuration into the services shared by the server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/smartshop/backend/config"
	"github.com/smartshop/backend/internal/domain"
	"github.com/smartshop/backend/internal/infrastructure/browser"
	"github.com/smartshop/backend/internal/infrastructure/cache"
	"github.com/smartshop/backend/internal/infrastructure/gemini"
	"github.com/smartshop/backend/internal/infrastructure/web"
	"github.com/smartshop/backend/internal/usecase"
)

const (
	validityCachePrefix = "smartshop:valid:"
	imageCachePrefix    = "smartshop:image:"
)

// App is the assembled object graph
type App struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Finder    *usecase.FinderService
	AIEnabled bool

	redis *redis.Client
}

// NewLogger builds the process logger: text in development, JSON otherwise
func NewLogger(cfg config.ServerConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	if cfg.Environment == "development" || cfg.Environment == "" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// New creates every service from cfg. A missing model key disables AI with a warning.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	validity, images, err := a.newCaches(ctx)
	if err != nil {
		return nil, err
	}

	renderer := browser.NewRenderer(browser.Config{
		BinPath:   cfg.Browser.BinPath,
		Headless:  cfg.Browser.Headless,
		UserAgent: cfg.Browser.UserAgent,
	}, logger)

	checker := web.NewChecker(web.CheckerConfig{
		Timeout:      cfg.Validation.Timeout,
		MaxRedirects: cfg.Validation.MaxRedirects,
		UserAgent:    cfg.Browser.UserAgent,
	})

	// Only a non-nil client may be stored in the interface.
	var generator domain.Generator
	client, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:            cfg.Gemini.APIKey,
		Model:             cfg.Gemini.Model,
		Temperature:       cfg.Gemini.Temperature,
		TopP:              cfg.Gemini.TopP,
		TopK:              cfg.Gemini.TopK,
		MaxOutputTokens:   cfg.Gemini.MaxOutputTokens,
		RequestsPerMinute: cfg.Gemini.RequestsPerMinute,
	}, logger)
	switch {
	case errors.Is(err, gemini.ErrMissingAPIKey):
		logger.Warn("Gemini API key not configured, AI extraction and alternative search are disabled")
	case err != nil:
		a.Close()
		return nil, err
	default:
		generator = client
		a.AIEnabled = true
		logger.WithField("model", cfg.Gemini.Model).Info("Gemini client configured")
	}

	enrichment := usecase.NewEnrichmentService(checker, renderer, validity, images, usecase.EnrichmentServiceConfig{
		CacheTTL:     cfg.Cache.TTL,
		ImageTimeout: cfg.Browser.ImageTimeout,
	}, logger)
	extraction := usecase.NewExtractionService(renderer, generator, usecase.ExtractionServiceConfig{
		RenderTimeout: cfg.Browser.ExtractTimeout,
	}, logger)
	discovery := usecase.NewDiscoveryService(generator, usecase.NewRelevanceFilter(usecase.DefaultRelevancePolicy()), enrichment, logger)

	a.Finder = usecase.NewFinderService(extraction, discovery)
	return a, nil
}

// newCaches returns the URL validity cache and the recovered image cache
func (a *App) newCaches(ctx context.Context) (domain.CacheRepository, domain.CacheRepository, error) {
	if a.Config.Cache.Type != "redis" {
		a.Logger.WithField("ttl", a.Config.Cache.TTL).Info("Using in-memory cache")
		return cache.NewMemoryCache(), cache.NewMemoryCache(), nil
	}

	client, err := cache.NewRedisClient(a.Config.Cache.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrCacheUnavailable, err)
	}

	a.redis = client
	a.Logger.WithField("ttl", a.Config.Cache.TTL).Info("Using Redis cache")
	return cache.NewRedisCache(client, validityCachePrefix), cache.NewRedisCache(client, imageCachePrefix), nil
}

// Close releases shared connections
func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

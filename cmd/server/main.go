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

	"github.com/sirupsen/logrus"
	"github.com/smartshop/backend/config"
	"github.com/smartshop/backend/internal/app"
	httpDelivery "github.com/smartshop/backend/internal/delivery/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := app.NewLogger(cfg.Server)
	logger.WithFields(logrus.Fields{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"cache":       cfg.Cache.Type,
	}).Info("Starting SmartShop Backend v1.0.0")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize services")
	}
	defer application.Close()

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(application.Finder, httpDelivery.HandlerConfig{
		MaxUploadBytes:   cfg.Upload.MaxBytes,
		AllowedMIMETypes: cfg.Upload.AllowedTypes,
		AIEnabled:        application.AIEnabled,
		CacheType:        cfg.Cache.Type,
	})

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	// Lookups can take a browser render plus a model call, so allow in-flight requests to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
}

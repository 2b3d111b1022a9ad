package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pathway-finder/webclient/pkg/activity"
	"github.com/pathway-finder/webclient/pkg/careerapi"
	"github.com/pathway-finder/webclient/pkg/catalog"
	"github.com/pathway-finder/webclient/pkg/common/config"
	"github.com/pathway-finder/webclient/pkg/common/database"
	"github.com/pathway-finder/webclient/pkg/common/httpclient"
	"github.com/pathway-finder/webclient/pkg/common/kafka"
	"github.com/pathway-finder/webclient/pkg/common/logger"
	"github.com/pathway-finder/webclient/pkg/gateway"
	"github.com/pathway-finder/webclient/pkg/gateway/routes"
	"github.com/pathway-finder/webclient/pkg/handoff"
	"github.com/pathway-finder/webclient/pkg/retraining"
	"github.com/pathway-finder/webclient/pkg/workspace"
)

const serviceName = "pathway-web"

func main() {
	logger.Init()
	cfg := config.Load()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Log.WithError(err).WithField("path", cfg.CatalogPath).Warn("Option catalog unavailable, using defaults")
		cat = catalog.DefaultCatalog()
	}

	api, err := careerapi.New(cfg.CareerAPIBaseURL, httpclient.New(cfg.CareerAPITimeout))
	if err != nil {
		logger.Log.WithError(err).Fatal("Invalid career API configuration")
	}
	if !api.Configured() {
		logger.Log.Warn("CAREER_API_BASE_URL not set, career requests will fail")
	}

	backend := newHandOffBackend(cfg)
	defer backend.Close()

	var publisher activity.Publisher = activity.Nop{}
	if cfg.ActivityEnabled() {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.ActivityTopic, serviceName)
		defer producer.Close()
		publisher = producer
	}
	events := activity.NewEmitter(publisher, 5*time.Second)

	registry := workspace.NewRegistry(workspace.Deps{
		API:     api,
		Backend: backend,
		Catalog: cat,
		Events:  events,
		Retraining: retraining.Options{
			Interval: cfg.ProgressInterval,
			Step:     cfg.ProgressStep,
		},
	}, cfg.MaxSessions, cfg.SessionTTL)
	stopCleanup := registry.StartCleanup(workspace.DefaultCleanupInterval)

	router := gateway.NewRouter(gateway.Options{
		Registry:       registry,
		Pages:          routes.NewPages(cat, api.Configured()),
		MaxBodyBytes:   cfg.MaxRequestBody,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
	})

	// Server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host":       cfg.ServerHost,
			"port":       cfg.ServerPort,
			"career_api": api.BaseURL(),
			"sessions":   cfg.SessionStore,
		}).Info("Pathway Finder web started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Pathway Finder web...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}
	stopCleanup()
	registry.Close()
	events.Wait()

	logger.Log.Info("Pathway Finder web stopped")
}

func newHandOffBackend(cfg *config.Config) handoff.Backend {
	if cfg.SessionStore != config.SessionStoreRedis {
		return handoff.NewMemoryBackend()
	}
	client, err := database.NewRedis(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to Redis session store")
	}
	return handoff.NewRedisBackend(client, cfg.SessionTTL)
}

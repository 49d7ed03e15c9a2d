package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/docmanage/opd-api/internal/config"
	"github.com/docmanage/opd-api/internal/handler"
	authHandler "github.com/docmanage/opd-api/internal/handler/auth"
	patientHandler "github.com/docmanage/opd-api/internal/handler/patient"
	"github.com/docmanage/opd-api/internal/middleware"
	redisrepo "github.com/docmanage/opd-api/internal/repository/redis"
	"github.com/docmanage/opd-api/internal/router"
	authService "github.com/docmanage/opd-api/internal/service/auth"
	"github.com/docmanage/opd-api/internal/service/registry"
	"github.com/docmanage/opd-api/internal/sheet"
	"github.com/docmanage/opd-api/pkg/auth"
	"github.com/docmanage/opd-api/pkg/logger"
	"github.com/docmanage/opd-api/pkg/security"
	"github.com/docmanage/opd-api/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.NewLogger(nil)

	// Durable snapshot layer
	store, err := redisrepo.NewSnapshotStore(redisrepo.Config{
		URL:          cfg.Redis.URL,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer store.Close()

	// Services
	fetcher := sheet.NewFetcher(sheet.FetcherConfig{
		URL:      cfg.Sheet.URL,
		Timeout:  cfg.Sheet.Timeout,
		CacheTTL: cfg.Sheet.CacheTTL,
	})
	registrySvc := registry.NewService(fetcher, store, l)

	hasher := security.NewBcryptHasher(12)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.TokenExpiry)
	authSvc := authService.NewService(store, hasher, jwtSvc, l)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	if err := authSvc.SeedDefaults(startupCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to seed credentials")
	}
	if err := registrySvc.Hydrate(startupCtx); err != nil {
		log.Fatal().Err(err).Msg("failed to hydrate patient set")
	}

	// First fetch runs in the background; the hydrated snapshot serves
	// until it lands.
	go func() {
		if _, err := registrySvc.Refresh(context.Background()); err != nil {
			l.Error(err, "initial sheet refresh failed")
		}
	}()

	if err := validator.Register(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validations")
	}

	// HTTP surface
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		patientHandler.NewHandler(registrySvc),
		handler.NewHandler(),
		router.Config{
			RateLimitRPS:   cfg.Server.RateLimitRPS,
			RateLimitBurst: cfg.Server.RateLimitBurst,
			CORSConfig:     middleware.DefaultCORSConfig(),
			MetricsPrefix:  "docmanage_http",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	l.Info("server started", "port", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/samadammeek/core-geonetwork/internal/auth"
	"github.com/samadammeek/core-geonetwork/internal/catalog"
	"github.com/samadammeek/core-geonetwork/internal/config"
	"github.com/samadammeek/core-geonetwork/internal/domain"
	"github.com/samadammeek/core-geonetwork/internal/feedback"
	httpserver "github.com/samadammeek/core-geonetwork/internal/http"
	"github.com/samadammeek/core-geonetwork/internal/metrics"
	"github.com/samadammeek/core-geonetwork/internal/repository"
	"github.com/samadammeek/core-geonetwork/internal/settings"
	"github.com/samadammeek/core-geonetwork/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "userfeedback").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config error")
	}
	if cfg.AppEnv == "dev" {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	defer st.Close()

	repo := repository.New(st)

	var cache settings.Cache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()
		if err := rdb.Ping(dbCtx).Err(); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, settings cache degraded")
		}
		cache = settings.NewRedisCache(rdb)
	}

	settingsManager := settings.NewManager(repo.Settings, cache,
		time.Duration(cfg.SettingsCacheTTL)*time.Second,
		map[string]string{domain.SettingLocalRatingEnable: cfg.RatingsDefault},
		logger)

	catalogClient, err := catalog.NewHTTPClient(cfg.CatalogURL, cfg.CatalogAPIKey, time.Duration(cfg.CatalogTimeoutSecs)*time.Second, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("init catalog client")
	}

	server := httpserver.New(cfg, httpserver.Deps{
		Health:   st,
		Feedback: feedback.NewService(repo.Feedback, logger),
		Settings: settingsManager,
		Catalog:  catalogClient,
		Tokens:   auth.NewTokens(cfg.JWTSecret),
	}, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("server error")
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
}

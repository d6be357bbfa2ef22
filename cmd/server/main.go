package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/breachwatch/monitor/configs"
	"github.com/breachwatch/monitor/internal/application/services"
	"github.com/breachwatch/monitor/internal/core/ports"
	"github.com/breachwatch/monitor/internal/infrastructure/db"
	"github.com/breachwatch/monitor/internal/infrastructure/health"
	"github.com/breachwatch/monitor/internal/infrastructure/hibp"
	"github.com/breachwatch/monitor/internal/infrastructure/httpserver"
	"github.com/breachwatch/monitor/internal/infrastructure/jobs"
	"github.com/breachwatch/monitor/internal/infrastructure/redis"
	"github.com/breachwatch/monitor/internal/infrastructure/repositories"
)

func newLogger(cfg config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}
	return logger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := newLogger(cfg.Log)
	logger.Info("Starting breach monitor...")

	database, err := db.NewDatabaseWithConfig(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database:", err)
	}
	defer database.Close()

	logger.Info("Connected to database successfully")

	if err := database.Migrate(cfg.Database.MigrationsPath); err != nil {
		logger.Fatal("Failed to run migrations:", err)
	}

	healthCheckers := []ports.HealthChecker{health.NewDBHealthChecker(database)}

	var subscriberRepo ports.SubscriberRepository = repositories.NewInstrumentedSubscriberRepository(
		repositories.NewSubscriberRepository(database, logger),
	)

	if cfg.Cache.Enabled {
		redisClient, err := redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis:", err)
		}
		defer redisClient.Close()

		logger.Info("Connected to Redis successfully")

		redisCache := redis.NewRedisCache(redisClient, cfg.Cache.Prefix)
		subscriberRepo = repositories.NewCachingSubscriberRepository(subscriberRepo, redisCache, cfg.Cache.SubscriberTTL)
		healthCheckers = append(healthCheckers, health.NewRedisHealthChecker(redisClient))
	}

	notifier, err := hibp.NewClient(&hibp.ClientConfig{
		KAnonAPIRoot:  cfg.HIBP.KAnonAPIRoot,
		KAnonAPIToken: cfg.HIBP.KAnonAPIToken,
		UserAgent:     cfg.HIBP.UserAgent,
		Timeout:       cfg.HIBP.Timeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize breach notifier:", err)
	}

	subscriberService := services.NewSubscriberService(subscriberRepo, notifier, logger)

	var purge *jobs.PurgeScheduler
	if cfg.Purge.Enabled {
		purge = jobs.NewPurgeScheduler(cfg.Purge, subscriberService, logger)
		if err := purge.Start(); err != nil {
			logger.Fatal("Failed to start purge scheduler:", err)
		}
	}

	server := httpserver.NewServer(&httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		TLSCertFile:  cfg.Server.TLSCertFile,
		TLSKeyFile:   cfg.Server.TLSKeyFile,
	}, logger, httpserver.ServerDeps{HealthCheckers: healthCheckers})

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if purge != nil {
		if err := purge.Stop(ctx); err != nil {
			logger.WithError(err).Warn("Purge scheduler did not stop cleanly")
		}
	}
	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

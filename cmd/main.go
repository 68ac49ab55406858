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

	"github.com/dealdeck/dataroom-api/dependency"
	"github.com/dealdeck/dataroom-api/infrastructure/cache"
	"github.com/dealdeck/dataroom-api/infrastructure/config"
	"github.com/dealdeck/dataroom-api/infrastructure/logger"
	"github.com/dealdeck/dataroom-api/infrastructure/persistence/database"
	"github.com/dealdeck/dataroom-api/infrastructure/persistence/migration"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
)

func main() {
	cfg := config.GetConfig()

	var loggerInstance *logger.Logger
	var err error
	if cfg.IsProduction() {
		loggerInstance, err = logger.NewProductionLogger(cfg.Logger.Level)
	} else {
		loggerInstance, err = logger.NewDevelopmentLogger()
	}
	if err != nil {
		log.Fatal(fmt.Errorf("error initializing logger: %w", err))
	}
	defer func() {
		if err := loggerInstance.Log.Sync(); err != nil {
			loggerInstance.Log.Error("failed to sync logger", zap.Error(err))
		}
	}()

	loggerInstance.Info("Starting data room API")

	if cfg.Sentry.Dsn != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:            cfg.Sentry.Dsn,
			Debug:          cfg.Sentry.Debug,
			SendDefaultPII: cfg.Sentry.SendDefaultPII,
		}); err != nil {
			loggerInstance.Error("failed to initialize sentry", zap.Error(err))
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	if err := database.Init(cfg, loggerInstance.Log); err != nil {
		loggerInstance.Panic("error initializing database", zap.Error(err))
	}
	defer func() {
		if err := database.Close(); err != nil {
			loggerInstance.Error("failed to close database", zap.Error(err))
		}
	}()

	if err := migration.Up1(database.GetDb()); err != nil {
		loggerInstance.Panic("error running migrations", zap.Error(err))
	}

	if cfg.Redis.Enabled {
		if err := cache.InitRedis(cfg); err != nil {
			loggerInstance.Panic("error initializing redis", zap.Error(err))
		}
		defer cache.CloseRedis()
	}

	container, err := dependency.NewContainer(cfg, loggerInstance)
	if err != nil {
		loggerInstance.Panic("error initializing dependencies", zap.Error(err))
	}

	router := container.SetupRouter()

	srv := &http.Server{
		Addr:           fmt.Sprintf(":%s", cfg.Server.ExternalPort),
		Handler:        router,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	go func() {
		loggerInstance.Info("Server starting",
			zap.String("port", cfg.Server.ExternalPort),
			zap.String("mode", cfg.Server.RunMode),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggerInstance.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	loggerInstance.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		loggerInstance.Fatal("Server forced to shutdown", zap.Error(err))
	}

	loggerInstance.Info("Server exited successfully")
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace/internal/cache"
	"marketplace/internal/config"
	"marketplace/internal/database"
	"marketplace/internal/server"
	"marketplace/pkg/logger"
	"marketplace/pkg/rabbitmq"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	// --- Configuration ---
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env file: %v", err)
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	// --- Database ---
	db, err := database.Open(database.Config{
		Driver: cfg.DBDriver,
		DSN:    cfg.DatabaseDSN,
		Debug:  !cfg.IsProduction() && os.Getenv("DB_DEBUG") == "true",
	})
	if err != nil {
		appLogger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close(db)
	appLogger.Info("database connected", zap.String("driver", cfg.DBDriver))

	if cfg.SeedData {
		if err := seedDatabase(context.Background(), db, appLogger); err != nil {
			appLogger.Fatal("failed to seed database", zap.Error(err))
		}
	}

	deps := server.Deps{
		Config:    cfg,
		DB:        db,
		Logger:    appLogger,
		AccessLog: true,
	}

	// --- RabbitMQ (optional) ---
	if cfg.RabbitMQURL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.RabbitMQQueue}, appLogger)
		if err != nil {
			appLogger.Warn("RabbitMQ unavailable, domain events disabled", zap.Error(err))
		} else {
			defer mqClient.Close()
			deps.Publisher = mqClient
			if err := mqClient.ConsumeEvents(rabbitmq.LogEvent(appLogger)); err != nil {
				appLogger.Warn("failed to start event consumer", zap.Error(err))
			}
		}
	}

	// --- Redis (optional) ---
	if cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cancel()
		if err != nil {
			appLogger.Warn("Redis unavailable, listing cache disabled", zap.Error(err))
		} else {
			queryCache := cache.New(client, cache.DefaultPrefix, cfg.CacheTTL)
			defer queryCache.Close()
			deps.Cache = queryCache
		}
	}

	app, err := server.New(deps)
	if err != nil {
		appLogger.Fatal("failed to build app", zap.Error(err))
	}

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		appLogger.Info("starting server", zap.String("port", cfg.AppPort), zap.String("env", cfg.AppEnv))
		if err := app.Listen(cfg.AppPort); err != nil {
			appLogger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	<-quit
	appLogger.Info("shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("error during Fiber shutdown", zap.Error(err))
	}
	appLogger.Info("server gracefully stopped")
}

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	redisv9 "github.com/redis/go-redis/v9"

	"calories_tracker/internal/app/di"
	"calories_tracker/internal/app/router"
	"calories_tracker/internal/config"
	authentity "calories_tracker/internal/feature/auth/domain/entity"
	mealentity "calories_tracker/internal/feature/meals/domain/entity"
	"calories_tracker/internal/platform/db"
	"calories_tracker/internal/platform/logger"
	infraredis "calories_tracker/internal/platform/redis"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)
	slog.SetDefault(logger.Logger)

	// db
	gdb, err := db.Open(cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect database", "error", err, "driver", cfg.Database.Driver)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		defer sqlDB.Close()
	}
	if cfg.RunMigrations || cfg.Database.Driver == db.DriverSQLite {
		if err := db.Migrate(gdb, cfg.Database.Driver, &authentity.User{}, &mealentity.Meal{}); err != nil {
			logger.Fatal("failed to migrate", "error", err)
		}
	}

	// Redis
	var rdb *redisv9.Client
	if cfg.Redis.Enabled() {
		if tmp, err := infraredis.NewRedisClient(ctx, cfg.Redis); err != nil {
			logger.Warn("Redis unavailable. Running without cache.", "error", err)
		} else {
			rdb = tmp
			defer func() {
				if err := rdb.Close(); err != nil {
					logger.Error("failed to close Redis client", "error", err)
				}
			}()
		}
	}

	app, err := di.NewApp(cfg, gdb, rdb)
	if err != nil {
		logger.Fatal("failed to build application", "error", err)
	}

	if cfg.Seed.Enabled {
		if err := app.Seeder.EnsureAccounts(ctx, di.SeedAccounts(cfg.Seed)); err != nil {
			logger.Fatal("failed to seed accounts", "error", err)
		}
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.HTTP.Port),
		Handler:           router.NewRouter(app, cfg.HTTP.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting server on", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err)
	}
	logger.Info("shutdown complete")
}

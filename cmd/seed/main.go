// Command seed applies the schema migrations and creates the configured bootstrap accounts.
package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"calories_tracker/internal/app/di"
	"calories_tracker/internal/config"
	authentity "calories_tracker/internal/feature/auth/domain/entity"
	mealentity "calories_tracker/internal/feature/meals/domain/entity"
	"calories_tracker/internal/platform/db"
	"calories_tracker/internal/platform/logger"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)
	slog.SetDefault(logger.Logger)

	gdb, err := db.Open(cfg.Database)
	if err != nil {
		logger.Fatal("failed to connect database", "error", err)
	}
	if err := db.Migrate(gdb, cfg.Database.Driver, &authentity.User{}, &mealentity.Meal{}); err != nil {
		logger.Fatal("failed to migrate", "error", err)
	}

	seeder, err := di.NewSeeder(cfg, gdb)
	if err != nil {
		logger.Fatal("failed to build seeder", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := seeder.EnsureAccounts(ctx, di.SeedAccounts(cfg.Seed)); err != nil {
		logger.Fatal("failed to seed accounts", "error", err)
	}
	logger.Info("seed ok")
}

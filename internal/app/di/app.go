package di

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"calories_tracker/internal/config"
	authadapters "calories_tracker/internal/feature/auth/adapters"
	authhandler "calories_tracker/internal/feature/auth/transport/handler"
	authusecase "calories_tracker/internal/feature/auth/usecase"
	mealshandler "calories_tracker/internal/feature/meals/transport/handler"
	mealsusecase "calories_tracker/internal/feature/meals/usecase"
	usershandler "calories_tracker/internal/feature/users/transport/handler"
	usersusecase "calories_tracker/internal/feature/users/usecase"
	healthhandler "calories_tracker/internal/platform/http/handler"
	jwtmw "calories_tracker/internal/platform/jwt"
	"calories_tracker/internal/platform/security"
)

// Seeder creates the bootstrap accounts.
type Seeder interface {
	EnsureAccounts(ctx context.Context, accounts []usersusecase.SeedAccount) error
}

// App holds the wired handlers and the services the binaries need directly.
type App struct {
	Auth   *authhandler.AuthHandler
	Meals  *mealshandler.MealHandler
	Users  *usershandler.UserHandler
	Health *healthhandler.HealthHandler
	JWT    jwtmw.Config
	Seeder Seeder
}

// NewApp wires repositories, usecases and handlers. rdb may be nil.
func NewApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	tokens, err := jwtmw.NewGenerator(cfg.JWT)
	if err != nil {
		return nil, fmt.Errorf("failed to create token generator: %w", err)
	}
	hasher, err := security.NewHasher(cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}

	// Repository
	userRepo := authadapters.NewUserGorm(db)
	mealRepo := NewMealRepository(db, rdb, cfg.Redis.CacheTTL)
	nutrition := NewNutritionLookup(cfg.Nutritionix, rdb, cfg.Redis.NutritionTTL)

	// Usecase
	mealsUC := mealsusecase.NewMealUsecase(mealRepo, userRepo, nutrition)
	authUC := authusecase.NewAuthUsecase(userRepo, tokens, hasher, mealsUC)
	usersUC := usersusecase.NewUserUsecase(userRepo, authUC)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// Handler
	return &App{
		Auth:   authhandler.NewAuthHandler(authUC),
		Meals:  mealshandler.NewMealHandler(mealsUC),
		Users:  usershandler.NewUserHandler(usersUC),
		Health: healthhandler.NewHealthHandler(sqlDB),
		JWT:    cfg.JWT,
		Seeder: usersUC,
	}, nil
}

// NewSeeder wires only what account seeding needs, so no JWT secret is required.
func NewSeeder(cfg *config.Config, db *gorm.DB) (Seeder, error) {
	hasher, err := security.NewHasher(cfg.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}
	userRepo := authadapters.NewUserGorm(db)
	authUC := authusecase.NewAuthUsecase(userRepo, nil, hasher, nil)
	return usersusecase.NewUserUsecase(userRepo, authUC), nil
}

// SeedAccounts converts the configured bootstrap accounts.
func SeedAccounts(s config.Seed) []usersusecase.SeedAccount {
	var out []usersusecase.SeedAccount
	for _, a := range s.Accounts() {
		out = append(out, usersusecase.SeedAccount{
			FirstName: a.FirstName,
			LastName:  a.LastName,
			Username:  a.Username,
			Email:     a.Email,
			Password:  a.Password,
			Role:      a.Role,
		})
	}
	return out
}

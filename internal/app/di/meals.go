package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	mealsadapters "calories_tracker/internal/feature/meals/adapters"
	mealsusecase "calories_tracker/internal/feature/meals/usecase"
	"calories_tracker/internal/platform/cache"
)

// NewMealRepository creates a MealRepository implementation.
// If Redis is available, the calorie totals are cached in Redis.
func NewMealRepository(db *gorm.DB, rdb *redis.Client, ttl time.Duration) mealsusecase.MealRepository {
	repo := mealsadapters.NewMealGorm(db)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingMealRepository(rdb, ttl, repo, "meals")
}

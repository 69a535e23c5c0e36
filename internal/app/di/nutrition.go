// Package di provides dependency injection factories for creating application components.
package di

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	mealsusecase "calories_tracker/internal/feature/meals/usecase"
	"calories_tracker/internal/platform/cache"
	"calories_tracker/internal/platform/externalapi/nutritionix"
	infrahttp "calories_tracker/internal/platform/http"
	"calories_tracker/internal/shared/ratelimiter"
)

// NewNutritionLookup creates a rate-limited Nutritionix client, cached in Redis when rdb is non-nil.
// It returns nil when no credentials are configured, so zero-calorie meals are stored with 0.
func NewNutritionLookup(cfg nutritionix.Config, rdb *redis.Client, ttl time.Duration) mealsusecase.NutritionLookup {
	if !cfg.Enabled() {
		slog.Info("Nutritionix credentials not set; calorie lookup disabled")
		return nil
	}
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	limiter := ratelimiter.NewRateLimiter(cfg.RateLimit, cfg.RateInterval)
	client := nutritionix.NewClient(cfg, httpClient, limiter)
	if rdb == nil {
		return client
	}
	return cache.NewCachingNutritionLookup(rdb, ttl, client)
}

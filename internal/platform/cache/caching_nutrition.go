package cache

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"calories_tracker/internal/feature/meals/usecase"
)

// CachingNutritionLookup caches nutrition estimates per normalised meal text.
// Failed lookups are not cached.
type CachingNutritionLookup struct {
	inner     usecase.NutritionLookup
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.NutritionLookup = (*CachingNutritionLookup)(nil)

// NewCachingNutritionLookup decorates inner. If ttl is 0, it defaults to 24 hours.
func NewCachingNutritionLookup(rdb *redis.Client, ttl time.Duration, inner usecase.NutritionLookup) *CachingNutritionLookup {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &CachingNutritionLookup{inner: inner, rdb: rdb, ttl: ttl, namespace: "nutrition"}
}

func (c *CachingNutritionLookup) Calories(ctx context.Context, text string) (float64, error) {
	if c.rdb == nil {
		return c.inner.Calories(ctx, text)
	}

	key := c.namespace + ":" + safe(strings.ToLower(strings.TrimSpace(text)))
	if s, err := c.rdb.Get(ctx, key).Result(); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	kcal, err := c.inner.Calories(ctx, text)
	if err != nil {
		return 0, err
	}
	if err := c.rdb.Set(ctx, key, strconv.FormatFloat(kcal, 'g', -1, 64), c.ttl).Err(); err != nil {
		slog.Warn("failed to cache nutrition lookup", "error", err, "key", key)
	}
	return kcal, nil
}

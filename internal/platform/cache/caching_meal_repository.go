// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"calories_tracker/internal/feature/meals/domain/entity"
	"calories_tracker/internal/feature/meals/usecase"
)

// CachingMealRepository decorates a MealRepository with Redis caching of calorie sums.
// Every write for a user moves that user to a new cache generation.
type CachingMealRepository struct {
	usecase.MealRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	now       func() time.Time
}

var _ usecase.MealRepository = (*CachingMealRepository)(nil)

// NewCachingMealRepository decorates inner with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "meals".
func NewCachingMealRepository(rdb *redis.Client, ttl time.Duration, inner usecase.MealRepository, namespace string) *CachingMealRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "meals"
	}
	return &CachingMealRepository{
		MealRepository: inner,
		rdb:            rdb,
		ttl:            ttl,
		namespace:      namespace,
		now:            time.Now,
	}
}

func (c *CachingMealRepository) Create(ctx context.Context, m *entity.Meal) error {
	if err := c.MealRepository.Create(ctx, m); err != nil {
		return err
	}
	c.invalidate(ctx, m.UserID)
	return nil
}

func (c *CachingMealRepository) Update(ctx context.Context, m *entity.Meal) error {
	if err := c.MealRepository.Update(ctx, m); err != nil {
		return err
	}
	c.invalidate(ctx, m.UserID)
	return nil
}

func (c *CachingMealRepository) Delete(ctx context.Context, m *entity.Meal) error {
	if err := c.MealRepository.Delete(ctx, m); err != nil {
		return err
	}
	c.invalidate(ctx, m.UserID)
	return nil
}

// SumCaloriesBetween checks the cache first, then falls back to the database.
// The user's generation is read before the database, so a write that lands in
// between leaves the stored total under a generation nobody reads again.
func (c *CachingMealRepository) SumCaloriesBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) (float64, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.MealRepository.SumCaloriesBetween(ctx, userID, from, to)
	}

	gen, err := c.generation(ctx, userID)
	if err != nil {
		slog.Warn("failed to read calorie cache generation", "error", err, "user_id", userID)
		return c.MealRepository.SumCaloriesBetween(ctx, userID, from, to)
	}
	key := c.cacheKey(userID, gen, from, to)

	// 1) Check cache
	if s, err := c.rdb.Get(ctx, key).Result(); err == nil {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v, nil
		}
		slog.Warn("corrupt calorie cache entry", "key", key)
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	total, err := c.MealRepository.SumCaloriesBetween(ctx, userID, from, to)
	if err != nil {
		return 0, err
	}

	// 3) Store in cache (best effort), never past the end of the window
	if ttl := capTTL(c.ttl, c.now(), to); ttl > 0 {
		_ = c.rdb.Set(ctx, key, strconv.FormatFloat(total, 'g', -1, 64), ttl).Err()
	}
	return total, nil
}

// generation returns the user's current cache generation, "0" when none was written yet.
func (c *CachingMealRepository) generation(ctx context.Context, userID uuid.UUID) (string, error) {
	gen, err := c.rdb.Get(ctx, c.generationKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return gen, err
}

// invalidate bumps the user's generation. Entries of older generations expire on their own.
func (c *CachingMealRepository) invalidate(ctx context.Context, userID uuid.UUID) {
	if c.rdb == nil {
		return
	}
	key := c.generationKey(userID)
	if err := c.rdb.Incr(ctx, key).Err(); err != nil {
		slog.Warn("failed to invalidate calorie cache", "error", err, "user_id", userID)
		return
	}
	// 古い世代のエントリより長く保持する
	_ = c.rdb.Expire(ctx, key, c.generationTTL()).Err()
}

func (c *CachingMealRepository) generationTTL() time.Duration {
	return 24*time.Hour + c.ttl
}

func (c *CachingMealRepository) cacheKey(userID uuid.UUID, gen string, from, to time.Time) string {
	return fmt.Sprintf("%sg%s:%d:%d", c.cacheKeyPrefix(userID), gen, from.Unix(), to.Unix())
}

func (c *CachingMealRepository) generationKey(userID uuid.UUID) string {
	return c.cacheKeyPrefix(userID) + "gen"
}

func (c *CachingMealRepository) cacheKeyPrefix(userID uuid.UUID) string {
	return fmt.Sprintf("%s:calories:%s:", c.namespace, userID)
}

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNutrition struct {
	calls int
	kcal  float64
	err   error
}

func (s *stubNutrition) Calories(context.Context, string) (float64, error) {
	s.calls++
	return s.kcal, s.err
}

// setupTestRedis はテスト用のminiredisとクライアントを準備します。
func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCachingNutritionLookup_CachesByNormalisedText(t *testing.T) {
	t.Parallel()

	mr, rdb := setupTestRedis(t)
	inner := &stubNutrition{kcal: 207.5}
	lookup := NewCachingNutritionLookup(rdb, time.Hour, inner)

	got, err := lookup.Calories(context.Background(), "2 Eggs and Toast")
	require.NoError(t, err)
	assert.Equal(t, 207.5, got)

	got, err = lookup.Calories(context.Background(), "  2 eggs and toast ")
	require.NoError(t, err)
	assert.Equal(t, 207.5, got)
	assert.Equal(t, 1, inner.calls, "second lookup must be served from cache")

	v, err := mr.Get("nutrition:2_eggs_and_toast")
	require.NoError(t, err)
	assert.Equal(t, "207.5", v)
	assert.Equal(t, time.Hour, mr.TTL("nutrition:2_eggs_and_toast"))
}

func TestCachingNutritionLookup_ErrorsAreNotCached(t *testing.T) {
	t.Parallel()

	mr, rdb := setupTestRedis(t)
	inner := &stubNutrition{err: errors.New("nutritionix http 500")}
	lookup := NewCachingNutritionLookup(rdb, 0, inner)
	assert.Equal(t, 24*time.Hour, lookup.ttl)

	_, err := lookup.Calories(context.Background(), "apple")
	assert.Error(t, err)
	assert.False(t, mr.Exists("nutrition:apple"))
}

func TestCachingNutritionLookup_CorruptEntry(t *testing.T) {
	t.Parallel()

	mr, rdb := setupTestRedis(t)
	require.NoError(t, mr.Set("nutrition:apple", "garbage"))
	inner := &stubNutrition{kcal: 95}
	lookup := NewCachingNutritionLookup(rdb, time.Hour, inner)

	got, err := lookup.Calories(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, 95.0, got)
	assert.Equal(t, 1, inner.calls)
}

func TestCachingNutritionLookup_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &stubNutrition{kcal: 95}
	lookup := NewCachingNutritionLookup(nil, time.Hour, inner)

	for i := 0; i < 2; i++ {
		_, err := lookup.Calories(context.Background(), "apple")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, inner.calls)
}

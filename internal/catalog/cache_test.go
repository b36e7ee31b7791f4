package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collegeplan-workers/internal/common/logger"
)

func newCacheFixture(t *testing.T) (*ScoreCache, *miniredis.Miniredis) {
	t.Helper()

	store := NewStore(logger.NewTestLogger(t))
	require.NoError(t, store.LoadFile(writeTestCatalog(t)))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	return NewScoreCache(store, client, time.Hour, logger.NewTestLogger(t)), mr
}

func TestScoreCache_ComputesAndCaches(t *testing.T) {
	cache, mr := newCacheFixture(t)

	first, err := cache.Score(context.Background(), "Ridgemont University")
	require.NoError(t, err)
	assert.Equal(t, "Ridgemont University", first.College.Name)
	assert.Greater(t, first.Score, 80)
	assert.True(t, mr.Exists("college:score:ridgemont university"))

	second, err := cache.Score(context.Background(), "RIDGEMONT UNIVERSITY")
	require.NoError(t, err)
	assert.Equal(t, first.Score, second.Score)
}

func TestScoreCache_ServesStaleUntilInvalidated(t *testing.T) {
	cache, mr := newCacheFixture(t)
	ctx := context.Background()

	// Seed the cache with a score the store no longer produces.
	_, err := cache.Score(ctx, "State Flagship College")
	require.NoError(t, err)
	mr.Set("college:score:state flagship college", `{"college":{"name":"State Flagship College"},"score":11}`)

	cached, err := cache.Score(ctx, "State Flagship College")
	require.NoError(t, err)
	assert.Equal(t, 11, cached.Score)

	cache.Invalidate(ctx, "State Flagship College")

	fresh, err := cache.Score(ctx, "State Flagship College")
	require.NoError(t, err)
	assert.NotEqual(t, 11, fresh.Score)
}

func TestScoreCache_UnknownCollege(t *testing.T) {
	cache, _ := newCacheFixture(t)

	_, err := cache.Score(context.Background(), "Nowhere State")
	assert.Error(t, err)
}

func TestScoreCache_RedisDownDegradesToCompute(t *testing.T) {
	cache, mr := newCacheFixture(t)
	mr.Close()

	result, err := cache.Score(context.Background(), "Ridgemont University")
	require.NoError(t, err)
	assert.Greater(t, result.Score, 0)
}

func TestScoreCache_NilClientSkipsCaching(t *testing.T) {
	store := NewStore(logger.NewTestLogger(t))
	require.NoError(t, store.LoadFile(writeTestCatalog(t)))
	cache := NewScoreCache(store, nil, time.Hour, logger.NewTestLogger(t))

	result, err := cache.Score(context.Background(), "Ridgemont University")
	require.NoError(t, err)
	assert.Greater(t, result.Score, 0)
}

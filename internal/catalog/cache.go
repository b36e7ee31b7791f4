package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"collegeplan-workers/internal/common/logger"
	"collegeplan-workers/internal/common/metrics"
	"collegeplan-workers/internal/scoring"
)

// ScoredCollege is a catalog row joined with its computed rating.
type ScoredCollege struct {
	College   College                  `json:"college"`
	Score     int                      `json:"score"`
	Breakdown scoring.CollegeBreakdown `json:"breakdown"`
}

// ScoreCache computes college ratings through a redis cache-aside layer. A
// nil redis client disables caching; every lookup then computes directly.
type ScoreCache struct {
	store  *Store
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewScoreCache(store *Store, redisClient *redis.Client, ttl time.Duration, log logger.Logger) *ScoreCache {
	return &ScoreCache{
		store:  store,
		redis:  redisClient,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "catalog-cache"}),
	}
}

func scoreCacheKey(name string) string {
	return fmt.Sprintf("college:score:%s", NormalizeName(name))
}

// Score rates the named college, serving repeats from redis. Cache failures
// degrade to a recompute, never to an error.
func (c *ScoreCache) Score(ctx context.Context, name string) (*ScoredCollege, error) {
	key := scoreCacheKey(name)

	if c.redis != nil {
		if val, err := c.redis.Get(ctx, key).Result(); err == nil {
			var cached ScoredCollege
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				metrics.CatalogCacheHits.WithLabelValues("hit").Inc()
				return &cached, nil
			}
		}
		metrics.CatalogCacheHits.WithLabelValues("miss").Inc()
	}

	college, err := c.store.Lookup(name)
	if err != nil {
		return nil, err
	}

	score, breakdown := scoring.RateCollege(college.ScoringRecord())
	result := &ScoredCollege{College: college, Score: score, Breakdown: breakdown}

	if c.redis != nil {
		if data, err := json.Marshal(result); err == nil {
			if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
				c.logger.Warn("score cache write failed", map[string]interface{}{
					"college": college.Name,
					"error":   err.Error(),
				})
			}
		}
	}
	return result, nil
}

// Invalidate drops a cached score, used after catalog reloads.
func (c *ScoreCache) Invalidate(ctx context.Context, name string) {
	if c.redis == nil {
		return
	}
	c.redis.Del(ctx, scoreCacheKey(name))
}

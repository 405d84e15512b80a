package api

import (
	"context" // Context for Redis operations
	"fmt"     // Cache key formatting
	"time"    // Time durations

	"budgetbook/internal/utils" // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// cacheTTL bounds staleness of the read caches; every write path also
// invalidates the keys it can affect, so the TTL is only a backstop.
const cacheTTL = 60 * time.Second

// assetListKey is the cache key for a user's asset list
func assetListKey(userID uint) string {
	return fmt.Sprintf("assets:user:%d", userID)
}

// assetTotalKey is the cache key for a user's total balance
func assetTotalKey(userID uint) string {
	return fmt.Sprintf("assettotal:user:%d", userID)
}

// monthlyStatsKey is the cache key for one user-month summary
func monthlyStatsKey(userID uint, year, month int) string {
	return fmt.Sprintf("stats:monthly:user:%d:%d-%02d", userID, year, month)
}

// contextRedis pulls the injected Redis client out of the gin context
func contextRedis(c *gin.Context) *redis.Client {
	if v, exists := c.Get("redisClient"); exists {
		if rdb, ok := v.(*redis.Client); ok {
			return rdb // May be nil when caching is disabled
		}
	}
	return nil
}

// invalidateAssetCaches drops the cached asset views after any write that can
// change an asset row or balance
func invalidateAssetCaches(c *gin.Context, userID uint) {
	_ = utils.DeleteCache(context.Background(), contextRedis(c), assetListKey(userID), assetTotalKey(userID))
}

// invalidateStatsCaches drops cached monthly summaries for the months a
// receipt write touched (one month on create/delete, up to two on update)
func invalidateStatsCaches(c *gin.Context, userID uint, dates ...time.Time) {
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		keys = append(keys, monthlyStatsKey(userID, d.Year(), int(d.Month())))
	}
	_ = utils.DeleteCache(context.Background(), contextRedis(c), keys...)
}

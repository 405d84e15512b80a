package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"budgetbook/internal/apperr" // Error taxonomy
	"budgetbook/internal/domain" // Importing domain models
	"budgetbook/internal/stats"  // Aggregation queries
	"budgetbook/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// MonthlyStatsHandler returns one month's expense/income summary, served from
// cache when a recent copy exists
func MonthlyStatsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		year, month, err := parseYearMonth(c.Query("year"), c.Query("month")) // Parse the month
		if err != nil {
			fail(c, err)
			return
		}
		ctx := context.Background()                      // Context for Redis operations
		cacheKey := monthlyStatsKey(userID, year, month) // Cache key for this month
		var cached stats.MonthlyStat
		// Try to get from cache first
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			respond(c, http.StatusOK, cached)
			return
		}
		ms, err := stats.Monthly(db, userID, year, month)
		if err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, ms, cacheTTL) // Cache the summary
		respond(c, http.StatusOK, ms)
	}
}

// CategoryStatsHandler returns one month's per-category aggregation with
// amounts rolled up the category tree
func CategoryStatsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		year, month, err := parseYearMonth(c.Query("year"), c.Query("month")) // Parse the month
		if err != nil {
			fail(c, err)
			return
		}
		rtype, err := parseStatType(c.Query("type")) // Parse the receipt type
		if err != nil {
			fail(c, err)
			return
		}
		results, err := stats.CategoryStats(db, userID, rtype, year, month)
		if err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		respond(c, http.StatusOK, results)
	}
}

// RecentStatsHandler returns monthly summaries over the trailing window
func RecentStatsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		months := 6 // Default window
		if s := c.Query("months"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 12 {
				fail(c, apperr.Validation("months (1-12)"))
				return
			}
			months = n
		}
		results, err := stats.RecentMonthly(db, userID, months)
		if err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		respond(c, http.StatusOK, results)
	}
}

// CategoryTrendHandler returns one category subtree's month-by-month totals
func CategoryTrendHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		id, err := strconv.Atoi(c.Param("id")) // Parse category ID
		if err != nil || id <= 0 {
			fail(c, apperr.Validation("category id"))
			return
		}
		// The category must exist and belong to the requester
		category, err := findOwnedCategory(db, uint(id), userID)
		if err != nil {
			fail(c, err)
			return
		}
		months := 6 // Default window
		if s := c.Query("months"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 12 {
				fail(c, apperr.Validation("months (1-12)"))
				return
			}
			months = n
		}
		results, err := stats.CategoryTrend(db, userID, category.ID, category.Type, months)
		if err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		respond(c, http.StatusOK, results)
	}
}

// TopCategoriesHandler ranks level-2 categories for one month
func TopCategoriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		year, month, err := parseYearMonth(c.Query("year"), c.Query("month")) // Parse the month
		if err != nil {
			fail(c, err)
			return
		}
		rtype, err := parseStatType(c.Query("type")) // Parse the receipt type
		if err != nil {
			fail(c, err)
			return
		}
		limit := 5 // Default ranking size
		if s := c.Query("limit"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 1 || n > 20 {
				fail(c, apperr.Validation("limit (1-20)"))
				return
			}
			limit = n
		}
		results, err := stats.TopCategories(db, userID, rtype, year, month, limit)
		if err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		respond(c, http.StatusOK, results)
	}
}

// parseStatType validates the expense/income selector for statistics queries
func parseStatType(s string) (int, error) {
	rtype, err := strconv.Atoi(s)
	if err != nil || (rtype != domain.CategoryExpense && rtype != domain.CategoryIncome) {
		return 0, apperr.Validation("type (0: expense, 1: income)")
	}
	return rtype, nil
}

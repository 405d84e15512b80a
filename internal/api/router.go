package api

import (
	"budgetbook/internal/middleware" // Custom package for middleware

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// NewRouter wires every route onto a Gin engine. A nil Redis client disables
// caching without changing any handler behavior.
func NewRouter(db *gorm.DB, redisClient *redis.Client, jwtSecret string) *gin.Engine {
	r := gin.Default() // Gin router instance

	// Auth routes
	r.POST("/auth/register", RegisterHandler(db))        // Registration endpoint
	r.POST("/auth/login", LoginHandler(db, jwtSecret))   // Login endpoint

	// Protect routes with JWT middleware and inject Redis client into context
	authed := func(g *gin.RouterGroup) {
		g.Use(middleware.JWTAuthMiddleware(jwtSecret), func(c *gin.Context) {
			c.Set("redisClient", redisClient)
			c.Next()
		})
	}

	// Asset routes (protected by JWT)
	assetGroup := r.Group("/asset")
	authed(assetGroup)
	assetGroup.POST("", CreateAssetHandler(db))                  // Create asset endpoint
	assetGroup.GET("", ListAssetsHandler(db, redisClient))       // List assets endpoint
	assetGroup.GET("/total", TotalAssetsHandler(db, redisClient)) // Balance total endpoint
	assetGroup.GET("/:id", GetAssetHandler(db))                  // Get asset endpoint
	assetGroup.PUT("/:id", UpdateAssetHandler(db))               // Update asset endpoint
	assetGroup.DELETE("/:id", DeleteAssetHandler(db))            // Delete asset endpoint

	// Category routes (protected by JWT)
	categoryGroup := r.Group("/category")
	authed(categoryGroup)
	categoryGroup.POST("", CreateCategoryHandler(db))             // Create category endpoint
	categoryGroup.GET("", ListCategoriesHandler(db))              // List categories endpoint
	categoryGroup.GET("/type", ListCategoriesByTypeHandler(db))   // List by type endpoint
	categoryGroup.GET("/:id", GetCategoryHandler(db))             // Get category endpoint
	categoryGroup.GET("/:id/children", ListChildrenHandler(db))   // Direct children endpoint
	categoryGroup.PUT("/:id", UpdateCategoryHandler(db))          // Update category endpoint
	categoryGroup.DELETE("/:id", DeleteCategoryHandler(db))       // Delete category endpoint

	// Receipt routes (protected by JWT)
	receiptGroup := r.Group("/receipt")
	authed(receiptGroup)
	receiptGroup.POST("", CreateReceiptHandler(db))      // Create receipt endpoint
	receiptGroup.GET("", ListReceiptsHandler(db))        // List receipts endpoint
	receiptGroup.GET("/total", ReceiptTotalHandler(db))  // Month totals endpoint
	receiptGroup.GET("/:id", GetReceiptHandler(db))      // Get receipt endpoint
	receiptGroup.PUT("/:id", UpdateReceiptHandler(db))   // Update receipt endpoint
	receiptGroup.DELETE("/:id", DeleteReceiptHandler(db)) // Delete receipt endpoint

	// Statistics routes (protected by JWT)
	statsGroup := r.Group("/statistics")
	authed(statsGroup)
	statsGroup.GET("/monthly", MonthlyStatsHandler(db, redisClient)) // Monthly summary endpoint
	statsGroup.GET("/category", CategoryStatsHandler(db))            // Category aggregation endpoint
	statsGroup.GET("/recent", RecentStatsHandler(db))                // Trailing months endpoint
	statsGroup.GET("/top", TopCategoriesHandler(db))                 // Top categories endpoint
	statsGroup.GET("/trend/:id", CategoryTrendHandler(db))           // Category trend endpoint

	return r
}

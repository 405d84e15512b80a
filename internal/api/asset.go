package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation

	"budgetbook/internal/apperr" // Error taxonomy
	"budgetbook/internal/domain" // Importing domain models
	"budgetbook/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// CreateAssetRequest represents a new asset. The initial balance is the only
// balance a client ever writes; afterwards the ledger owns the column.
type CreateAssetRequest struct {
	Name    string `json:"name" binding:"required"`                     // Asset name
	Type    string `json:"type" binding:"required,oneof=account card"`  // account or card
	Balance *int64 `json:"balance" binding:"required,gte=0"`            // Initial balance in minor units
}

// UpdateAssetRequest carries the client-updatable fields; balance is
// deliberately absent
type UpdateAssetRequest struct {
	Name *string `json:"name"` // New name
	Type *string `json:"type"` // New kind
}

// findDuplicateAssetName reports whether the owner already has an asset with
// this name, ignoring case, excluding excludeID
func findDuplicateAssetName(db *gorm.DB, userID uint, name string, excludeID uint) (bool, error) {
	var count int64
	err := db.Model(&domain.Asset{}).
		Where("user_id = ? AND LOWER(name) = ? AND id <> ?", userID, strings.ToLower(strings.TrimSpace(name)), excludeID).
		Count(&count).Error
	return count > 0, err
}

// CreateAssetHandler creates an asset for the authenticated user
func CreateAssetHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		// Check if userID exists in context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		var req CreateAssetRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			fail(c, apperr.Validation("name, type, balance"))
			return
		}
		// Reject duplicate names within the owner's assets
		dup, err := findDuplicateAssetName(db, userID, req.Name, 0)
		if err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		if dup {
			fail(c, apperr.Duplicate("asset name"))
			return
		}
		asset := domain.Asset{
			Name:    strings.TrimSpace(req.Name), // Asset name
			Type:    req.Type,                    // account or card
			Balance: *req.Balance,                // Initial balance
			UserID:  userID,                      // Owner
		}
		// Save the new asset
		if err := db.Create(&asset).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to create asset") // Log failure
			fail(c, apperr.Internal(""))
			return
		}
		invalidateAssetCaches(c, userID) // Invalidate cached asset views
		// Return success response
		respond(c, http.StatusCreated, asset)
	}
}

// ListAssetsHandler returns all assets of the authenticated user
func ListAssetsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		ctx := context.Background()    // Context for Redis operations
		cacheKey := assetListKey(userID) // Cache key for the asset list
		var assets []domain.Asset
		// Try to get from cache first
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &assets); err == nil && found {
			respond(c, http.StatusOK, assets)
			return
		}
		// If not in cache, fetch from DB
		if err := db.Where("user_id = ?", userID).Order("id desc").Find(&assets).Error; err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, assets, cacheTTL) // Cache the list
		respond(c, http.StatusOK, assets)
	}
}

// GetAssetHandler returns a single asset after the ownership check
func GetAssetHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		id, err := strconv.Atoi(c.Param("id")) // Parse asset ID
		if err != nil || id <= 0 {
			fail(c, apperr.Validation("asset id"))
			return
		}
		asset, err := findOwnedAsset(db, uint(id), userID) // Ownership guard
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, asset)
	}
}

// UpdateAssetHandler renames or re-kinds an asset; the balance column stays
// under ledger control
func UpdateAssetHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		id, err := strconv.Atoi(c.Param("id")) // Parse asset ID
		if err != nil || id <= 0 {
			fail(c, apperr.Validation("asset id"))
			return
		}
		var req UpdateAssetRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Validation("name, type"))
			return
		}
		// At least one field must change
		if req.Name == nil && req.Type == nil {
			fail(c, apperr.Invalid("nothing to update"))
			return
		}
		asset, err := findOwnedAsset(db, uint(id), userID) // Ownership guard
		if err != nil {
			fail(c, err)
			return
		}
		updates := map[string]any{}
		if req.Name != nil {
			// Re-check uniqueness when renaming
			dup, err := findDuplicateAssetName(db, userID, *req.Name, asset.ID)
			if err != nil {
				fail(c, apperr.Internal(""))
				return
			}
			if dup {
				fail(c, apperr.Duplicate("asset name"))
				return
			}
			updates["name"] = strings.TrimSpace(*req.Name)
		}
		if req.Type != nil {
			// Validate the asset kind
			if *req.Type != domain.AssetAccount && *req.Type != domain.AssetCard {
				fail(c, apperr.Validation("type"))
				return
			}
			updates["type"] = *req.Type
		}
		// Apply the update
		if err := db.Model(asset).Updates(updates).Error; err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		invalidateAssetCaches(c, userID) // Invalidate cached asset views
		respondMessage(c, http.StatusOK, asset, "Asset updated")
	}
}

// DeleteAssetHandler removes an asset that no receipt references. Deleting an
// asset with booked receipts would orphan their balance history, so it is
// refused.
func DeleteAssetHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		id, err := strconv.Atoi(c.Param("id")) // Parse asset ID
		if err != nil || id <= 0 {
			fail(c, apperr.Validation("asset id"))
			return
		}
		asset, err := findOwnedAsset(db, uint(id), userID) // Ownership guard
		if err != nil {
			fail(c, err)
			return
		}
		// Refuse deletion while receipts reference the asset
		var refs int64
		if err := db.Model(&domain.Receipt{}).
			Where("asset_id = ? OR trs_asset_id = ?", asset.ID, asset.ID).
			Count(&refs).Error; err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		if refs > 0 {
			fail(c, apperr.Invalid("cannot delete an asset referenced by receipts"))
			return
		}
		// Remove the asset row
		if err := db.Delete(asset).Error; err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		logrus.WithFields(logrus.Fields{
			"asset_id": asset.ID, // Asset ID
			"user_id":  userID,   // User ID
		}).Info("Asset deleted") // Log asset deletion
		invalidateAssetCaches(c, userID) // Invalidate cached asset views
		respondMessage(c, http.StatusOK, asset, "Asset deleted")
	}
}

// TotalAssetsHandler returns the sum of the user's asset balances
func TotalAssetsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		ctx := context.Background()       // Context for Redis operations
		cacheKey := assetTotalKey(userID) // Cache key for the balance total
		var cached struct {
			Total int64 `json:"total"` // Sum of balances
		}
		// Try to get from cache first
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			respond(c, http.StatusOK, cached)
			return
		}
		var row struct{ Total int64 }
		// Sum balances across the user's assets
		if err := db.Model(&domain.Asset{}).
			Select("COALESCE(SUM(balance), 0) AS total").
			Where("user_id = ?", userID).
			Scan(&row).Error; err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		cached.Total = row.Total
		_ = utils.SetCache(ctx, rdb, cacheKey, cached, cacheTTL) // Cache the total
		respond(c, http.StatusOK, cached)
	}
}

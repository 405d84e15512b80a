package api

import (
	"errors" // gorm error matching

	"budgetbook/internal/apperr" // Error taxonomy
	"budgetbook/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// Every read and mutation on assets, categories and receipts goes through one
// of these guards. A row that does not exist fails NotFound (404); a row that
// exists but belongs to someone else fails Forbidden (403) so callers can
// tell the two apart.

// currentUserID reads the authenticated user id the JWT middleware stored
func currentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("userID") // Get userID from context
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// findOwnedAsset loads an asset and confirms the requester owns it
func findOwnedAsset(db *gorm.DB, id, userID uint) (*domain.Asset, error) {
	var asset domain.Asset
	if err := db.First(&asset, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("asset")
		}
		return nil, apperr.Internal("")
	}
	if asset.UserID != userID {
		return nil, apperr.Forbidden("asset")
	}
	return &asset, nil
}

// findOwnedCategory loads a category and confirms the requester owns it
func findOwnedCategory(db *gorm.DB, id, userID uint) (*domain.Category, error) {
	var category domain.Category
	if err := db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("category")
		}
		return nil, apperr.Internal("")
	}
	if category.UserID != userID {
		return nil, apperr.Forbidden("category")
	}
	return &category, nil
}

// findOwnedReceipt loads a receipt and confirms the requester owns it
func findOwnedReceipt(db *gorm.DB, id, userID uint) (*domain.Receipt, error) {
	var receipt domain.Receipt
	if err := db.First(&receipt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("receipt")
		}
		return nil, apperr.Internal("")
	}
	if receipt.UserID != userID {
		return nil, apperr.Forbidden("receipt")
	}
	return &receipt, nil
}

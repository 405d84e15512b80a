package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation

	"budgetbook/internal/apperr" // Error taxonomy
	"budgetbook/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// CreateCategoryRequest represents a new category. The level is derived from
// the parent server-side, never accepted from the client.
type CreateCategoryRequest struct {
	ParentID *uint  `json:"parent_id"`                // Parent category, nil for roots
	Name     string `json:"name" binding:"required"`  // Category name
	Type     *int   `json:"type" binding:"required"`  // 0: expense, 1: income
}

// UpdateCategoryRequest renames a category and/or moves it under a new
// parent. A nil parent_id means "leave the parent alone".
type UpdateCategoryRequest struct {
	Name     *string `json:"name"`      // New name
	ParentID *uint   `json:"parent_id"` // New parent
}

// findDuplicateCategoryName reports whether a sibling with this name already
// exists within (owner, type, parent), ignoring case, excluding excludeID
func findDuplicateCategoryName(db *gorm.DB, userID uint, ctype int, parentID *uint, name string, excludeID uint) (bool, error) {
	query := db.Model(&domain.Category{}).
		Where("user_id = ? AND type = ? AND LOWER(name) = ? AND id <> ?",
			userID, ctype, strings.ToLower(strings.TrimSpace(name)), excludeID)
	// NULL parents need their own predicate
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// CreateCategoryHandler creates a category for the authenticated user
func CreateCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		var req CreateCategoryRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Validation("name, type"))
			return
		}
		// Validate the category type
		if *req.Type != domain.CategoryExpense && *req.Type != domain.CategoryIncome {
			fail(c, apperr.Validation("type (0: expense, 1: income)"))
			return
		}
		level := 1 // Roots sit at level 1
		if req.ParentID != nil {
			// The parent must exist and belong to the requester
			parent, err := findOwnedCategory(db, *req.ParentID, userID)
			if err != nil {
				fail(c, err)
				return
			}
			// A child's type always matches its parent's
			if parent.Type != *req.Type {
				fail(c, apperr.Invalid("category type must match its parent"))
				return
			}
			level = parent.Level + 1
			// The tree is bounded at three levels
			if level > domain.MaxCategoryLevel {
				fail(c, apperr.Invalid("category tree depth is limited to 3 levels"))
				return
			}
		}
		// Reject duplicate names among siblings
		dup, err := findDuplicateCategoryName(db, userID, *req.Type, req.ParentID, req.Name, 0)
		if err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		if dup {
			fail(c, apperr.Duplicate("category name"))
			return
		}
		category := domain.Category{
			ParentID: req.ParentID,                // Parent link
			Name:     strings.TrimSpace(req.Name), // Category name
			Type:     *req.Type,                   // Category type
			Level:    level,                       // Derived tree depth
			UserID:   userID,                      // Owner
		}
		// Save the new category
		if err := db.Create(&category).Error; err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"error":   err.Error(), // Error message
			}).Error("Failed to create category") // Log failure
			fail(c, apperr.Internal(""))
			return
		}
		respond(c, http.StatusCreated, category)
	}
}

// ListCategoriesHandler returns every category of the authenticated user
func ListCategoriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		var categories []domain.Category
		// Parents first so clients can build the tree in one pass
		if err := db.Where("user_id = ?", userID).
			Order("level asc, id asc").Find(&categories).Error; err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		respond(c, http.StatusOK, categories)
	}
}

// ListCategoriesByTypeHandler returns the user's categories of one type
func ListCategoriesByTypeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		ctype, err := strconv.Atoi(c.Query("type")) // Parse category type
		if err != nil || (ctype != domain.CategoryExpense && ctype != domain.CategoryIncome) {
			fail(c, apperr.Validation("type (0: expense, 1: income)"))
			return
		}
		var categories []domain.Category
		if err := db.Where("user_id = ? AND type = ?", userID, ctype).
			Order("level asc, id asc").Find(&categories).Error; err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		respond(c, http.StatusOK, categories)
	}
}

// GetCategoryHandler returns a single category after the ownership check
func GetCategoryHandler(db *gorm.DB) gin.HandlerFunc {
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
		category, err := findOwnedCategory(db, uint(id), userID) // Ownership guard
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, category)
	}
}

// ListChildrenHandler returns the direct children of one category
func ListChildrenHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		id, err := strconv.Atoi(c.Param("id")) // Parse parent category ID
		if err != nil || id <= 0 {
			fail(c, apperr.Validation("category id"))
			return
		}
		// The parent itself must exist and belong to the requester
		if _, err := findOwnedCategory(db, uint(id), userID); err != nil {
			fail(c, err)
			return
		}
		var children []domain.Category
		if err := db.Where("parent_id = ?", uint(id)).
			Order("id asc").Find(&children).Error; err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		respond(c, http.StatusOK, children)
	}
}

// UpdateCategoryHandler renames and/or reparents a category. Reparenting is
// only allowed for categories without children, since moving a subtree would
// invalidate the levels of every descendant.
func UpdateCategoryHandler(db *gorm.DB) gin.HandlerFunc {
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
		var req UpdateCategoryRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Validation("name, parent_id"))
			return
		}
		if req.Name == nil && req.ParentID == nil {
			fail(c, apperr.Invalid("nothing to update"))
			return
		}
		category, err := findOwnedCategory(db, uint(id), userID) // Ownership guard
		if err != nil {
			fail(c, err)
			return
		}
		updates := map[string]any{}
		newParentID := category.ParentID
		if req.ParentID != nil {
			// Refuse to move a category that has children
			var childCount int64
			if err := db.Model(&domain.Category{}).
				Where("parent_id = ?", category.ID).Count(&childCount).Error; err != nil {
				fail(c, apperr.Internal(""))
				return
			}
			if childCount > 0 {
				fail(c, apperr.Invalid("cannot move a category with child categories"))
				return
			}
			// A category cannot become its own parent
			if *req.ParentID == category.ID {
				fail(c, apperr.Invalid("category cannot be its own parent"))
				return
			}
			parent, err := findOwnedCategory(db, *req.ParentID, userID)
			if err != nil {
				fail(c, err)
				return
			}
			if parent.Type != category.Type {
				fail(c, apperr.Invalid("category type must match its parent"))
				return
			}
			if parent.Level+1 > domain.MaxCategoryLevel {
				fail(c, apperr.Invalid("category tree depth is limited to 3 levels"))
				return
			}
			newParentID = req.ParentID
			updates["parent_id"] = *req.ParentID
			updates["level"] = parent.Level + 1
		}
		if req.Name != nil {
			// Re-check uniqueness among the (possibly new) siblings
			dup, err := findDuplicateCategoryName(db, userID, category.Type, newParentID, *req.Name, category.ID)
			if err != nil {
				fail(c, apperr.Internal(""))
				return
			}
			if dup {
				fail(c, apperr.Duplicate("category name"))
				return
			}
			updates["name"] = strings.TrimSpace(*req.Name)
		}
		// Apply the update
		if err := db.Model(category).Updates(updates).Error; err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		respondMessage(c, http.StatusOK, category, "Category updated")
	}
}

// DeleteCategoryHandler removes a leaf category and detaches its receipts.
// Categories with children cannot be deleted; receipts that referenced the
// deleted category keep existing with a null category.
func DeleteCategoryHandler(db *gorm.DB) gin.HandlerFunc {
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
		category, err := findOwnedCategory(db, uint(id), userID) // Ownership guard
		if err != nil {
			fail(c, err)
			return
		}
		// Refuse deletion while children exist
		var childCount int64
		if err := db.Model(&domain.Category{}).
			Where("parent_id = ?", category.ID).Count(&childCount).Error; err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		if childCount > 0 {
			fail(c, apperr.Invalid("cannot delete a category with child categories"))
			return
		}
		// Detach referencing receipts and remove the row in one unit
		err = db.Transaction(func(tx *gorm.DB) error {
			// Null out the tag on referencing receipts
			if err := tx.Model(&domain.Receipt{}).
				Where("category_id = ?", category.ID).
				Update("category_id", nil).Error; err != nil {
				return err // Return error to rollback
			}
			// Remove the category row
			return tx.Delete(category).Error
		})
		if err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		logrus.WithFields(logrus.Fields{
			"category_id": category.ID, // Category ID
			"user_id":     userID,      // User ID
		}).Info("Category deleted") // Log category deletion
		respondMessage(c, http.StatusOK, category, "Category deleted")
	}
}

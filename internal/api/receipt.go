package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Transaction dates

	"budgetbook/internal/apperr" // Error taxonomy
	"budgetbook/internal/domain" // Importing domain models
	"budgetbook/internal/ledger" // Atomic receipt/balance engine
	"budgetbook/internal/stats"  // Monthly aggregates

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// ReceiptRequest carries a full receipt payload; create and update share it.
// The transaction date defaults to now when omitted.
type ReceiptRequest struct {
	Type            *int       `json:"type" binding:"required"`        // 0: expense, 1: income, 2: transfer
	Cost            int64      `json:"cost" binding:"required,gt=0"`   // Amount in minor units
	Content         string     `json:"content" binding:"required"`     // What the money was for
	Location        string     `json:"location"`                       // Where, optional
	TransactionDate *time.Time `json:"transaction_date"`               // When, defaults to now
	AssetID         *uint      `json:"asset_id" binding:"required"`    // Source asset
	TrsAssetID      *uint      `json:"trs_asset_id"`                   // Destination asset, transfers only
	CategoryID      *uint      `json:"category_id"`                    // Optional category tag
}

// buildReceipt validates a request against the caller's resources and turns it
// into a receipt ready for the ledger. All referenced rows must exist and
// belong to the requester.
func buildReceipt(db *gorm.DB, userID uint, req *ReceiptRequest) (*domain.Receipt, error) {
	// Validate the receipt type
	if *req.Type != domain.ReceiptExpense && *req.Type != domain.ReceiptIncome && *req.Type != domain.ReceiptTransfer {
		return nil, apperr.Validation("type (0: expense, 1: income, 2: transfer)")
	}
	// The source asset must exist and belong to the requester
	if _, err := findOwnedAsset(db, *req.AssetID, userID); err != nil {
		return nil, err
	}
	if *req.Type == domain.ReceiptTransfer {
		// Transfers need a destination distinct from the source
		if req.TrsAssetID == nil {
			return nil, apperr.Validation("trs_asset_id")
		}
		if *req.TrsAssetID == *req.AssetID {
			return nil, apperr.Invalid("transfer source and destination must differ")
		}
		if _, err := findOwnedAsset(db, *req.TrsAssetID, userID); err != nil {
			return nil, err
		}
	} else if req.TrsAssetID != nil {
		// Only transfers carry a destination
		return nil, apperr.Invalid("trs_asset_id is only valid for transfers")
	}
	// The category tag, when present, must also be owned
	if req.CategoryID != nil {
		if _, err := findOwnedCategory(db, *req.CategoryID, userID); err != nil {
			return nil, err
		}
	}
	date := time.Now().UTC()
	if req.TransactionDate != nil {
		date = *req.TransactionDate
	}
	return &domain.Receipt{
		Type:            *req.Type,                     // Receipt type
		Cost:            req.Cost,                      // Amount
		Content:         strings.TrimSpace(req.Content), // Description
		Location:        strings.TrimSpace(req.Location), // Place
		TransactionDate: date,                          // When it happened
		UserID:          userID,                        // Owner
		AssetID:         *req.AssetID,                  // Source asset
		TrsAssetID:      req.TrsAssetID,                // Destination asset
		CategoryID:      req.CategoryID,                // Category tag
	}, nil
}

// CreateReceiptHandler records a receipt and adjusts asset balances
func CreateReceiptHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		var req ReceiptRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Validation("type, cost, content, asset_id"))
			return
		}
		receipt, err := buildReceipt(db, userID, &req) // Validate references
		if err != nil {
			fail(c, err)
			return
		}
		// Write the row and the balance effect atomically
		if err := ledger.Create(db, receipt); err != nil {
			fail(c, err)
			return
		}
		invalidateAssetCaches(c, userID)                                 // Balances changed
		invalidateStatsCaches(c, userID, receipt.TransactionDate)        // Month summary changed
		respond(c, http.StatusCreated, receipt)
	}
}

// ListReceiptsHandler returns the user's receipts, optionally scoped to one
// calendar month via year and month query parameters
func ListReceiptsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		query := db.Where("user_id = ?", userID)
		yearStr, monthStr := c.Query("year"), c.Query("month")
		// Both parameters together select one month
		if yearStr != "" || monthStr != "" {
			year, month, err := parseYearMonth(yearStr, monthStr)
			if err != nil {
				fail(c, err)
				return
			}
			start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			query = query.Where("transaction_date >= ? AND transaction_date < ?", start, start.AddDate(0, 1, 0))
		}
		var receipts []domain.Receipt
		// Newest activity first
		if err := query.Order("transaction_date desc, id desc").Find(&receipts).Error; err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		respond(c, http.StatusOK, receipts)
	}
}

// GetReceiptHandler returns a single receipt after the ownership check
func GetReceiptHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		id, err := strconv.Atoi(c.Param("id")) // Parse receipt ID
		if err != nil || id <= 0 {
			fail(c, apperr.Validation("receipt id"))
			return
		}
		receipt, err := findOwnedReceipt(db, uint(id), userID) // Ownership guard
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, receipt)
	}
}

// UpdateReceiptHandler replaces a receipt's values. The old balance effect is
// reversed and the new one applied in the same transaction.
func UpdateReceiptHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		id, err := strconv.Atoi(c.Param("id")) // Parse receipt ID
		if err != nil || id <= 0 {
			fail(c, apperr.Validation("receipt id"))
			return
		}
		var req ReceiptRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, apperr.Validation("type, cost, content, asset_id"))
			return
		}
		old, err := findOwnedReceipt(db, uint(id), userID) // Ownership guard
		if err != nil {
			fail(c, err)
			return
		}
		updated, err := buildReceipt(db, userID, &req) // Validate references
		if err != nil {
			fail(c, err)
			return
		}
		updated.ID = old.ID
		// Reverse the old effect and apply the new one atomically
		if err := ledger.Update(db, old, updated); err != nil {
			fail(c, err)
			return
		}
		invalidateAssetCaches(c, userID) // Balances changed
		// Both the old and the new month summary may have changed
		invalidateStatsCaches(c, userID, old.TransactionDate, updated.TransactionDate)
		respondMessage(c, http.StatusOK, updated, "Receipt updated")
	}
}

// DeleteReceiptHandler removes a receipt and reverses its balance effect
func DeleteReceiptHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := currentUserID(c) // Get userID from context
		if !exists {
			fail(c, apperr.Unauthorized())
			return
		}
		id, err := strconv.Atoi(c.Param("id")) // Parse receipt ID
		if err != nil || id <= 0 {
			fail(c, apperr.Validation("receipt id"))
			return
		}
		receipt, err := findOwnedReceipt(db, uint(id), userID) // Ownership guard
		if err != nil {
			fail(c, err)
			return
		}
		// Reverse the balance effect and drop the row atomically
		if err := ledger.Delete(db, receipt); err != nil {
			fail(c, err)
			return
		}
		invalidateAssetCaches(c, userID)                          // Balances changed
		invalidateStatsCaches(c, userID, receipt.TransactionDate) // Month summary changed
		respondMessage(c, http.StatusOK, receipt, "Receipt deleted")
	}
}

// ReceiptTotalHandler returns expense and income totals for one month
func ReceiptTotalHandler(db *gorm.DB) gin.HandlerFunc {
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
		ms, err := stats.Monthly(db, userID, year, month) // One-month summary
		if err != nil {
			fail(c, apperr.Internal(""))
			return
		}
		respond(c, http.StatusOK, gin.H{
			"expend": ms.TotalExpenditure, // Total spent
			"income": ms.TotalIncome,      // Total earned
		})
	}
}

// parseYearMonth validates year and month query parameters
func parseYearMonth(yearStr, monthStr string) (int, int, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 || year > 2100 {
		return 0, 0, apperr.Validation("year")
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return 0, 0, apperr.Validation("month")
	}
	return year, month, nil
}

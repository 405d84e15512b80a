package ledger

import (
	"budgetbook/internal/apperr" // Error taxonomy
	"budgetbook/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Logging library
	"gorm.io/gorm"               // GORM ORM library
)

// The ledger keeps every asset balance equal to its initial balance plus the
// net signed effect of all live receipts referencing it. Each entry point
// runs the receipt write and the balance adjustment in one database
// transaction; the store's isolation serializes concurrent read-modify-writes
// of the same balance row, so no application-level locking is needed.

// Create inserts the receipt row and applies its balance effect atomically
func Create(db *gorm.DB, r *domain.Receipt) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		// Save the receipt row
		if err := tx.Create(r).Error; err != nil {
			return err // Return error to rollback
		}
		// Apply the balance effect
		return apply(tx, r, +1)
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"user_id":  r.UserID,
			"asset_id": r.AssetID,
			"type":     r.Type,
			"cost":     r.Cost,
			"error":    err.Error(),
		}).Error("Receipt create failed")
		return err
	}
	logrus.WithFields(logrus.Fields{
		"receipt_id": r.ID,
		"user_id":    r.UserID,
		"asset_id":   r.AssetID,
		"type":       r.Type,
		"cost":       r.Cost,
	}).Info("Receipt created")
	return nil
}

// Update replaces a receipt's stored values and moves the balances from the
// old effect to the new one. Reverse and re-apply commit together; a receipt
// edit can never leave a balance in a half-updated state.
func Update(db *gorm.DB, old *domain.Receipt, updated *domain.Receipt) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		// Back out the old balance effect first
		if err := apply(tx, old, -1); err != nil {
			return err // Return error to rollback
		}
		// Overwrite the stored values; a map update also clears nullable columns
		res := tx.Model(&domain.Receipt{}).Where("id = ?", old.ID).Updates(map[string]any{
			"type":             updated.Type,
			"cost":             updated.Cost,
			"content":          updated.Content,
			"location":         updated.Location,
			"transaction_date": updated.TransactionDate,
			"asset_id":         updated.AssetID,
			"trs_asset_id":     updated.TrsAssetID,
			"category_id":      updated.CategoryID,
		})
		if res.Error != nil {
			return res.Error // Return error to rollback
		}
		if res.RowsAffected != 1 {
			return apperr.Internal("receipt row vanished during update")
		}
		// Apply the new balance effect
		return apply(tx, updated, +1)
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"receipt_id": old.ID,
			"user_id":    old.UserID,
			"error":      err.Error(),
		}).Error("Receipt update failed")
		return err
	}
	logrus.WithFields(logrus.Fields{
		"receipt_id": old.ID,
		"user_id":    old.UserID,
		"old_cost":   old.Cost,
		"new_cost":   updated.Cost,
	}).Info("Receipt updated")
	return nil
}

// Delete reverses the receipt's balance effect and removes the row atomically
func Delete(db *gorm.DB, r *domain.Receipt) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		// Back out the balance effect
		if err := apply(tx, r, -1); err != nil {
			return err // Return error to rollback
		}
		// Remove the receipt row
		res := tx.Delete(&domain.Receipt{}, r.ID)
		if res.Error != nil {
			return res.Error // Return error to rollback
		}
		if res.RowsAffected != 1 {
			return apperr.Internal("receipt row vanished during delete")
		}
		return nil // Commit transaction
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"receipt_id": r.ID,
			"user_id":    r.UserID,
			"error":      err.Error(),
		}).Error("Receipt delete failed")
		return err
	}
	logrus.WithFields(logrus.Fields{
		"receipt_id": r.ID,
		"user_id":    r.UserID,
		"asset_id":   r.AssetID,
		"cost":       r.Cost,
	}).Info("Receipt deleted")
	return nil
}

// apply adjusts asset balances for one receipt. sign is +1 to apply the
// stored effect and -1 to reverse it.
func apply(tx *gorm.DB, r *domain.Receipt, sign int64) error {
	switch r.Type {
	case domain.ReceiptExpense:
		// Expense: money leaves the asset
		return adjust(tx, r.AssetID, -sign*r.Cost)
	case domain.ReceiptIncome:
		// Income: money enters the asset
		return adjust(tx, r.AssetID, sign*r.Cost)
	case domain.ReceiptTransfer:
		// Transfer: money moves from the source asset to the destination asset
		if r.TrsAssetID == nil {
			return apperr.Validation("trs_asset_id")
		}
		if err := adjust(tx, r.AssetID, -sign*r.Cost); err != nil {
			return err
		}
		return adjust(tx, *r.TrsAssetID, sign*r.Cost)
	default:
		return apperr.Validation("type")
	}
}

// adjust applies a signed delta to one asset balance. A zero-row update means
// the referenced asset no longer exists; that is a data-integrity fault, not
// a user error, so the whole unit rolls back as Internal.
func adjust(tx *gorm.DB, assetID uint, delta int64) error {
	res := tx.Model(&domain.Asset{}).
		Where("id = ?", assetID).
		Update("balance", gorm.Expr("balance + ?", delta))
	if res.Error != nil {
		return res.Error // Return error to rollback
	}
	if res.RowsAffected != 1 {
		return apperr.Internal("referenced asset missing during balance adjustment")
	}
	return nil
}

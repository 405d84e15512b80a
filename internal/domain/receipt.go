package domain

import "time"

// Receipt types
const (
	ReceiptExpense  = 0 // Money leaving an asset
	ReceiptIncome   = 1 // Money entering an asset
	ReceiptTransfer = 2 // Money moving between two assets
)

// Receipt Model. A receipt is one booked transaction; TrsAssetID is set if
// and only if the receipt is a transfer.
type Receipt struct {
	ID              uint      `gorm:"primaryKey" json:"id"`          // Primary key
	Type            int       `gorm:"not null" json:"type"`          // 0: expense, 1: income, 2: transfer
	Cost            int64     `gorm:"not null" json:"cost"`          // Positive amount in minor units
	Content         string    `gorm:"not null" json:"content"`       // What the money was for
	Location        string    `json:"location"`                      // Where it happened
	TransactionDate time.Time `gorm:"index;not null" json:"transaction_date"` // When it happened
	UserID          uint      `gorm:"index;not null" json:"user_id"` // Owner
	AssetID         uint      `gorm:"index;not null" json:"asset_id"` // Source asset
	TrsAssetID      *uint     `json:"trs_asset_id"`                  // Destination asset for transfers
	CategoryID      *uint     `gorm:"index" json:"category_id"`      // Optional category tag

	CreatedAt int64 `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
	UpdatedAt int64 `gorm:"autoUpdateTime:milli" json:"updated_at"` // Timestamp of last update in milliseconds
}

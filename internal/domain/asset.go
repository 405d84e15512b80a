package domain

// Asset kinds
const (
	AssetAccount = "account" // Bank account
	AssetCard    = "card"    // Card
)

// Asset Model. Balance is held in minor currency units and is only ever
// mutated through the ledger package after creation.
type Asset struct {
	ID      uint   `gorm:"primaryKey" json:"id"`    // Primary key
	Name    string `gorm:"not null" json:"name"`    // Asset name, unique per owner
	Type    string `gorm:"not null" json:"type"`    // account or card
	Balance int64  `gorm:"not null;default:0" json:"balance"` // Running balance in minor units
	UserID  uint   `gorm:"index;not null" json:"user_id"`     // Owner

	CreatedAt int64 `gorm:"autoCreateTime:milli" json:"created_at"` // Timestamp of creation in milliseconds
	UpdatedAt int64 `gorm:"autoUpdateTime:milli" json:"updated_at"` // Timestamp of last update in milliseconds
}

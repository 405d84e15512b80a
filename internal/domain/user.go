package domain

// User Model
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`         // Primary key
	Email    string `gorm:"unique;not null" json:"email"` // Unique email used for login
	Password string `gorm:"not null" json:"-"`            // Hashed password, never serialized
	Name     string `json:"name"`                         // Display name

	// Owned rows are removed together with the user
	Assets     []Asset    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Categories []Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Receipts   []Receipt  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

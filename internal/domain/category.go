package domain

// Category types
const (
	CategoryExpense = 0 // Expense category
	CategoryIncome  = 1 // Income category
)

// MaxCategoryLevel bounds the category tree depth.
const MaxCategoryLevel = 3

// Category Model. Categories form a tree of at most three levels; a child's
// level is always parent.level+1 and its type always matches the parent's.
type Category struct {
	ID       uint   `gorm:"primaryKey" json:"id"`           // Primary key
	ParentID *uint  `gorm:"index" json:"parent_id"`         // Parent category, nil for roots
	Name     string `gorm:"not null" json:"name"`           // Name, unique within (owner, type, parent)
	Type     int    `gorm:"not null" json:"type"`           // 0: expense, 1: income
	Level    int    `gorm:"not null" json:"level"`          // Tree depth, 1..3
	UserID   uint   `gorm:"index;not null" json:"user_id"`  // Owner

	// Parent link cascades; a parent with children cannot be deleted anyway
	Children []Category `gorm:"foreignKey:ParentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

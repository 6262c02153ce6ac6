package domain

// CategoryType says which transactions a category is meant for
type CategoryType string

const (
	CategoryIncome  CategoryType = "INCOME"
	CategoryExpense CategoryType = "EXPENSE"
)

// Valid reports whether t is a known category type
func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

// Category Model
type Category struct {
	Base
	UserID    string       `gorm:"type:char(36);index;not null"` // Foreign key to User
	Name      string       `gorm:"size:100;not null"`            // Display name
	Type      CategoryType `gorm:"size:10;not null"`             // INCOME or EXPENSE
	Icon      string       `gorm:"size:50;not null"`             // Icon identifier
	Color     string       `gorm:"size:20;not null"`             // Display color
	IsDefault bool         `gorm:"not null"`                     // Seeded default category
	IsActive  bool         `gorm:"not null"`                     // Soft on/off flag
}

// OwnerID returns the owning user id
func (c *Category) OwnerID() string { return c.UserID }

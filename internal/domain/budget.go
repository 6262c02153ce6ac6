package domain

import (
	"time"

	"github.com/shopspring/decimal" // Exact money arithmetic
)

// BudgetPeriod is the cadence a budget is planned for
type BudgetPeriod string

const (
	BudgetMonthly   BudgetPeriod = "MONTHLY"
	BudgetQuarterly BudgetPeriod = "QUARTERLY"
	BudgetYearly    BudgetPeriod = "YEARLY"
)

// Valid reports whether p is a known period
func (p BudgetPeriod) Valid() bool {
	switch p {
	case BudgetMonthly, BudgetQuarterly, BudgetYearly:
		return true
	}
	return false
}

// Budget Model
type Budget struct {
	Base
	UserID    string          `gorm:"type:char(36);index;not null"` // Foreign key to User
	Name      string          `gorm:"size:100;not null"`            // Display name
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null"`  // Planned total
	Period    BudgetPeriod    `gorm:"size:10;not null"`             // MONTHLY, QUARTERLY or YEARLY
	StartDate time.Time       `gorm:"not null"`                     // First day covered
	EndDate   time.Time       `gorm:"not null"`                     // Last day covered
	IsActive  bool            `gorm:"not null"`                     // Soft on/off flag
}

// OwnerID returns the owning user id
func (b *Budget) OwnerID() string { return b.UserID }

// BudgetCategory allocates part of a budget to a category. Spent amounts are
// computed from transactions when read, never stored.
type BudgetCategory struct {
	Base
	BudgetID        string          `gorm:"type:char(36);uniqueIndex:idx_budget_category;not null"` // Foreign key to Budget
	CategoryID      string          `gorm:"type:char(36);uniqueIndex:idx_budget_category;index;not null"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(20,4);not null"` // Planned amount for the category
}

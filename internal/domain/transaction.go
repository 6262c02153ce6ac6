package domain

import (
	"time"

	"github.com/shopspring/decimal" // Exact money arithmetic
)

// TransactionType decides how a transaction moves balances
type TransactionType string

const (
	TransactionIncome   TransactionType = "INCOME"
	TransactionExpense  TransactionType = "EXPENSE"
	TransactionTransfer TransactionType = "TRANSFER"
)

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIncome, TransactionExpense, TransactionTransfer:
		return true
	}
	return false
}

// RecurringPattern describes how often a recurring transaction repeats
type RecurringPattern string

const (
	RecurDaily   RecurringPattern = "DAILY"
	RecurWeekly  RecurringPattern = "WEEKLY"
	RecurMonthly RecurringPattern = "MONTHLY"
	RecurYearly  RecurringPattern = "YEARLY"
)

// Valid reports whether p is a known pattern
func (p RecurringPattern) Valid() bool {
	switch p {
	case RecurDaily, RecurWeekly, RecurMonthly, RecurYearly:
		return true
	}
	return false
}

// Transaction Model
type Transaction struct {
	Base
	UserID           string            `gorm:"type:char(36);index;not null"` // Foreign key to User
	AccountID        string            `gorm:"type:char(36);index;not null"` // Account the amount is booked on
	ToAccountID      *string           `gorm:"type:char(36);index"`          // Destination account, TRANSFER only
	CategoryID       string            `gorm:"type:char(36);index;not null"` // Foreign key to Category
	Amount           decimal.Decimal   `gorm:"type:decimal(20,4);not null"`  // Positive amount
	Type             TransactionType   `gorm:"size:10;not null"`             // INCOME, EXPENSE or TRANSFER
	Description      string            `gorm:"size:255;not null"`            // Free text
	TransactionDate  time.Time         `gorm:"index;not null"`               // Booking date
	IsRecurring      bool              `gorm:"not null"`                     // Repeats on RecurringPattern
	RecurringPattern *RecurringPattern `gorm:"size:10"`                      // Nil unless recurring
	Version          int               `gorm:"not null;default:1"`           // Optimistic concurrency guard
}

// OwnerID returns the owning user id
func (t *Transaction) OwnerID() string { return t.UserID }

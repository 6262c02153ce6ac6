package domain

import (
	"time"

	"github.com/shopspring/decimal" // Exact money arithmetic
)

// AccountType classifies a bank account
type AccountType string

const (
	AccountChecking   AccountType = "CHECKING"
	AccountSavings    AccountType = "SAVINGS"
	AccountCreditCard AccountType = "CREDIT_CARD"
	AccountInvestment AccountType = "INVESTMENT"
	AccountOther      AccountType = "OTHER"
)

// Valid reports whether t is a known account type
func (t AccountType) Valid() bool {
	switch t {
	case AccountChecking, AccountSavings, AccountCreditCard, AccountInvestment, AccountOther:
		return true
	}
	return false
}

// Account Model
type Account struct {
	Base
	UserID         string          `gorm:"type:char(36);index;not null"` // Foreign key to User
	Name           string          `gorm:"size:100;not null"`            // Display name
	AccountType    AccountType     `gorm:"size:20;not null"`             // CHECKING, SAVINGS, ...
	BankName       string          `gorm:"size:100;not null"`            // Institution name
	Balance        decimal.Decimal `gorm:"type:decimal(20,4);not null"`  // Running balance, only moved by ledger effects
	OpeningBalance decimal.Decimal `gorm:"type:decimal(20,4);not null"`  // Balance at creation
	Currency       string          `gorm:"size:3;not null"`              // ISO 4217 code
	IsActive       bool            `gorm:"not null"`                     // Soft on/off flag
	LastSync       time.Time       // Last time the account was synced with its bank
}

// OwnerID returns the owning user id
func (a *Account) OwnerID() string { return a.UserID }

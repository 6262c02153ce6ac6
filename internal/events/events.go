// Package events publishes ledger events after balance-changing writes commit.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event types
const (
	TransactionCreated = "transaction.created"
	TransactionUpdated = "transaction.updated"
	TransactionDeleted = "transaction.deleted"
	AccountDeleted     = "account.deleted"
)

// LedgerEvent tells downstream consumers which balances moved
type LedgerEvent struct {
	Type          string    `json:"type"`
	UserID        string    `json:"user_id"`
	TransactionID string    `json:"transaction_id,omitempty"`
	AccountIDs    []string  `json:"account_ids"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEvent stamps an event with the current time
func NewLedgerEvent(typ, userID, transactionID string, accountIDs []string) LedgerEvent {
	if accountIDs == nil {
		accountIDs = []string{}
	}
	return LedgerEvent{
		Type:          typ,
		UserID:        userID,
		TransactionID: transactionID,
		AccountIDs:    accountIDs,
		Timestamp:     time.Now().UTC(),
	}
}

// ToJSON encodes the event
func (e LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Publisher delivers ledger events
type Publisher interface {
	Publish(ctx context.Context, e LedgerEvent) error
}

// Nop discards events
type Nop struct{}

func (Nop) Publish(context.Context, LedgerEvent) error { return nil }

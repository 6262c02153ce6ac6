// Package store persists the finance models with GORM. Balance changes are
// applied as atomic increments in the same database transaction as the
// transaction row they belong to.
package store

import (
	"context"
	"errors"

	"finance_tracker/internal/balance"
	"finance_tracker/internal/domain"

	"gorm.io/gorm"
)

// ErrStale is returned when a guarded write finds the row changed since it was read
var ErrStale = errors.New("store: row changed since read")

// Store wraps the database handle
type Store struct {
	db *gorm.DB
}

// New returns a Store on db
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// first loads one row by id, returning (nil, nil) when it does not exist
func first[T any](ctx context.Context, db *gorm.DB, id string) (*T, error) {
	var out T
	if err := db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // Not found is not an error
		}
		return nil, err
	}
	return &out, nil
}

// applyEffects moves balances with SQL-side increments. A missing account
// aborts the surrounding transaction.
func applyEffects(tx *gorm.DB, effects []balance.Effect) error {
	for _, e := range effects {
		res := tx.Model(&domain.Account{}).
			Where("id = ?", e.AccountID).
			Update("balance", gorm.Expr("balance + ?", e.Delta)) // Atomic increment, no read-modify-write
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("account %s not found", e.AccountID)
		}
	}
	return nil
}

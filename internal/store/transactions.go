package store

import (
	"context"
	"time"

	"finance_tracker/internal/balance"
	"finance_tracker/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateTransaction inserts t and applies its balance effects atomically
func (s *Store) CreateTransaction(ctx context.Context, t *domain.Transaction, effects []balance.Effect) error {
	t.Version = 1 // First version
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(t).Error; err != nil { // Insert the transaction row
			return err
		}
		return applyEffects(tx, effects)
	})
}

// UpdateTransaction writes t over the row at t.Version and applies effects in
// the same database transaction. If the row moved past t.Version in the
// meantime nothing is written and ErrStale is returned.
func (s *Store) UpdateTransaction(ctx context.Context, t *domain.Transaction, effects []balance.Effect) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Transaction{}).
			Where("id = ? AND version = ?", t.ID, t.Version). // Only the version we read
			Updates(map[string]interface{}{
				"account_id":        t.AccountID,
				"to_account_id":     t.ToAccountID,
				"category_id":       t.CategoryID,
				"amount":            t.Amount,
				"type":              t.Type,
				"description":       t.Description,
				"transaction_date":  t.TransactionDate,
				"is_recurring":      t.IsRecurring,
				"recurring_pattern": t.RecurringPattern,
				"version":           gorm.Expr("version + 1"), // Bump for the next writer
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStale // Someone else wrote first
		}
		return applyEffects(tx, effects)
	})
	if err == nil {
		t.Version++
	}
	return err
}

// DeleteTransaction removes t at t.Version with its attachments and applies
// effects. Returns ErrStale if the row changed since it was read.
func (s *Store) DeleteTransaction(ctx context.Context, t *domain.Transaction, effects []balance.Effect) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND version = ?", t.ID, t.Version).Delete(&domain.Transaction{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStale // Someone else wrote first
		}
		if err := tx.Where("transaction_id = ?", t.ID).Delete(&domain.Attachment{}).Error; err != nil { // Attachments go with their transaction
			return err
		}
		return applyEffects(tx, effects)
	})
}

// FindTransaction loads a transaction by id
func (s *Store) FindTransaction(ctx context.Context, id string) (*domain.Transaction, error) {
	return first[domain.Transaction](ctx, s.db, id)
}

// ListTransactions returns a user's transactions, newest first. A non-empty
// accountID narrows to transactions booked on or transferred into that account.
func (s *Store) ListTransactions(ctx context.Context, userID, accountID string) ([]domain.Transaction, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if accountID != "" {
		q = q.Where("account_id = ? OR to_account_id = ?", accountID, accountID)
	}
	var txs []domain.Transaction
	err := q.Order("transaction_date desc").Order("created_at desc").Find(&txs).Error
	return txs, err
}

// ListCategoryTransactions returns the transactions classified under a category
func (s *Store) ListCategoryTransactions(ctx context.Context, categoryID string) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := s.db.WithContext(ctx).Where("category_id = ?", categoryID).Order("transaction_date desc").Find(&txs).Error
	return txs, err
}

// AccountTransactions returns every transaction touching an account regardless of owner
func (s *Store) AccountTransactions(ctx context.Context, accountID string) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	err := s.db.WithContext(ctx).Where("account_id = ? OR to_account_id = ?", accountID, accountID).Find(&txs).Error
	return txs, err
}

// SpentAmount sums a user's expenses in a category booked on the days from
// through to. Both ends are whole UTC days, so a budget ending on 31 March
// counts everything booked on 31 March.
func (s *Store) SpentAmount(ctx context.Context, userID, categoryID string, from, to time.Time) (decimal.Decimal, error) {
	var spent decimal.Decimal
	until := startOfDay(to).AddDate(0, 0, 1) // First instant after the last day
	err := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND category_id = ? AND type = ?", userID, categoryID, domain.TransactionExpense).
		Where("transaction_date >= ? AND transaction_date < ?", startOfDay(from), until).
		Row().Scan(&spent)
	return spent, err
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

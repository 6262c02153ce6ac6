package store

import (
	"context"

	"finance_tracker/internal/balance"
	"finance_tracker/internal/domain"

	"gorm.io/gorm"
)

// update applies fields to the row with id and reloads it. A vanished row
// yields (nil, nil).
func update[T any](ctx context.Context, db *gorm.DB, id string, fields map[string]interface{}) (*T, error) {
	if err := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, err
	}
	return first[T](ctx, db, id)
}

// CreateAccount inserts a
func (s *Store) CreateAccount(ctx context.Context, a *domain.Account) error {
	return s.db.WithContext(ctx).Create(a).Error
}

// FindAccount loads an account by id
func (s *Store) FindAccount(ctx context.Context, id string) (*domain.Account, error) {
	return first[domain.Account](ctx, s.db, id)
}

// ListAccounts returns a user's accounts, oldest first
func (s *Store) ListAccounts(ctx context.Context, userID string) ([]domain.Account, error) {
	var accounts []domain.Account
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at asc").Find(&accounts).Error
	return accounts, err
}

// UpdateAccount changes descriptive fields. Balance is never in fields; it
// only moves through ledger effects.
func (s *Store) UpdateAccount(ctx context.Context, id string, fields map[string]interface{}) (*domain.Account, error) {
	delete(fields, "balance") // Balance moves only through ledger effects
	delete(fields, "opening_balance")
	return update[domain.Account](ctx, s.db, id, fields)
}

// DeleteAccount removes an account with every transaction touching it and
// their attachments. Transfers between this account and another are reverted
// on the other side so that account still matches its live transactions.
// It returns the other accounts whose balance changed.
func (s *Store) DeleteAccount(ctx context.Context, id string) ([]string, error) {
	var touched []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txs []domain.Transaction
		if err := tx.Where("account_id = ? OR to_account_id = ?", id, id).Find(&txs).Error; err != nil {
			return err
		}
		ids := make([]string, 0, len(txs))
		var effects []balance.Effect
		for i := range txs {
			ids = append(ids, txs[i].ID)
			effects = append(effects, balance.Revert(balance.Effects(&txs[i]))...)
		}
		effects = balance.Merge(balance.Without(effects, id)) // The deleted account needs no correction
		if err := applyEffects(tx, effects); err != nil {
			return err
		}
		if len(ids) > 0 {
			if err := tx.Where("transaction_id IN ?", ids).Delete(&domain.Attachment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", ids).Delete(&domain.Transaction{}).Error; err != nil {
				return err
			}
		}
		res := tx.Where("id = ?", id).Delete(&domain.Account{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("account not found")
		}
		touched = balance.Accounts(effects)
		return nil
	})
	return touched, err
}

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"finance_tracker/internal/balance"
	"finance_tracker/internal/domain"
	"finance_tracker/internal/events"
	"finance_tracker/internal/policy"
	"finance_tracker/internal/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// TransactionInput carries the writable transaction fields
type TransactionInput struct {
	UserID           string
	AccountID        string
	ToAccountID      *string // Required for TRANSFER, must be empty otherwise
	CategoryID       string
	Amount           decimal.Decimal
	Type             domain.TransactionType
	Description      string
	TransactionDate  time.Time // Zero means now
	IsRecurring      bool
	RecurringPattern *domain.RecurringPattern
}

// check validates in and confirms that every referenced account and category
// belongs to the caller
func (s *FinanceService) check(ctx context.Context, sess policy.Session, in *TransactionInput) error {
	in.Description = strings.TrimSpace(in.Description)
	if err := checkMoney("amount", in.Amount); err != nil {
		return err
	}
	if !in.Amount.IsPositive() {
		return domain.InvalidInput("amount must be greater than zero")
	}
	if !in.Type.Valid() {
		return domain.InvalidInput("invalid transaction type %q", in.Type)
	}
	if in.RecurringPattern != nil && !in.RecurringPattern.Valid() {
		return domain.InvalidInput("invalid recurring pattern %q", *in.RecurringPattern)
	}
	if !in.IsRecurring {
		in.RecurringPattern = nil // Pattern only applies to recurring transactions
	}
	if in.TransactionDate.IsZero() {
		in.TransactionDate = s.now().UTC() // Default to now
	}
	if in.ToAccountID != nil && *in.ToAccountID == "" {
		in.ToAccountID = nil
	}

	if _, err := s.account(ctx, sess, policy.OpUpdate, in.AccountID); err != nil {
		return err
	}
	if in.Type == domain.TransactionTransfer {
		if in.ToAccountID == nil {
			return domain.InvalidInput("transfer requires a destination account")
		}
		if *in.ToAccountID == in.AccountID {
			return domain.InvalidInput("transfer source and destination must differ")
		}
		if _, err := s.account(ctx, sess, policy.OpUpdate, *in.ToAccountID); err != nil {
			return err
		}
	} else if in.ToAccountID != nil {
		return domain.InvalidInput("only transfers have a destination account")
	}
	if _, err := s.category(ctx, sess, policy.OpRead, in.CategoryID); err != nil {
		return err
	}
	return nil
}

func (in *TransactionInput) applyTo(t *domain.Transaction) {
	t.AccountID = in.AccountID
	t.ToAccountID = in.ToAccountID
	t.CategoryID = in.CategoryID
	t.Amount = in.Amount
	t.Type = in.Type
	t.Description = in.Description
	t.TransactionDate = in.TransactionDate
	t.IsRecurring = in.IsRecurring
	t.RecurringPattern = in.RecurringPattern
}

func (s *FinanceService) transaction(ctx context.Context, sess policy.Session, op policy.Op, id string) (*domain.Transaction, error) {
	t, err := s.store.FindTransaction(ctx, id)
	return policy.Guard(sess, op, "transaction", t, err)
}

// Transaction returns one transaction
func (s *FinanceService) Transaction(ctx context.Context, sess policy.Session, id string) (*domain.Transaction, error) {
	return s.transaction(ctx, sess, policy.OpRead, id)
}

// Transactions lists a user's transactions, optionally narrowed to one account
func (s *FinanceService) Transactions(ctx context.Context, sess policy.Session, userID, accountID string) ([]domain.Transaction, error) {
	if err := policy.Authorize(sess, policy.OpList, userID); err != nil {
		return nil, err
	}
	if accountID != "" {
		if _, err := s.account(ctx, sess, policy.OpList, accountID); err != nil {
			return nil, err
		}
	}
	return s.store.ListTransactions(ctx, userID, accountID)
}

// CategoryTransactions lists the transactions classified under a category
func (s *FinanceService) CategoryTransactions(ctx context.Context, sess policy.Session, categoryID string) ([]domain.Transaction, error) {
	if _, err := s.category(ctx, sess, policy.OpList, categoryID); err != nil {
		return nil, err
	}
	return s.store.ListCategoryTransactions(ctx, categoryID)
}

// CreateTransaction records a transaction and moves the balances it affects
// in the same database transaction
func (s *FinanceService) CreateTransaction(ctx context.Context, sess policy.Session, in TransactionInput) (*domain.Transaction, error) {
	if err := policy.Authorize(sess, policy.OpCreate, in.UserID); err != nil {
		return nil, err
	}
	if err := s.check(ctx, sess, &in); err != nil {
		return nil, err
	}
	t := &domain.Transaction{UserID: in.UserID}
	in.applyTo(t)
	effects := balance.Plan(nil, t)
	if err := s.store.CreateTransaction(ctx, t, effects); err != nil {
		return nil, err
	}
	s.committed(ctx, events.TransactionCreated, t, effects)
	return t, nil
}

// UpdateTransaction replaces a transaction, reverting its old balance effects
// and applying the new ones. A concurrent write to the same transaction makes
// it re-read and retry.
func (s *FinanceService) UpdateTransaction(ctx context.Context, sess policy.Session, id string, in TransactionInput) (*domain.Transaction, error) {
	if err := forbidReassign(sess, policy.OpUpdate, in.UserID); err != nil {
		return nil, err
	}
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		prev, err := s.transaction(ctx, sess, policy.OpUpdate, id)
		if err != nil {
			return nil, err
		}
		in := in
		if err := s.check(ctx, sess, &in); err != nil {
			return nil, err
		}
		next := *prev
		in.applyTo(&next)
		effects := balance.Plan(prev, &next) // Revert old, apply new
		err = s.store.UpdateTransaction(ctx, &next, effects)
		if errors.Is(err, store.ErrStale) {
			continue // Re-read and try again
		}
		if err != nil {
			return nil, err
		}
		s.committed(ctx, events.TransactionUpdated, &next, effects)
		return &next, nil
	}
	return nil, domain.Conflict("transaction was modified concurrently, try again")
}

// DeleteTransaction removes a transaction with its attachments and reverts
// its balance effects
func (s *FinanceService) DeleteTransaction(ctx context.Context, sess policy.Session, id string) (bool, error) {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		prev, err := s.transaction(ctx, sess, policy.OpDelete, id)
		if err != nil {
			return false, err
		}
		effects := balance.Plan(prev, nil) // Revert only
		err = s.store.DeleteTransaction(ctx, prev, effects)
		if errors.Is(err, store.ErrStale) {
			continue // Re-read and try again
		}
		if err != nil {
			return false, err
		}
		s.committed(ctx, events.TransactionDeleted, prev, effects)
		return true, nil
	}
	return false, domain.Conflict("transaction was modified concurrently, try again")
}

// committed runs the after-commit side effects of a transaction write
func (s *FinanceService) committed(ctx context.Context, typ string, t *domain.Transaction, effects []balance.Effect) {
	accounts := balance.Accounts(effects)
	s.invalidate(ctx, t.UserID, accounts...)
	s.publish(ctx, events.NewLedgerEvent(typ, t.UserID, t.ID, accounts))
	logrus.WithFields(logrus.Fields{
		"user_id":        t.UserID,
		"transaction_id": t.ID,
		"account_id":     t.AccountID,
		"amount":         t.Amount.String(),
		"type":           t.Type,
		"event":          typ,
	}).Info("Ledger updated")
}

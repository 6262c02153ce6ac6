package service

import (
	"context"
	"strings"

	"finance_tracker/internal/balance"
	"finance_tracker/internal/domain"
	"finance_tracker/internal/events"
	"finance_tracker/internal/policy"
	"finance_tracker/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// AccountInput carries the writable account fields. Balance only seeds a new
// account; afterwards it moves through transactions alone.
type AccountInput struct {
	UserID      string
	Name        string
	AccountType domain.AccountType
	BankName    string
	Balance     decimal.Decimal
	Currency    string
	IsActive    *bool
}

func (in *AccountInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.BankName = strings.TrimSpace(in.BankName)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	if in.Name == "" {
		return domain.InvalidInput("account name is required")
	}
	if !in.AccountType.Valid() {
		return domain.InvalidInput("invalid account type %q", in.AccountType)
	}
	if !currencyRegexp.MatchString(in.Currency) {
		return domain.InvalidInput("currency must be a 3 letter ISO code")
	}
	return nil
}

func (s *FinanceService) account(ctx context.Context, sess policy.Session, op policy.Op, id string) (*domain.Account, error) {
	a, err := s.store.FindAccount(ctx, id)
	return policy.Guard(sess, op, "account", a, err)
}

// Account returns one account, served from cache when possible
func (s *FinanceService) Account(ctx context.Context, sess policy.Session, id string) (*domain.Account, error) {
	if !sess.Authenticated() {
		return nil, domain.Unauthenticated("not authenticated")
	}
	var cached domain.Account
	if found, err := utils.GetCache(ctx, s.rdb, accountKey(id), &cached); err == nil && found {
		return policy.Guard(sess, policy.OpRead, "account", &cached, nil)
	}
	a, err := s.account(ctx, sess, policy.OpRead, id)
	if err != nil {
		return nil, err
	}
	if err := utils.SetCache(ctx, s.rdb, accountKey(id), a, s.cacheTTL); err != nil {
		logrus.WithError(err).Warn("Failed to cache account")
	}
	return a, nil
}

// Accounts lists a user's accounts
func (s *FinanceService) Accounts(ctx context.Context, sess policy.Session, userID string) ([]domain.Account, error) {
	if err := policy.Authorize(sess, policy.OpList, userID); err != nil {
		return nil, err
	}
	var cached []domain.Account
	if found, err := utils.GetCache(ctx, s.rdb, accountsKey(userID), &cached); err == nil && found {
		return cached, nil
	}
	accounts, err := s.store.ListAccounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := utils.SetCache(ctx, s.rdb, accountsKey(userID), accounts, s.cacheTTL); err != nil {
		logrus.WithError(err).Warn("Failed to cache accounts")
	}
	return accounts, nil
}

// CreateAccount opens an account with in.Balance as its opening balance
func (s *FinanceService) CreateAccount(ctx context.Context, sess policy.Session, in AccountInput) (*domain.Account, error) {
	if err := policy.Authorize(sess, policy.OpCreate, in.UserID); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if err := checkMoney("balance", in.Balance); err != nil {
		return nil, err
	}
	a := &domain.Account{
		UserID:         in.UserID,
		Name:           in.Name,
		AccountType:    in.AccountType,
		BankName:       in.BankName,
		Balance:        in.Balance,
		OpeningBalance: in.Balance, // Kept for RecomputeBalance
		Currency:       in.Currency,
		IsActive:       in.IsActive == nil || *in.IsActive,
		LastSync:       s.now().UTC(),
	}
	if err := s.store.CreateAccount(ctx, a); err != nil {
		return nil, err
	}
	s.invalidate(ctx, a.UserID)
	logrus.WithFields(logrus.Fields{
		"user_id":    a.UserID,
		"account_id": a.ID,
		"balance":    a.Balance.String(),
	}).Info("Account created")
	return a, nil
}

// UpdateAccount replaces the descriptive fields of an account. in.Balance is
// ignored.
func (s *FinanceService) UpdateAccount(ctx context.Context, sess policy.Session, id string, in AccountInput) (*domain.Account, error) {
	a, err := s.account(ctx, sess, policy.OpUpdate, id)
	if err != nil {
		return nil, err
	}
	if err := forbidReassign(sess, policy.OpUpdate, in.UserID); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{
		"name":         in.Name,
		"account_type": in.AccountType,
		"bank_name":    in.BankName,
		"currency":     in.Currency,
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	updated, err := s.store.UpdateAccount(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, domain.NotFound("account not found")
	}
	s.invalidate(ctx, a.UserID, id)
	return updated, nil
}

// DeleteAccount removes an account with all its transactions and their
// attachments
func (s *FinanceService) DeleteAccount(ctx context.Context, sess policy.Session, id string) (bool, error) {
	a, err := s.account(ctx, sess, policy.OpDelete, id)
	if err != nil {
		return false, err
	}
	touched, err := s.store.DeleteAccount(ctx, id)
	if err != nil {
		return false, err
	}
	s.invalidate(ctx, a.UserID, append([]string{id}, touched...)...)
	s.publish(ctx, events.NewLedgerEvent(events.AccountDeleted, a.UserID, "", append([]string{id}, touched...)))
	logrus.WithFields(logrus.Fields{
		"user_id":    a.UserID,
		"account_id": id,
		"touched":    touched,
	}).Info("Account deleted")
	return true, nil
}

// RecomputeBalance replays an account's live transactions over its opening
// balance. A healthy ledger returns the stored balance.
func (s *FinanceService) RecomputeBalance(ctx context.Context, sess policy.Session, id string) (decimal.Decimal, error) {
	a, err := s.account(ctx, sess, policy.OpRead, id)
	if err != nil {
		return decimal.Zero, err
	}
	txs, err := s.store.AccountTransactions(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return balance.Replay(id, a.OpeningBalance, txs), nil
}

package service

import (
	"context"
	"time"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/events"
	"finance_tracker/internal/policy"
	"finance_tracker/internal/store"
	"finance_tracker/internal/utils"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	maxWriteAttempts = 3 // Optimistic retries for transaction writes
	moneyPlaces      = 4 // Scale of the decimal(20,4) money columns
)

// FinanceService owns accounts, transactions, categories, budgets and
// attachments
type FinanceService struct {
	store     *store.Store
	rdb       *redis.Client // Optional account cache
	cacheTTL  time.Duration
	publisher events.Publisher
	now       func() time.Time
}

// NewFinanceService returns a FinanceService. rdb may be nil to disable the
// account cache and publisher may be nil to drop ledger events.
func NewFinanceService(st *store.Store, rdb *redis.Client, cacheTTL time.Duration, publisher events.Publisher) *FinanceService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &FinanceService{store: st, rdb: rdb, cacheTTL: cacheTTL, publisher: publisher, now: time.Now}
}

// User returns a user by id; callers may only read themselves
func (s *FinanceService) User(ctx context.Context, sess policy.Session, id string) (*domain.User, error) {
	u, err := s.store.FindUser(ctx, id)
	return policy.Guard(sess, policy.OpRead, "user", u, err)
}

func accountKey(id string) string      { return "account:" + id }
func accountsKey(userID string) string { return "accounts:user:" + userID }

// invalidate drops cached account data for userID and the given accounts
func (s *FinanceService) invalidate(ctx context.Context, userID string, accountIDs ...string) {
	keys := []string{accountsKey(userID)}
	for _, id := range accountIDs {
		keys = append(keys, accountKey(id))
	}
	if err := utils.DeleteCache(ctx, s.rdb, keys...); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to invalidate account cache")
	}
}

// publish delivers e and logs failures; the write it reports has committed
func (s *FinanceService) publish(ctx context.Context, e events.LedgerEvent) {
	if err := s.publisher.Publish(ctx, e); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"type":    e.Type,
			"user_id": e.UserID,
		}).Warn("Failed to publish ledger event")
	}
}

// forbidReassign rejects inputs that try to move a resource to another owner
func forbidReassign(sess policy.Session, op policy.Op, userID string) error {
	if userID == "" {
		return nil
	}
	return policy.Authorize(sess, op, userID)
}

// checkMoney rejects amounts the money columns would round
func checkMoney(field string, d decimal.Decimal) error {
	if !d.Equal(d.Truncate(moneyPlaces)) {
		return domain.InvalidInput("%s must have at most %d decimal places", field, moneyPlaces)
	}
	return nil
}

// Package balance computes how transactions move account balances.
//
// Every transaction contributes a fixed set of signed effects: INCOME adds its
// amount to the account, EXPENSE subtracts it, and TRANSFER subtracts it from
// the source account while adding it to the destination. An account balance is
// its opening balance plus the effects of its live transactions.
package balance

import (
	"sort"

	"finance_tracker/internal/domain"

	"github.com/shopspring/decimal"
)

// Effect is a signed change to one account's balance
type Effect struct {
	AccountID string          // Account whose balance moves
	Delta     decimal.Decimal // Signed amount added to the balance
}

// Effects returns the balance effects of t. A nil transaction has none.
func Effects(t *domain.Transaction) []Effect {
	if t == nil {
		return nil
	}
	switch t.Type {
	case domain.TransactionIncome:
		return []Effect{{AccountID: t.AccountID, Delta: t.Amount}} // Credit the account
	case domain.TransactionExpense:
		return []Effect{{AccountID: t.AccountID, Delta: t.Amount.Neg()}} // Debit the account
	case domain.TransactionTransfer:
		if t.ToAccountID == nil {
			return nil
		}
		return []Effect{
			{AccountID: t.AccountID, Delta: t.Amount.Neg()}, // Debit the source
			{AccountID: *t.ToAccountID, Delta: t.Amount}, // Credit the destination
		}
	}
	return nil
}

// Revert returns the inverse of effects
func Revert(effects []Effect) []Effect {
	out := make([]Effect, len(effects))
	for i, e := range effects {
		out[i] = Effect{AccountID: e.AccountID, Delta: e.Delta.Neg()}
	}
	return out
}

// Plan returns the net effects of replacing prev with next. Pass nil prev for a
// create and nil next for a delete. The result has one entry per touched
// account, sorted by account id, with zero deltas dropped; applying accounts in
// a fixed order keeps concurrent writers from deadlocking on row locks.
func Plan(prev, next *domain.Transaction) []Effect {
	return Merge(append(Revert(Effects(prev)), Effects(next)...))
}

// Merge folds effects into one entry per account
func Merge(effects []Effect) []Effect {
	sums := make(map[string]decimal.Decimal, len(effects))
	for _, e := range effects {
		sums[e.AccountID] = sums[e.AccountID].Add(e.Delta)
	}
	out := make([]Effect, 0, len(sums))
	for id, d := range sums {
		if d.IsZero() {
			continue
		}
		out = append(out, Effect{AccountID: id, Delta: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountID < out[j].AccountID }) // Fixed lock order
	return out
}

// Without drops effects on the given account
func Without(effects []Effect, accountID string) []Effect {
	out := effects[:0:0] // Fresh backing array
	for _, e := range effects {
		if e.AccountID != accountID {
			out = append(out, e)
		}
	}
	return out
}

// Accounts lists the account ids touched by effects
func Accounts(effects []Effect) []string {
	ids := make([]string, 0, len(effects))
	for _, e := range effects {
		ids = append(ids, e.AccountID)
	}
	return ids
}

// Apply adds effects to balances in place
func Apply(balances map[string]decimal.Decimal, effects []Effect) {
	for _, e := range effects {
		balances[e.AccountID] = balances[e.AccountID].Add(e.Delta)
	}
}

// Replay computes an account's balance from its opening balance and the
// transactions that touch it
func Replay(accountID string, opening decimal.Decimal, txs []domain.Transaction) decimal.Decimal {
	total := opening
	for i := range txs {
		for _, e := range Effects(&txs[i]) {
			if e.AccountID == accountID {
				total = total.Add(e.Delta)
			}
		}
	}
	return total
}

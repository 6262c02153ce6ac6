package balance

import (
	"fmt"
	"math/rand"
	"testing"

	"finance_tracker/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tx(id, account string, typ domain.TransactionType, amount string) *domain.Transaction {
	t := &domain.Transaction{AccountID: account, Type: typ, Amount: money(amount)}
	t.ID = id
	return t
}

func transfer(id, from, to, amount string) *domain.Transaction {
	t := tx(id, from, domain.TransactionTransfer, amount)
	t.ToAccountID = &to
	return t
}

func TestEffects(t *testing.T) {
	tests := []struct {
		name string
		tx   *domain.Transaction
		want []Effect
	}{
		{"income adds", tx("1", "a", domain.TransactionIncome, "30"), []Effect{{"a", money("30")}}},
		{"expense subtracts", tx("1", "a", domain.TransactionExpense, "30"), []Effect{{"a", money("-30")}}},
		{"transfer moves", transfer("1", "a", "b", "12.5"), []Effect{{"a", money("-12.5")}, {"b", money("12.5")}}},
		{"transfer without destination", tx("1", "a", domain.TransactionTransfer, "5"), nil},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Effects(tt.tx)
			require.Len(t, got, len(tt.want))
			for i := range got {
				assert.Equal(t, tt.want[i].AccountID, got[i].AccountID)
				assert.True(t, tt.want[i].Delta.Equal(got[i].Delta), "delta %s != %s", got[i].Delta, tt.want[i].Delta)
			}
		})
	}
}

func TestPlanTypeChange(t *testing.T) {
	prev := tx("1", "a", domain.TransactionExpense, "30")
	next := tx("1", "a", domain.TransactionIncome, "30")

	plan := Plan(prev, next)
	require.Len(t, plan, 1)
	assert.Equal(t, "a", plan[0].AccountID)
	assert.True(t, money("60").Equal(plan[0].Delta))
}

func TestPlanAccountMove(t *testing.T) {
	prev := tx("1", "a", domain.TransactionExpense, "10")
	next := tx("1", "b", domain.TransactionExpense, "15")

	plan := Plan(prev, next)
	require.Len(t, plan, 2)
	assert.Equal(t, "a", plan[0].AccountID)
	assert.True(t, money("10").Equal(plan[0].Delta))
	assert.Equal(t, "b", plan[1].AccountID)
	assert.True(t, money("-15").Equal(plan[1].Delta))
}

func TestPlanNoop(t *testing.T) {
	prev := tx("1", "a", domain.TransactionIncome, "10")
	assert.Empty(t, Plan(prev, prev))
}

func TestWithout(t *testing.T) {
	effects := Effects(transfer("1", "a", "b", "10"))
	rest := Without(effects, "a")
	require.Len(t, rest, 1)
	assert.Equal(t, "b", rest[0].AccountID)
	assert.Len(t, effects, 2)
}

func TestScenario(t *testing.T) {
	balances := map[string]decimal.Decimal{"acc": money("100")}

	expense := tx("t1", "acc", domain.TransactionExpense, "30")
	Apply(balances, Plan(nil, expense))
	assert.True(t, money("70").Equal(balances["acc"]))

	income := tx("t1", "acc", domain.TransactionIncome, "30")
	Apply(balances, Plan(expense, income))
	assert.True(t, money("130").Equal(balances["acc"]))

	Apply(balances, Plan(income, nil))
	assert.True(t, money("100").Equal(balances["acc"]))
}

// Random create/update/delete sequences must leave every balance equal to the
// replay of the surviving transactions.
func TestRandomSequencesMatchReplay(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	accounts := []string{"a", "b", "c"}
	types := []domain.TransactionType{domain.TransactionIncome, domain.TransactionExpense, domain.TransactionTransfer}

	randomTx := func(id string) *domain.Transaction {
		from := accounts[rng.Intn(len(accounts))]
		typ := types[rng.Intn(len(types))]
		amount := decimal.New(int64(rng.Intn(10000)+1), -2)
		t := &domain.Transaction{AccountID: from, Type: typ, Amount: amount}
		t.ID = id
		if typ == domain.TransactionTransfer {
			to := accounts[(indexOf(accounts, from)+1+rng.Intn(len(accounts)-1))%len(accounts)]
			t.ToAccountID = &to
		}
		return t
	}

	for round := 0; round < 50; round++ {
		opening := map[string]decimal.Decimal{"a": money("100"), "b": money("0"), "c": money("-20.5")}
		balances := map[string]decimal.Decimal{}
		for k, v := range opening {
			balances[k] = v
		}
		live := map[string]*domain.Transaction{}
		next := 0

		for step := 0; step < 200; step++ {
			switch op := rng.Intn(3); {
			case op == 0 || len(live) == 0:
				next++
				id := fmt.Sprintf("t%d", next)
				t := randomTx(id)
				Apply(balances, Plan(nil, t))
				live[id] = t
			case op == 1:
				id := anyKey(rng, live)
				updated := randomTx(id)
				Apply(balances, Plan(live[id], updated))
				live[id] = updated
			default:
				id := anyKey(rng, live)
				Apply(balances, Plan(live[id], nil))
				delete(live, id)
			}
		}

		txs := make([]domain.Transaction, 0, len(live))
		for _, t := range live {
			txs = append(txs, *t)
		}
		for _, acc := range accounts {
			want := Replay(acc, opening[acc], txs)
			assert.True(t, want.Equal(balances[acc]), "round %d account %s: replay %s, running %s", round, acc, want, balances[acc])
		}
	}
}

func indexOf(xs []string, x string) int {
	for i, v := range xs {
		if v == x {
			return i
		}
	}
	return -1
}

func anyKey(rng *rand.Rand, m map[string]*domain.Transaction) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys[rng.Intn(len(keys))]
}

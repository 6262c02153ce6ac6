package store

import (
	"context"
	"testing"
	"time"

	"finance_tracker/internal/balance"
	"finance_tracker/internal/db"
	"finance_tracker/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// StoreTestSuite runs persistence tests against a fresh in-memory database
type StoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *Store
	user  *domain.User
	cat   *domain.Category
}

func (suite *StoreTestSuite) SetupTest() {
	gdb, err := db.OpenMemory()
	require.NoError(suite.T(), err, "failed to create test database")
	suite.ctx = context.Background()
	suite.store = New(gdb)

	suite.user = &domain.User{Email: "owner@example.com", PasswordHash: "x", FirstName: "O", LastName: "W", Currency: "USD"}
	require.NoError(suite.T(), suite.store.CreateUser(suite.ctx, suite.user))
	suite.cat = &domain.Category{UserID: suite.user.ID, Name: "Food", Type: domain.CategoryExpense, Icon: "i", Color: "c", IsActive: true}
	require.NoError(suite.T(), suite.store.CreateCategory(suite.ctx, suite.cat))
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (suite *StoreTestSuite) account(opening string) *domain.Account {
	a := &domain.Account{
		UserID: suite.user.ID, Name: "Main", AccountType: domain.AccountChecking, BankName: "Bank",
		Balance: money(opening), OpeningBalance: money(opening), Currency: "USD", IsActive: true,
	}
	require.NoError(suite.T(), suite.store.CreateAccount(suite.ctx, a))
	return a
}

func (suite *StoreTestSuite) newTx(accountID string, typ domain.TransactionType, amount string) *domain.Transaction {
	return &domain.Transaction{
		UserID: suite.user.ID, AccountID: accountID, CategoryID: suite.cat.ID, Amount: money(amount),
		Type: typ, Description: "test", TransactionDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}
}

func (suite *StoreTestSuite) balanceOf(id string) decimal.Decimal {
	a, err := suite.store.FindAccount(suite.ctx, id)
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), a)
	return a.Balance
}

func (suite *StoreTestSuite) assertBalance(want string, id string) {
	got := suite.balanceOf(id)
	assert.True(suite.T(), money(want).Equal(got), "balance: want %s, got %s", want, got)
}

func (suite *StoreTestSuite) TestCreateTransactionAppliesEffects() {
	acc := suite.account("100")
	t := suite.newTx(acc.ID, domain.TransactionExpense, "30")

	require.NoError(suite.T(), suite.store.CreateTransaction(suite.ctx, t, balance.Plan(nil, t)))
	assert.Equal(suite.T(), 1, t.Version)
	suite.assertBalance("70", acc.ID)
}

func (suite *StoreTestSuite) TestCreateTransactionRollsBackWhenAccountMissing() {
	t := suite.newTx(uuid.NewString(), domain.TransactionIncome, "10")

	err := suite.store.CreateTransaction(suite.ctx, t, balance.Plan(nil, t))
	assert.ErrorIs(suite.T(), err, domain.ErrNotFound)

	found, err := suite.store.FindTransaction(suite.ctx, t.ID)
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), found, "transaction row must not survive a failed balance write")
}

func (suite *StoreTestSuite) TestUpdateTransactionGuardsVersion() {
	acc := suite.account("100")
	t := suite.newTx(acc.ID, domain.TransactionExpense, "30")
	require.NoError(suite.T(), suite.store.CreateTransaction(suite.ctx, t, balance.Plan(nil, t)))

	prev := *t
	next := *t
	next.Type = domain.TransactionIncome
	require.NoError(suite.T(), suite.store.UpdateTransaction(suite.ctx, &next, balance.Plan(&prev, &next)))
	assert.Equal(suite.T(), 2, next.Version)
	suite.assertBalance("130", acc.ID)

	// A writer still holding version 1 must not apply its plan
	stale := prev
	stale.Amount = money("50")
	err := suite.store.UpdateTransaction(suite.ctx, &stale, balance.Plan(&prev, &stale))
	assert.ErrorIs(suite.T(), err, ErrStale)
	suite.assertBalance("130", acc.ID)

	err = suite.store.DeleteTransaction(suite.ctx, &prev, balance.Plan(&prev, nil))
	assert.ErrorIs(suite.T(), err, ErrStale)

	require.NoError(suite.T(), suite.store.DeleteTransaction(suite.ctx, &next, balance.Plan(&next, nil)))
	suite.assertBalance("100", acc.ID)
}

func (suite *StoreTestSuite) TestDeleteTransactionRemovesAttachments() {
	acc := suite.account("0")
	t := suite.newTx(acc.ID, domain.TransactionIncome, "5")
	require.NoError(suite.T(), suite.store.CreateTransaction(suite.ctx, t, balance.Plan(nil, t)))
	require.NoError(suite.T(), suite.store.CreateAttachment(suite.ctx, &domain.Attachment{
		TransactionID: t.ID, FileName: "r.pdf", FileType: "application/pdf", FileURL: "https://files/r.pdf", FileSize: 10, UploadedAt: time.Now(),
	}))

	require.NoError(suite.T(), suite.store.DeleteTransaction(suite.ctx, t, balance.Plan(t, nil)))
	count, err := suite.store.CountAttachments(suite.ctx, t.ID)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), count)
}

func (suite *StoreTestSuite) TestDeleteAccountCascades() {
	a := suite.account("100")
	b := suite.account("0")

	toB := suite.newTx(a.ID, domain.TransactionTransfer, "40")
	toB.ToAccountID = &b.ID
	require.NoError(suite.T(), suite.store.CreateTransaction(suite.ctx, toB, balance.Plan(nil, toB)))
	spend := suite.newTx(b.ID, domain.TransactionExpense, "15")
	require.NoError(suite.T(), suite.store.CreateTransaction(suite.ctx, spend, balance.Plan(nil, spend)))
	require.NoError(suite.T(), suite.store.CreateAttachment(suite.ctx, &domain.Attachment{
		TransactionID: spend.ID, FileName: "r.png", FileType: "image/png", FileURL: "https://files/r.png", FileSize: 1, UploadedAt: time.Now(),
	}))
	suite.assertBalance("60", a.ID)
	suite.assertBalance("25", b.ID)

	touched, err := suite.store.DeleteAccount(suite.ctx, b.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{a.ID}, touched)

	suite.assertBalance("100", a.ID)
	gone, err := suite.store.FindAccount(suite.ctx, b.ID)
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), gone)

	left, err := suite.store.AccountTransactions(suite.ctx, b.ID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), left)
	count, err := suite.store.CountAttachments(suite.ctx, spend.ID)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), count)
}

func (suite *StoreTestSuite) TestDeleteCategory() {
	acc := suite.account("0")
	budget := &domain.Budget{UserID: suite.user.ID, Name: "B", Amount: money("100"), Period: domain.BudgetMonthly,
		StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), IsActive: true}
	require.NoError(suite.T(), suite.store.CreateBudget(suite.ctx, budget))
	_, err := suite.store.UpsertAllocation(suite.ctx, budget.ID, suite.cat.ID, money("50"))
	require.NoError(suite.T(), err)

	t := suite.newTx(acc.ID, domain.TransactionExpense, "5")
	require.NoError(suite.T(), suite.store.CreateTransaction(suite.ctx, t, balance.Plan(nil, t)))

	err = suite.store.DeleteCategory(suite.ctx, suite.cat.ID)
	assert.ErrorIs(suite.T(), err, domain.ErrConflict)

	require.NoError(suite.T(), suite.store.DeleteTransaction(suite.ctx, t, balance.Plan(t, nil)))
	require.NoError(suite.T(), suite.store.DeleteCategory(suite.ctx, suite.cat.ID))

	count, err := suite.store.CountCategoryAllocations(suite.ctx, suite.cat.ID)
	require.NoError(suite.T(), err)
	assert.Zero(suite.T(), count)
}

func (suite *StoreTestSuite) TestUpsertAllocation() {
	budget := &domain.Budget{UserID: suite.user.ID, Name: "B", Amount: money("100"), Period: domain.BudgetYearly,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), EndDate: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), IsActive: true}
	require.NoError(suite.T(), suite.store.CreateBudget(suite.ctx, budget))

	first, err := suite.store.UpsertAllocation(suite.ctx, budget.ID, suite.cat.ID, money("10"))
	require.NoError(suite.T(), err)
	second, err := suite.store.UpsertAllocation(suite.ctx, budget.ID, suite.cat.ID, money("25"))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), first.ID, second.ID)

	rows, err := suite.store.ListAllocations(suite.ctx, budget.ID)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), rows, 1)
	assert.True(suite.T(), money("25").Equal(rows[0].AllocatedAmount))

	require.NoError(suite.T(), suite.store.DeleteBudget(suite.ctx, budget.ID))
	rows, err = suite.store.ListAllocations(suite.ctx, budget.ID)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), rows)
}

func (suite *StoreTestSuite) TestSpentAmount() {
	acc := suite.account("0")
	inRange := suite.newTx(acc.ID, domain.TransactionExpense, "12.5")
	income := suite.newTx(acc.ID, domain.TransactionIncome, "99")
	outOfRange := suite.newTx(acc.ID, domain.TransactionExpense, "7")
	outOfRange.TransactionDate = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for _, t := range []*domain.Transaction{inRange, income, outOfRange} {
		require.NoError(suite.T(), suite.store.CreateTransaction(suite.ctx, t, balance.Plan(nil, t)))
	}

	spent, err := suite.store.SpentAmount(suite.ctx, suite.user.ID, suite.cat.ID,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC))
	require.NoError(suite.T(), err)
	assert.True(suite.T(), money("12.5").Equal(spent), "spent %s", spent)
}

func (suite *StoreTestSuite) TestSpentAmountCoversWholeLastDay() {
	acc := suite.account("0")
	lastDay := suite.newTx(acc.ID, domain.TransactionExpense, "30")
	lastDay.TransactionDate = time.Date(2024, 3, 31, 14, 0, 0, 0, time.UTC)
	firstDay := suite.newTx(acc.ID, domain.TransactionExpense, "5")
	firstDay.TransactionDate = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	nextDay := suite.newTx(acc.ID, domain.TransactionExpense, "7")
	nextDay.TransactionDate = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	for _, t := range []*domain.Transaction{lastDay, firstDay, nextDay} {
		require.NoError(suite.T(), suite.store.CreateTransaction(suite.ctx, t, balance.Plan(nil, t)))
	}

	// Dates as parsed from YYYY-MM-DD, both at midnight
	spent, err := suite.store.SpentAmount(suite.ctx, suite.user.ID, suite.cat.ID,
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(suite.T(), err)
	assert.True(suite.T(), money("35").Equal(spent), "spent %s", spent)
}

func (suite *StoreTestSuite) TestRotateSessionOnlyOnce() {
	now := time.Now().UTC()
	root := &domain.Session{UserID: suite.user.ID, FamilyID: uuid.NewString(), TokenHash: "h1", ExpiresAt: now.Add(time.Hour)}
	require.NoError(suite.T(), suite.store.CreateSession(suite.ctx, root))

	child := &domain.Session{UserID: suite.user.ID, FamilyID: root.FamilyID, ParentID: &root.ID, TokenHash: "h2", ExpiresAt: now.Add(time.Hour)}
	require.NoError(suite.T(), suite.store.RotateSession(suite.ctx, root, child, now))

	again := &domain.Session{UserID: suite.user.ID, FamilyID: root.FamilyID, ParentID: &root.ID, TokenHash: "h3", ExpiresAt: now.Add(time.Hour)}
	assert.ErrorIs(suite.T(), suite.store.RotateSession(suite.ctx, root, again, now), ErrStale)

	found, err := suite.store.FindSessionByTokenHash(suite.ctx, "h3")
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), found)

	revoked, err := suite.store.RevokeFamily(suite.ctx, root.FamilyID, now)
	require.NoError(suite.T(), err)
	assert.EqualValues(suite.T(), 1, revoked)

	active, err := suite.store.ListActiveSessions(suite.ctx, suite.user.ID, now)
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), active)
}

func TestFindUserByEmailMissing(t *testing.T) {
	gdb, err := db.OpenMemory()
	require.NoError(t, err)
	u, err := New(gdb).FindUserByEmail(context.Background(), "nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, u)
}

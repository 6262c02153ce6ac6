package graph

import (
	"context"
	"testing"
	"time"

	"finance_tracker/internal/db"
	"finance_tracker/internal/policy"
	"finance_tracker/internal/service"
	"finance_tracker/internal/store"

	"github.com/graphql-go/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// GraphTestSuite executes GraphQL documents against real services
type GraphTestSuite struct {
	suite.Suite
	gdb    *gorm.DB
	schema *Schema
	alice  policy.Session
	bob    policy.Session
}

func (suite *GraphTestSuite) SetupTest() {
	gdb, err := db.OpenMemory()
	require.NoError(suite.T(), err)
	suite.gdb = gdb
	st := store.New(gdb)
	auth := service.NewAuthService(st, service.AuthConfig{
		JWTSecret: "s", JWTIssuer: "finance_tracker", AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour,
		PasswordPolicy: service.PasswordStrict, HashPolicy: service.HashSalted, BcryptCost: bcrypt.MinCost,
	})
	fin := service.NewFinanceService(st, nil, time.Minute, nil)
	suite.schema, err = New(auth, fin)
	require.NoError(suite.T(), err)

	suite.alice = suite.createUser("alice@example.com")
	suite.bob = suite.createUser("bob@example.com")
}

func TestGraphTestSuite(t *testing.T) {
	suite.Run(t, new(GraphTestSuite))
}

func (suite *GraphTestSuite) exec(sess policy.Session, query string, vars map[string]interface{}) *graphql.Result {
	ctx := policy.WithSession(context.Background(), sess)
	return suite.schema.Execute(ctx, Request{Query: query, Variables: vars})
}

func (suite *GraphTestSuite) mustExec(sess policy.Session, query string, vars map[string]interface{}) map[string]interface{} {
	res := suite.exec(sess, query, vars)
	require.Empty(suite.T(), res.Errors, "query errors")
	return res.Data.(map[string]interface{})
}

func dig(v interface{}, path ...string) interface{} {
	for _, k := range path {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}

func errorCode(res *graphql.Result) string {
	if len(res.Errors) == 0 {
		return ""
	}
	code, _ := res.Errors[0].Extensions["code"].(string)
	return code
}

func (suite *GraphTestSuite) createUser(email string) policy.Session {
	data := suite.mustExec(policy.Session{}, `mutation($input: UserInput!) { createUser(input: $input) { id email } }`,
		map[string]interface{}{"input": map[string]interface{}{
			"email": email, "password": "Str0ng!Pass", "firstName": "F", "lastName": "L", "currency": "USD",
		}})
	return policy.Session{UserID: dig(data, "createUser", "id").(string), Email: email}
}

func (suite *GraphTestSuite) createAccount(sess policy.Session, balance float64) string {
	data := suite.mustExec(sess, `mutation($input: AccountInput!) { createAccount(input: $input) { id balance } }`,
		map[string]interface{}{"input": map[string]interface{}{
			"userId": sess.UserID, "name": "Main", "accountType": "CHECKING", "bankName": "Bank",
			"balance": balance, "currency": "USD",
		}})
	return dig(data, "createAccount", "id").(string)
}

func (suite *GraphTestSuite) createCategory(sess policy.Session) string {
	data := suite.mustExec(sess, `mutation($input: CategoryInput!) { createCategory(input: $input) { id } }`,
		map[string]interface{}{"input": map[string]interface{}{
			"userId": sess.UserID, "name": "Food", "type": "EXPENSE", "icon": "i", "color": "#000",
		}})
	return dig(data, "createCategory", "id").(string)
}

const createTx = `mutation($input: TransactionInput!) { createTransaction(input: $input) { id amount type } }`
const updateTx = `mutation($id: ID!, $input: TransactionInput!) { updateTransaction(id: $id, input: $input) { id type version } }`

func (suite *GraphTestSuite) txVars(accountID, categoryID, typ string, amount float64) map[string]interface{} {
	return map[string]interface{}{"input": map[string]interface{}{
		"userId": suite.alice.UserID, "accountId": accountID, "categoryId": categoryID,
		"amount": amount, "type": typ, "description": "lunch", "transactionDate": "2024-03-10",
	}}
}

func (suite *GraphTestSuite) balance(accountID string) interface{} {
	data := suite.mustExec(suite.alice, `query($id: ID!) { account(id: $id) { balance } }`, map[string]interface{}{"id": accountID})
	return dig(data, "account", "balance")
}

func (suite *GraphTestSuite) TestLedgerScenario() {
	acc := suite.createAccount(suite.alice, 100)
	cat := suite.createCategory(suite.alice)

	data := suite.mustExec(suite.alice, createTx, suite.txVars(acc, cat, "EXPENSE", 30))
	txID := dig(data, "createTransaction", "id").(string)
	assert.Equal(suite.T(), 70.0, suite.balance(acc))

	vars := suite.txVars(acc, cat, "INCOME", 30)
	vars["id"] = txID
	data = suite.mustExec(suite.alice, updateTx, vars)
	assert.Equal(suite.T(), "INCOME", dig(data, "updateTransaction", "type"))
	assert.Equal(suite.T(), 2, dig(data, "updateTransaction", "version"))
	assert.Equal(suite.T(), 130.0, suite.balance(acc))

	data = suite.mustExec(suite.alice, `mutation($id: ID!) { deleteTransaction(id: $id) }`, map[string]interface{}{"id": txID})
	assert.Equal(suite.T(), true, data["deleteTransaction"])
	assert.Equal(suite.T(), 100.0, suite.balance(acc))

	data = suite.mustExec(suite.alice, `query($id: ID!) { recomputedBalance(accountId: $id) }`, map[string]interface{}{"id": acc})
	assert.Equal(suite.T(), 100.0, data["recomputedBalance"])
}

func (suite *GraphTestSuite) TestNestedFields() {
	acc := suite.createAccount(suite.alice, 100)
	cat := suite.createCategory(suite.alice)
	data := suite.mustExec(suite.alice, createTx, suite.txVars(acc, cat, "EXPENSE", 12.5))
	txID := dig(data, "createTransaction", "id").(string)
	suite.mustExec(suite.alice, `mutation($tx: ID!, $input: AttachmentInput!) { createAttachment(transactionId: $tx, input: $input) { id } }`,
		map[string]interface{}{"tx": txID, "input": map[string]interface{}{
			"fileName": "r.pdf", "fileType": "application/pdf", "fileUrl": "https://files/r.pdf", "fileSize": 2048,
		}})

	data = suite.mustExec(suite.alice, `query($id: ID!) {
		account(id: $id) {
			user { email }
			transactions {
				amount
				transactionDate
				category { name }
				account { id }
				attachments { fileName fileSize }
			}
		}
	}`, map[string]interface{}{"id": acc})

	assert.Equal(suite.T(), "alice@example.com", dig(data, "account", "user", "email"))
	txs := dig(data, "account", "transactions").([]interface{})
	require.Len(suite.T(), txs, 1)
	assert.Equal(suite.T(), 12.5, dig(txs[0], "amount"))
	assert.Equal(suite.T(), "2024-03-10T00:00:00Z", dig(txs[0], "transactionDate"))
	assert.Equal(suite.T(), "Food", dig(txs[0], "category", "name"))
	assert.Equal(suite.T(), acc, dig(txs[0], "account", "id"))
	attachments := dig(txs[0], "attachments").([]interface{})
	require.Len(suite.T(), attachments, 1)
	assert.Equal(suite.T(), "r.pdf", dig(attachments[0], "fileName"))
	assert.Equal(suite.T(), 2048.0, dig(attachments[0], "fileSize"))

	data = suite.mustExec(suite.alice, `{ me { email accounts { id } categories { id } } }`, nil)
	assert.Equal(suite.T(), "alice@example.com", dig(data, "me", "email"))
	assert.Len(suite.T(), dig(data, "me", "accounts"), 1)
}

func (suite *GraphTestSuite) TestBudgetAllocations() {
	acc := suite.createAccount(suite.alice, 100)
	cat := suite.createCategory(suite.alice)
	suite.mustExec(suite.alice, createTx, suite.txVars(acc, cat, "EXPENSE", 30))

	data := suite.mustExec(suite.alice, `mutation($input: BudgetInput!) { createBudget(input: $input) { id } }`,
		map[string]interface{}{"input": map[string]interface{}{
			"userId": suite.alice.UserID, "name": "March", "amount": 500, "period": "MONTHLY",
			"startDate": "2024-03-01", "endDate": "2024-03-31T23:59:59Z",
		}})
	budgetID := dig(data, "createBudget", "id").(string)

	data = suite.mustExec(suite.alice, `mutation($b: ID!, $c: ID!) {
		setBudgetAllocation(budgetId: $b, categoryId: $c, allocatedAmount: 200) { allocatedAmount spentAmount category { name } }
	}`, map[string]interface{}{"b": budgetID, "c": cat})
	assert.Equal(suite.T(), 200.0, dig(data, "setBudgetAllocation", "allocatedAmount"))
	assert.Equal(suite.T(), 30.0, dig(data, "setBudgetAllocation", "spentAmount"))

	data = suite.mustExec(suite.alice, `query($id: ID!) { budget(id: $id) { categories { spentAmount budget { name } } } }`,
		map[string]interface{}{"id": budgetID})
	categories := dig(data, "budget", "categories").([]interface{})
	require.Len(suite.T(), categories, 1)
	assert.Equal(suite.T(), "March", dig(categories[0], "budget", "name"))

	res := suite.exec(suite.alice, `mutation($id: ID!) { deleteCategory(id: $id) }`, map[string]interface{}{"id": cat})
	assert.Equal(suite.T(), "CONFLICT", errorCode(res))
}

func (suite *GraphTestSuite) TestBudgetCountsItsLastDay() {
	acc := suite.createAccount(suite.alice, 100)
	cat := suite.createCategory(suite.alice)
	vars := suite.txVars(acc, cat, "EXPENSE", 30)
	vars["input"].(map[string]interface{})["transactionDate"] = "2024-03-31T14:00:00Z"
	suite.mustExec(suite.alice, createTx, vars)

	data := suite.mustExec(suite.alice, `mutation($input: BudgetInput!) { createBudget(input: $input) { id } }`,
		map[string]interface{}{"input": map[string]interface{}{
			"userId": suite.alice.UserID, "name": "March", "amount": 500, "period": "MONTHLY",
			"startDate": "2024-03-01", "endDate": "2024-03-31",
		}})
	budgetID := dig(data, "createBudget", "id").(string)

	data = suite.mustExec(suite.alice, `mutation($b: ID!, $c: ID!) {
		setBudgetAllocation(budgetId: $b, categoryId: $c, allocatedAmount: 200) { spentAmount }
	}`, map[string]interface{}{"b": budgetID, "c": cat})
	assert.Equal(suite.T(), 30.0, dig(data, "setBudgetAllocation", "spentAmount"))
}

func (suite *GraphTestSuite) TestErrorCodes() {
	acc := suite.createAccount(suite.alice, 100)

	res := suite.exec(suite.bob, `query($id: ID!) { account(id: $id) { balance } }`, map[string]interface{}{"id": acc})
	assert.Equal(suite.T(), "FORBIDDEN", errorCode(res))
	assert.Nil(suite.T(), dig(res.Data, "account"))

	res = suite.exec(policy.Session{}, `query($id: ID!) { accounts(userId: $id) { id } }`, map[string]interface{}{"id": suite.alice.UserID})
	assert.Equal(suite.T(), "UNAUTHENTICATED", errorCode(res))

	res = suite.exec(suite.alice, `{ transaction(id: "missing") { id } }`, nil)
	assert.Equal(suite.T(), "NOT_FOUND", errorCode(res))

	res = suite.exec(suite.alice, `mutation($input: AccountInput!) { createAccount(input: $input) { id } }`,
		map[string]interface{}{"input": map[string]interface{}{
			"userId": suite.alice.UserID, "name": "x", "accountType": "PIGGY_BANK", "bankName": "b", "currency": "USD",
		}})
	assert.Equal(suite.T(), "INVALID_INPUT", errorCode(res))

	res = suite.exec(suite.bob, `mutation($id: ID!) { deleteAccount(id: $id) }`, map[string]interface{}{"id": acc})
	assert.Equal(suite.T(), "FORBIDDEN", errorCode(res))
	assert.Equal(suite.T(), 100.0, suite.balance(acc))
}

func (suite *GraphTestSuite) TestDuplicateCreateUser() {
	res := suite.exec(policy.Session{}, `mutation($input: UserInput!) { createUser(input: $input) { id } }`,
		map[string]interface{}{"input": map[string]interface{}{
			"email": "alice@example.com", "password": "Str0ng!Pass", "firstName": "F", "lastName": "L",
		}})
	assert.Equal(suite.T(), "CONFLICT", errorCode(res))
}

func (suite *GraphTestSuite) TestInternalErrorsAreMasked() {
	sqlDB, err := suite.gdb.DB()
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), sqlDB.Close())

	res := suite.exec(suite.alice, `{ account(id: "any") { id } }`, nil)
	require.Len(suite.T(), res.Errors, 1)
	assert.Equal(suite.T(), "internal server error", res.Errors[0].Message)
	assert.Equal(suite.T(), "INTERNAL", errorCode(res))
}

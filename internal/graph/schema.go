package graph

import (
	"finance_tracker/internal/policy"

	"github.com/graphql-go/graphql"
)

func inputObject(name string, fields map[string]graphql.Input) *graphql.InputObject {
	config := graphql.InputObjectConfigFieldMap{}
	for k, t := range fields {
		config[k] = &graphql.InputObjectFieldConfig{Type: t}
	}
	return graphql.NewInputObject(graphql.InputObjectConfig{Name: name, Fields: config})
}

var (
	nonNullString = graphql.NewNonNull(graphql.String)
	nonNullFloat  = graphql.NewNonNull(graphql.Float)

	userInput = inputObject("UserInput", map[string]graphql.Input{
		"email":     nonNullString,
		"password":  nonNullString,
		"firstName": nonNullString,
		"lastName":  nonNullString,
		"currency":  graphql.String,
	})
	accountInput = inputObject("AccountInput", map[string]graphql.Input{
		"userId":      nonNullID,
		"name":        nonNullString,
		"accountType": nonNullString,
		"bankName":    nonNullString,
		"balance":     graphql.Float,
		"currency":    nonNullString,
		"isActive":    graphql.Boolean,
	})
	transactionInput = inputObject("TransactionInput", map[string]graphql.Input{
		"userId":           nonNullID,
		"accountId":        nonNullID,
		"toAccountId":      graphql.ID,
		"categoryId":       nonNullID,
		"amount":           nonNullFloat,
		"type":             nonNullString,
		"description":      nonNullString,
		"transactionDate":  graphql.String,
		"isRecurring":      graphql.Boolean,
		"recurringPattern": graphql.String,
	})
	categoryInput = inputObject("CategoryInput", map[string]graphql.Input{
		"userId":    nonNullID,
		"name":      nonNullString,
		"type":      nonNullString,
		"icon":      nonNullString,
		"color":     nonNullString,
		"isDefault": graphql.Boolean,
		"isActive":  graphql.Boolean,
	})
	budgetInput = inputObject("BudgetInput", map[string]graphql.Input{
		"userId":    nonNullID,
		"name":      nonNullString,
		"amount":    nonNullFloat,
		"period":    nonNullString,
		"startDate": nonNullString,
		"endDate":   nonNullString,
		"isActive":  graphql.Boolean,
	})
	attachmentInput = inputObject("AttachmentInput", map[string]graphql.Input{
		"fileName": nonNullString,
		"fileType": nonNullString,
		"fileUrl":  nonNullString,
		"fileSize": nonNullFloat,
	})
)

func idArgs(names ...string) graphql.FieldConfigArgument {
	out := graphql.FieldConfigArgument{}
	for _, n := range names {
		out[n] = &graphql.ArgumentConfig{Type: nonNullID}
	}
	return out
}

func withInput(base graphql.FieldConfigArgument, input *graphql.InputObject) graphql.FieldConfigArgument {
	base["input"] = &graphql.ArgumentConfig{Type: graphql.NewNonNull(input)}
	return base
}

func (b *builder) build() (graphql.Schema, error) {
	b.objects()
	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    b.query(),
		Mutation: b.mutation(),
	})
}

func (b *builder) query() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type: b.user,
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					sess := policy.FromContext(p.Context)
					return b.fin.User(p.Context, sess, sess.UserID)
				}),
			},
			"user": &graphql.Field{
				Type: b.user,
				Args: idArgs("id"),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					return b.fin.User(p.Context, policy.FromContext(p.Context), args(p.Args).str("id"))
				}),
			},
			"account": &graphql.Field{
				Type: b.account,
				Args: idArgs("id"),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					return b.fin.Account(p.Context, policy.FromContext(p.Context), args(p.Args).str("id"))
				}),
			},
			"accounts": &graphql.Field{
				Type: graphql.NewList(b.account),
				Args: idArgs("userId"),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					out, err := b.fin.Accounts(p.Context, policy.FromContext(p.Context), args(p.Args).str("userId"))
					return ptrs(out), err
				}),
			},
			"recomputedBalance": &graphql.Field{
				Type: graphql.Float,
				Args: idArgs("accountId"),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					total, err := b.fin.RecomputeBalance(p.Context, policy.FromContext(p.Context), args(p.Args).str("accountId"))
					if err != nil {
						return nil, err
					}
					return amount(total), nil
				}),
			},
			"transaction": &graphql.Field{
				Type: b.transaction,
				Args: idArgs("id"),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					return b.fin.Transaction(p.Context, policy.FromContext(p.Context), args(p.Args).str("id"))
				}),
			},
			"transactions": &graphql.Field{
				Type: graphql.NewList(b.transaction),
				Args: graphql.FieldConfigArgument{
					"userId":    &graphql.ArgumentConfig{Type: nonNullID},
					"accountId": &graphql.ArgumentConfig{Type: graphql.ID},
				},
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					a := args(p.Args)
					out, err := b.fin.Transactions(p.Context, policy.FromContext(p.Context), a.str("userId"), a.str("accountId"))
					return ptrs(out), err
				}),
			},
			"category": &graphql.Field{
				Type: b.category,
				Args: idArgs("id"),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					return b.fin.Category(p.Context, policy.FromContext(p.Context), args(p.Args).str("id"))
				}),
			},
			"categories": &graphql.Field{
				Type: graphql.NewList(b.category),
				Args: idArgs("userId"),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					out, err := b.fin.Categories(p.Context, policy.FromContext(p.Context), args(p.Args).str("userId"))
					return ptrs(out), err
				}),
			},
			"budget": &graphql.Field{
				Type: b.budget,
				Args: idArgs("id"),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					return b.fin.Budget(p.Context, policy.FromContext(p.Context), args(p.Args).str("id"))
				}),
			},
			"budgets": &graphql.Field{
				Type: graphql.NewList(b.budget),
				Args: idArgs("userId"),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					out, err := b.fin.Budgets(p.Context, policy.FromContext(p.Context), args(p.Args).str("userId"))
					return ptrs(out), err
				}),
			},
		},
	})
}

func (b *builder) mutation() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			// createUser registers without opening a session; sign in through /api/auth/login
			"createUser": &graphql.Field{
				Type: b.user,
				Args: withInput(graphql.FieldConfigArgument{}, userInput),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					return b.auth.CreateUser(p.Context, args(p.Args).input().registerInput())
				}),
			},

			"createAccount": &graphql.Field{
				Type: b.account,
				Args: withInput(graphql.FieldConfigArgument{}, accountInput),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					return b.fin.CreateAccount(p.Context, policy.FromContext(p.Context), args(p.Args).input().accountInput())
				}),
			},
			"updateAccount": &graphql.Field{
				Type: b.account,
				Args: withInput(idArgs("id"), accountInput),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					a := args(p.Args)
					return b.fin.UpdateAccount(p.Context, policy.FromContext(p.Context), a.str("id"), a.input().accountInput())
				}),
			},
			"deleteAccount": &graphql.Field{
				Type: graphql.Boolean,
				Args: idArgs("id"),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					return b.fin.DeleteAccount(p.Context, policy.FromContext(p.Context), args(p.Args).str("id"))
				}),
			},

			"createTransaction": &graphql.Field{
				Type: b.transaction,
				Args: withInput(graphql.FieldConfigArgument{}, transactionInput),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					in, err := args(p.Args).input().transactionInput()
					if err != nil {
						return nil, err
					}
					return b.fin.CreateTransaction(p.Context, policy.FromContext(p.Context), in)
				}),
			},
			"updateTransaction": &graphql.Field{
				Type: b.transaction,
				Args: withInput(idArgs("id"), transactionInput),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					a := args(p.Args)
					in, err := a.input().transactionInput()
					if err != nil {
						return nil, err
					}
					return b.fin.UpdateTransaction(p.Context, policy.FromContext(p.Context), a.str("id"), in)
				}),
			},
			"deleteTransaction": &graphql.Field{
				Type: graphql.Boolean,
				Args: idArgs("id"),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					return b.fin.DeleteTransaction(p.Context, policy.FromContext(p.Context), args(p.Args).str("id"))
				}),
			},

			"createCategory": &graphql.Field{
				Type: b.category,
				Args: withInput(graphql.FieldConfigArgument{}, categoryInput),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					return b.fin.CreateCategory(p.Context, policy.FromContext(p.Context), args(p.Args).input().categoryInput())
				}),
			},
			"updateCategory": &graphql.Field{
				Type: b.category,
				Args: withInput(idArgs("id"), categoryInput),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					a := args(p.Args)
					return b.fin.UpdateCategory(p.Context, policy.FromContext(p.Context), a.str("id"), a.input().categoryInput())
				}),
			},
			"deleteCategory": &graphql.Field{
				Type: graphql.Boolean,
				Args: idArgs("id"),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					return b.fin.DeleteCategory(p.Context, policy.FromContext(p.Context), args(p.Args).str("id"))
				}),
			},

			"createBudget": &graphql.Field{
				Type: b.budget,
				Args: withInput(graphql.FieldConfigArgument{}, budgetInput),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					in, err := args(p.Args).input().budgetInput()
					if err != nil {
						return nil, err
					}
					return b.fin.CreateBudget(p.Context, policy.FromContext(p.Context), in)
				}),
			},
			"updateBudget": &graphql.Field{
				Type: b.budget,
				Args: withInput(idArgs("id"), budgetInput),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					a := args(p.Args)
					in, err := a.input().budgetInput()
					if err != nil {
						return nil, err
					}
					return b.fin.UpdateBudget(p.Context, policy.FromContext(p.Context), a.str("id"), in)
				}),
			},
			"deleteBudget": &graphql.Field{
				Type: graphql.Boolean,
				Args: idArgs("id"),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					return b.fin.DeleteBudget(p.Context, policy.FromContext(p.Context), args(p.Args).str("id"))
				}),
			},
			"setBudgetAllocation": &graphql.Field{
				Type: b.budgetCategory,
				Args: graphql.FieldConfigArgument{
					"budgetId":        &graphql.ArgumentConfig{Type: nonNullID},
					"categoryId":      &graphql.ArgumentConfig{Type: nonNullID},
					"allocatedAmount": &graphql.ArgumentConfig{Type: nonNullFloat},
				},
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					a := args(p.Args)
					return b.fin.SetBudgetAllocation(p.Context, policy.FromContext(p.Context), a.str("budgetId"), a.str("categoryId"), a.money("allocatedAmount"))
				}),
			},
			"removeBudgetAllocation": &graphql.Field{
				Type: graphql.Boolean,
				Args: idArgs("budgetId", "categoryId"),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					a := args(p.Args)
					return b.fin.RemoveBudgetAllocation(p.Context, policy.FromContext(p.Context), a.str("budgetId"), a.str("categoryId"))
				}),
			},

			"createAttachment": &graphql.Field{
				Type: b.attachment,
				Args: withInput(idArgs("transactionId"), attachmentInput),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					a := args(p.Args)
					return b.fin.CreateAttachment(p.Context, policy.FromContext(p.Context), a.str("transactionId"), a.input().attachmentInput())
				}),
			},
			"deleteAttachment": &graphql.Field{
				Type: graphql.Boolean,
				Args: idArgs("id"),
				Resolve: resolve(func(p graphql.ResolveParams) (interface{}, error) {
					return b.fin.DeleteAttachment(p.Context, policy.FromContext(p.Context), args(p.Args).str("id"))
				}),
			},
		},
	})
}

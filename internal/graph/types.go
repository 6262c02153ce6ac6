package graph

import (
	"time"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/policy"
	"finance_tracker/internal/service"

	"github.com/graphql-go/graphql"
	"github.com/shopspring/decimal"
)

type builder struct {
	auth *service.AuthService
	fin  *service.FinanceService

	user           *graphql.Object
	account        *graphql.Object
	category       *graphql.Object
	transaction    *graphql.Object
	budget         *graphql.Object
	budgetCategory *graphql.Object
	attachment     *graphql.Object
}

var nonNullID = graphql.NewNonNull(graphql.ID)

func field(typ graphql.Output, fn graphql.FieldResolveFn) *graphql.Field {
	return &graphql.Field{Type: typ, Resolve: fn}
}

func formatTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func amount(d decimal.Decimal) interface{} { return d.InexactFloat64() }

func (b *builder) objects() {
	b.user = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":        field(nonNullID, prop(func(u *domain.User) interface{} { return u.ID })),
				"email":     field(graphql.NewNonNull(graphql.String), prop(func(u *domain.User) interface{} { return u.Email })),
				"firstName": field(graphql.NewNonNull(graphql.String), prop(func(u *domain.User) interface{} { return u.FirstName })),
				"lastName":  field(graphql.NewNonNull(graphql.String), prop(func(u *domain.User) interface{} { return u.LastName })),
				"currency":  field(graphql.NewNonNull(graphql.String), prop(func(u *domain.User) interface{} { return u.Currency })),
				"accounts": field(graphql.NewList(b.account), resolve(func(p graphql.ResolveParams) (interface{}, error) {
					u := p.Source.(*domain.User)
					out, err := b.fin.Accounts(p.Context, policy.FromContext(p.Context), u.ID)
					return ptrs(out), err
				})),
				"transactions": field(graphql.NewList(b.transaction), resolve(func(p graphql.ResolveParams) (interface{}, error) {
					u := p.Source.(*domain.User)
					out, err := b.fin.Transactions(p.Context, policy.FromContext(p.Context), u.ID, "")
					return ptrs(out), err
				})),
				"categories": field(graphql.NewList(b.category), resolve(func(p graphql.ResolveParams) (interface{}, error) {
					u := p.Source.(*domain.User)
					out, err := b.fin.Categories(p.Context, policy.FromContext(p.Context), u.ID)
					return ptrs(out), err
				})),
				"budgets": field(graphql.NewList(b.budget), resolve(func(p graphql.ResolveParams) (interface{}, error) {
					u := p.Source.(*domain.User)
					out, err := b.fin.Budgets(p.Context, policy.FromContext(p.Context), u.ID)
					return ptrs(out), err
				})),
			}
		}),
	})

	b.account = graphql.NewObject(graphql.ObjectConfig{
		Name: "Account",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":             field(nonNullID, prop(func(a *domain.Account) interface{} { return a.ID })),
				"user":           field(graphql.NewNonNull(b.user), b.owner(func(src interface{}) string { return src.(*domain.Account).UserID })),
				"name":           field(graphql.NewNonNull(graphql.String), prop(func(a *domain.Account) interface{} { return a.Name })),
				"accountType":    field(graphql.NewNonNull(graphql.String), prop(func(a *domain.Account) interface{} { return string(a.AccountType) })),
				"bankName":       field(graphql.NewNonNull(graphql.String), prop(func(a *domain.Account) interface{} { return a.BankName })),
				"balance":        field(graphql.NewNonNull(graphql.Float), prop(func(a *domain.Account) interface{} { return amount(a.Balance) })),
				"openingBalance": field(graphql.NewNonNull(graphql.Float), prop(func(a *domain.Account) interface{} { return amount(a.OpeningBalance) })),
				"currency":       field(graphql.NewNonNull(graphql.String), prop(func(a *domain.Account) interface{} { return a.Currency })),
				"isActive":       field(graphql.NewNonNull(graphql.Boolean), prop(func(a *domain.Account) interface{} { return a.IsActive })),
				"lastSync":       field(graphql.String, prop(func(a *domain.Account) interface{} { return formatTime(a.LastSync) })),
				"createdAt":      field(graphql.String, prop(func(a *domain.Account) interface{} { return formatTime(a.CreatedAt) })),
				"transactions": field(graphql.NewList(b.transaction), resolve(func(p graphql.ResolveParams) (interface{}, error) {
					a := p.Source.(*domain.Account)
					out, err := b.fin.Transactions(p.Context, policy.FromContext(p.Context), a.UserID, a.ID)
					return ptrs(out), err
				})),
			}
		}),
	})

	b.category = graphql.NewObject(graphql.ObjectConfig{
		Name: "Category",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":        field(nonNullID, prop(func(c *domain.Category) interface{} { return c.ID })),
				"user":      field(graphql.NewNonNull(b.user), b.owner(func(src interface{}) string { return src.(*domain.Category).UserID })),
				"name":      field(graphql.NewNonNull(graphql.String), prop(func(c *domain.Category) interface{} { return c.Name })),
				"type":      field(graphql.NewNonNull(graphql.String), prop(func(c *domain.Category) interface{} { return string(c.Type) })),
				"icon":      field(graphql.NewNonNull(graphql.String), prop(func(c *domain.Category) interface{} { return c.Icon })),
				"color":     field(graphql.NewNonNull(graphql.String), prop(func(c *domain.Category) interface{} { return c.Color })),
				"isDefault": field(graphql.NewNonNull(graphql.Boolean), prop(func(c *domain.Category) interface{} { return c.IsDefault })),
				"isActive":  field(graphql.NewNonNull(graphql.Boolean), prop(func(c *domain.Category) interface{} { return c.IsActive })),
				"transactions": field(graphql.NewList(b.transaction), resolve(func(p graphql.ResolveParams) (interface{}, error) {
					c := p.Source.(*domain.Category)
					out, err := b.fin.CategoryTransactions(p.Context, policy.FromContext(p.Context), c.ID)
					return ptrs(out), err
				})),
			}
		}),
	})

	b.transaction = graphql.NewObject(graphql.ObjectConfig{
		Name: "Transaction",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":   field(nonNullID, prop(func(t *domain.Transaction) interface{} { return t.ID })),
				"user": field(graphql.NewNonNull(b.user), b.owner(func(src interface{}) string { return src.(*domain.Transaction).UserID })),
				"account": field(graphql.NewNonNull(b.account), resolve(func(p graphql.ResolveParams) (interface{}, error) {
					t := p.Source.(*domain.Transaction)
					return b.fin.Account(p.Context, policy.FromContext(p.Context), t.AccountID)
				})),
				"toAccount": field(b.account, resolve(func(p graphql.ResolveParams) (interface{}, error) {
					t := p.Source.(*domain.Transaction)
					if t.ToAccountID == nil {
						return nil, nil
					}
					return b.fin.Account(p.Context, policy.FromContext(p.Context), *t.ToAccountID)
				})),
				"category": field(graphql.NewNonNull(b.category), resolve(func(p graphql.ResolveParams) (interface{}, error) {
					t := p.Source.(*domain.Transaction)
					return b.fin.Category(p.Context, policy.FromContext(p.Context), t.CategoryID)
				})),
				"amount":          field(graphql.NewNonNull(graphql.Float), prop(func(t *domain.Transaction) interface{} { return amount(t.Amount) })),
				"type":            field(graphql.NewNonNull(graphql.String), prop(func(t *domain.Transaction) interface{} { return string(t.Type) })),
				"description":     field(graphql.NewNonNull(graphql.String), prop(func(t *domain.Transaction) interface{} { return t.Description })),
				"transactionDate": field(graphql.NewNonNull(graphql.String), prop(func(t *domain.Transaction) interface{} { return formatTime(t.TransactionDate) })),
				"isRecurring":     field(graphql.NewNonNull(graphql.Boolean), prop(func(t *domain.Transaction) interface{} { return t.IsRecurring })),
				"recurringPattern": field(graphql.String, prop(func(t *domain.Transaction) interface{} {
					if t.RecurringPattern == nil {
						return nil
					}
					return string(*t.RecurringPattern)
				})),
				"version": field(graphql.NewNonNull(graphql.Int), prop(func(t *domain.Transaction) interface{} { return t.Version })),
				"attachments": field(graphql.NewList(b.attachment), resolve(func(p graphql.ResolveParams) (interface{}, error) {
					t := p.Source.(*domain.Transaction)
					out, err := b.fin.Attachments(p.Context, policy.FromContext(p.Context), t.ID)
					return ptrs(out), err
				})),
			}
		}),
	})

	b.budget = graphql.NewObject(graphql.ObjectConfig{
		Name: "Budget",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":        field(nonNullID, prop(func(bu *domain.Budget) interface{} { return bu.ID })),
				"user":      field(graphql.NewNonNull(b.user), b.owner(func(src interface{}) string { return src.(*domain.Budget).UserID })),
				"name":      field(graphql.NewNonNull(graphql.String), prop(func(bu *domain.Budget) interface{} { return bu.Name })),
				"amount":    field(graphql.NewNonNull(graphql.Float), prop(func(bu *domain.Budget) interface{} { return amount(bu.Amount) })),
				"period":    field(graphql.NewNonNull(graphql.String), prop(func(bu *domain.Budget) interface{} { return string(bu.Period) })),
				"startDate": field(graphql.NewNonNull(graphql.String), prop(func(bu *domain.Budget) interface{} { return formatTime(bu.StartDate) })),
				"endDate":   field(graphql.NewNonNull(graphql.String), prop(func(bu *domain.Budget) interface{} { return formatTime(bu.EndDate) })),
				"isActive":  field(graphql.NewNonNull(graphql.Boolean), prop(func(bu *domain.Budget) interface{} { return bu.IsActive })),
				"categories": field(graphql.NewList(b.budgetCategory), resolve(func(p graphql.ResolveParams) (interface{}, error) {
					bu := p.Source.(*domain.Budget)
					out, err := b.fin.BudgetAllocations(p.Context, policy.FromContext(p.Context), bu.ID)
					return ptrs(out), err
				})),
			}
		}),
	})

	b.budgetCategory = graphql.NewObject(graphql.ObjectConfig{
		Name: "BudgetCategory",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id": field(nonNullID, prop(func(a *service.Allocation) interface{} { return a.ID })),
				"budget": field(graphql.NewNonNull(b.budget), resolve(func(p graphql.ResolveParams) (interface{}, error) {
					a := p.Source.(*service.Allocation)
					return b.fin.Budget(p.Context, policy.FromContext(p.Context), a.BudgetID)
				})),
				"category": field(graphql.NewNonNull(b.category), resolve(func(p graphql.ResolveParams) (interface{}, error) {
					a := p.Source.(*service.Allocation)
					return b.fin.Category(p.Context, policy.FromContext(p.Context), a.CategoryID)
				})),
				"allocatedAmount": field(graphql.NewNonNull(graphql.Float), prop(func(a *service.Allocation) interface{} { return amount(a.AllocatedAmount) })),
				"spentAmount":     field(graphql.NewNonNull(graphql.Float), prop(func(a *service.Allocation) interface{} { return amount(a.SpentAmount) })),
			}
		}),
	})

	b.attachment = graphql.NewObject(graphql.ObjectConfig{
		Name: "Attachment",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id": field(nonNullID, prop(func(a *domain.Attachment) interface{} { return a.ID })),
				"transaction": field(graphql.NewNonNull(b.transaction), resolve(func(p graphql.ResolveParams) (interface{}, error) {
					a := p.Source.(*domain.Attachment)
					return b.fin.Transaction(p.Context, policy.FromContext(p.Context), a.TransactionID)
				})),
				"fileName":   field(graphql.NewNonNull(graphql.String), prop(func(a *domain.Attachment) interface{} { return a.FileName })),
				"fileType":   field(graphql.NewNonNull(graphql.String), prop(func(a *domain.Attachment) interface{} { return a.FileType })),
				"fileUrl":    field(graphql.NewNonNull(graphql.String), prop(func(a *domain.Attachment) interface{} { return a.FileURL })),
				"fileSize":   field(graphql.NewNonNull(graphql.Float), prop(func(a *domain.Attachment) interface{} { return float64(a.FileSize) })),
				"uploadedAt": field(graphql.NewNonNull(graphql.String), prop(func(a *domain.Attachment) interface{} { return formatTime(a.UploadedAt) })),
			}
		}),
	})
}

// owner resolves the user field of an owned resource
func (b *builder) owner(ownerID func(src interface{}) string) graphql.FieldResolveFn {
	return resolve(func(p graphql.ResolveParams) (interface{}, error) {
		return b.fin.User(p.Context, policy.FromContext(p.Context), ownerID(p.Source))
	})
}

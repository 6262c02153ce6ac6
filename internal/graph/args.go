package graph

import (
	"strings"
	"time"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/service"

	"github.com/shopspring/decimal"
)

type args map[string]interface{}

func (a args) str(key string) string {
	v, _ := a[key].(string)
	return v
}

func (a args) optStr(key string) *string {
	v, ok := a[key].(string)
	if !ok {
		return nil
	}
	return &v
}

func (a args) optBool(key string) *bool {
	v, ok := a[key].(bool)
	if !ok {
		return nil
	}
	return &v
}

func (a args) money(key string) decimal.Decimal {
	switch v := a[key].(type) {
	case float64:
		return decimal.NewFromFloat(v) // Shortest decimal that round-trips
	case int:
		return decimal.NewFromInt(int64(v))
	}
	return decimal.Zero
}

func (a args) input() args {
	m, _ := a["input"].(map[string]interface{})
	return args(m)
}

// date accepts RFC 3339 timestamps and plain YYYY-MM-DD dates
func (a args) date(key string) (time.Time, error) {
	s := strings.TrimSpace(a.str(key))
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil // Midnight UTC
	}
	return time.Time{}, domain.InvalidInput("%s must be an RFC 3339 timestamp or a YYYY-MM-DD date", key)
}

func (a args) registerInput() service.RegisterInput {
	return service.RegisterInput{
		Email:     a.str("email"),
		Password:  a.str("password"),
		FirstName: a.str("firstName"),
		LastName:  a.str("lastName"),
		Currency:  a.str("currency"),
	}
}

func (a args) accountInput() service.AccountInput {
	return service.AccountInput{
		UserID:      a.str("userId"),
		Name:        a.str("name"),
		AccountType: domain.AccountType(strings.ToUpper(a.str("accountType"))),
		BankName:    a.str("bankName"),
		Balance:     a.money("balance"),
		Currency:    a.str("currency"),
		IsActive:    a.optBool("isActive"),
	}
}

func (a args) categoryInput() service.CategoryInput {
	isDefault, _ := a["isDefault"].(bool)
	return service.CategoryInput{
		UserID:    a.str("userId"),
		Name:      a.str("name"),
		Type:      domain.CategoryType(strings.ToUpper(a.str("type"))),
		Icon:      a.str("icon"),
		Color:     a.str("color"),
		IsDefault: isDefault,
		IsActive:  a.optBool("isActive"),
	}
}

func (a args) transactionInput() (service.TransactionInput, error) {
	date, err := a.date("transactionDate")
	if err != nil {
		return service.TransactionInput{}, err
	}
	isRecurring, _ := a["isRecurring"].(bool)
	in := service.TransactionInput{
		UserID:          a.str("userId"),
		AccountID:       a.str("accountId"),
		ToAccountID:     a.optStr("toAccountId"),
		CategoryID:      a.str("categoryId"),
		Amount:          a.money("amount"),
		Type:            domain.TransactionType(strings.ToUpper(a.str("type"))),
		Description:     a.str("description"),
		TransactionDate: date,
		IsRecurring:     isRecurring,
	}
	if p := a.optStr("recurringPattern"); p != nil {
		pattern := domain.RecurringPattern(strings.ToUpper(*p))
		in.RecurringPattern = &pattern
	}
	return in, nil
}

func (a args) budgetInput() (service.BudgetInput, error) {
	start, err := a.date("startDate")
	if err != nil {
		return service.BudgetInput{}, err
	}
	end, err := a.date("endDate")
	if err != nil {
		return service.BudgetInput{}, err
	}
	return service.BudgetInput{
		UserID:    a.str("userId"),
		Name:      a.str("name"),
		Amount:    a.money("amount"),
		Period:    domain.BudgetPeriod(strings.ToUpper(a.str("period"))),
		StartDate: start,
		EndDate:   end,
		IsActive:  a.optBool("isActive"),
	}, nil
}

func (a args) attachmentInput() service.AttachmentInput {
	size, _ := a["fileSize"].(float64)
	return service.AttachmentInput{
		FileName: a.str("fileName"),
		FileType: a.str("fileType"),
		FileURL:  a.str("fileUrl"),
		FileSize: int64(size),
	}
}

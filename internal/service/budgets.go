package service

import (
	"context"
	"strings"
	"time"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/policy"

	"github.com/shopspring/decimal"
)

// BudgetInput carries the writable budget fields
type BudgetInput struct {
	UserID    string
	Name      string
	Amount    decimal.Decimal
	Period    domain.BudgetPeriod
	StartDate time.Time
	EndDate   time.Time
	IsActive  *bool
}

func (in *BudgetInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.InvalidInput("budget name is required")
	}
	if err := checkMoney("budget amount", in.Amount); err != nil {
		return err
	}
	if in.Amount.IsNegative() {
		return domain.InvalidInput("budget amount must not be negative")
	}
	if !in.Period.Valid() {
		return domain.InvalidInput("invalid budget period %q", in.Period)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return domain.InvalidInput("budget start and end dates are required")
	}
	if in.EndDate.Before(in.StartDate) {
		return domain.InvalidInput("budget end date is before its start date")
	}
	return nil
}

// Allocation is a budget's allocation to one category together with what has
// been spent in that category during the budget's period
type Allocation struct {
	domain.BudgetCategory
	SpentAmount decimal.Decimal
}

func (s *FinanceService) budget(ctx context.Context, sess policy.Session, op policy.Op, id string) (*domain.Budget, error) {
	b, err := s.store.FindBudget(ctx, id)
	return policy.Guard(sess, op, "budget", b, err)
}

// Budget returns one budget
func (s *FinanceService) Budget(ctx context.Context, sess policy.Session, id string) (*domain.Budget, error) {
	return s.budget(ctx, sess, policy.OpRead, id)
}

// Budgets lists a user's budgets
func (s *FinanceService) Budgets(ctx context.Context, sess policy.Session, userID string) ([]domain.Budget, error) {
	if err := policy.Authorize(sess, policy.OpList, userID); err != nil {
		return nil, err
	}
	return s.store.ListBudgets(ctx, userID)
}

// CreateBudget adds a budget
func (s *FinanceService) CreateBudget(ctx context.Context, sess policy.Session, in BudgetInput) (*domain.Budget, error) {
	if err := policy.Authorize(sess, policy.OpCreate, in.UserID); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	b := &domain.Budget{
		UserID:    in.UserID,
		Name:      in.Name,
		Amount:    in.Amount,
		Period:    in.Period,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		IsActive:  in.IsActive == nil || *in.IsActive,
	}
	if err := s.store.CreateBudget(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBudget replaces a budget's fields
func (s *FinanceService) UpdateBudget(ctx context.Context, sess policy.Session, id string, in BudgetInput) (*domain.Budget, error) {
	if _, err := s.budget(ctx, sess, policy.OpUpdate, id); err != nil {
		return nil, err
	}
	if err := forbidReassign(sess, policy.OpUpdate, in.UserID); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{
		"name":       in.Name,
		"amount":     in.Amount,
		"period":     in.Period,
		"start_date": in.StartDate,
		"end_date":   in.EndDate,
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	b, err := s.store.UpdateBudget(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.NotFound("budget not found")
	}
	return b, nil
}

// DeleteBudget removes a budget and its allocations
func (s *FinanceService) DeleteBudget(ctx context.Context, sess policy.Session, id string) (bool, error) {
	if _, err := s.budget(ctx, sess, policy.OpDelete, id); err != nil {
		return false, err
	}
	if err := s.store.DeleteBudget(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// BudgetAllocations returns a budget's allocations with their spent amounts
func (s *FinanceService) BudgetAllocations(ctx context.Context, sess policy.Session, budgetID string) ([]Allocation, error) {
	b, err := s.budget(ctx, sess, policy.OpRead, budgetID)
	if err != nil {
		return nil, err
	}
	rows, err := s.store.ListAllocations(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	out := make([]Allocation, 0, len(rows))
	for _, row := range rows {
		a, err := s.withSpent(ctx, b, row)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// SetBudgetAllocation creates or changes the amount a budget allots to a
// category
func (s *FinanceService) SetBudgetAllocation(ctx context.Context, sess policy.Session, budgetID, categoryID string, allocated decimal.Decimal) (*Allocation, error) {
	b, err := s.budget(ctx, sess, policy.OpUpdate, budgetID)
	if err != nil {
		return nil, err
	}
	if _, err := s.category(ctx, sess, policy.OpRead, categoryID); err != nil {
		return nil, err
	}
	if err := checkMoney("allocated amount", allocated); err != nil {
		return nil, err
	}
	if allocated.IsNegative() {
		return nil, domain.InvalidInput("allocated amount must not be negative")
	}
	row, err := s.store.UpsertAllocation(ctx, budgetID, categoryID, allocated)
	if err != nil {
		return nil, err
	}
	a, err := s.withSpent(ctx, b, *row)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// RemoveBudgetAllocation drops a budget's allocation to a category
func (s *FinanceService) RemoveBudgetAllocation(ctx context.Context, sess policy.Session, budgetID, categoryID string) (bool, error) {
	if _, err := s.budget(ctx, sess, policy.OpUpdate, budgetID); err != nil {
		return false, err
	}
	return s.store.DeleteAllocation(ctx, budgetID, categoryID)
}

func (s *FinanceService) withSpent(ctx context.Context, b *domain.Budget, row domain.BudgetCategory) (Allocation, error) {
	spent, err := s.store.SpentAmount(ctx, b.UserID, row.CategoryID, b.StartDate, b.EndDate) // Computed on every read
	if err != nil {
		return Allocation{}, err
	}
	return Allocation{BudgetCategory: row, SpentAmount: spent}, nil
}

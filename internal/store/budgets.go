package store

import (
	"context"

	"finance_tracker/internal/domain"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreateBudget inserts b
func (s *Store) CreateBudget(ctx context.Context, b *domain.Budget) error {
	return s.db.WithContext(ctx).Create(b).Error
}

// FindBudget loads a budget by id
func (s *Store) FindBudget(ctx context.Context, id string) (*domain.Budget, error) {
	return first[domain.Budget](ctx, s.db, id)
}

// ListBudgets returns a user's budgets, latest period first
func (s *Store) ListBudgets(ctx context.Context, userID string) ([]domain.Budget, error) {
	var budgets []domain.Budget
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("start_date desc").Find(&budgets).Error
	return budgets, err
}

// UpdateBudget applies fields to a budget
func (s *Store) UpdateBudget(ctx context.Context, id string, fields map[string]interface{}) (*domain.Budget, error) {
	return update[domain.Budget](ctx, s.db, id, fields)
}

// DeleteBudget removes a budget and its category allocations
func (s *Store) DeleteBudget(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("budget_id = ?", id).Delete(&domain.BudgetCategory{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Budget{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("budget not found")
		}
		return nil
	})
}

// UpsertAllocation sets the allocated amount for a budget/category pair
func (s *Store) UpsertAllocation(ctx context.Context, budgetID, categoryID string, allocated decimal.Decimal) (*domain.BudgetCategory, error) {
	var out domain.BudgetCategory
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []domain.BudgetCategory
		if err := tx.Where("budget_id = ? AND category_id = ?", budgetID, categoryID).Limit(1).Find(&existing).Error; err != nil {
			return err
		}
		if len(existing) == 0 {
			out = domain.BudgetCategory{BudgetID: budgetID, CategoryID: categoryID, AllocatedAmount: allocated}
			return tx.Create(&out).Error
		}
		out = existing[0]
		out.AllocatedAmount = allocated
		return tx.Model(&domain.BudgetCategory{}).Where("id = ?", out.ID).Update("allocated_amount", allocated).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAllocation removes a budget/category pair, reporting whether it existed
func (s *Store) DeleteAllocation(ctx context.Context, budgetID, categoryID string) (bool, error) {
	res := s.db.WithContext(ctx).
		Where("budget_id = ? AND category_id = ?", budgetID, categoryID).
		Delete(&domain.BudgetCategory{})
	return res.RowsAffected > 0, res.Error
}

// ListAllocations returns a budget's category allocations
func (s *Store) ListAllocations(ctx context.Context, budgetID string) ([]domain.BudgetCategory, error) {
	var rows []domain.BudgetCategory
	err := s.db.WithContext(ctx).Where("budget_id = ?", budgetID).Order("created_at asc").Find(&rows).Error
	return rows, err
}

// CountCategoryAllocations counts allocations pointing at a category
func (s *Store) CountCategoryAllocations(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.BudgetCategory{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

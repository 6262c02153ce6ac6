package store

import (
	"context"

	"finance_tracker/internal/domain"

	"gorm.io/gorm"
)

// CreateCategory inserts c
func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	return s.db.WithContext(ctx).Create(c).Error
}

// FindCategory loads a category by id
func (s *Store) FindCategory(ctx context.Context, id string) (*domain.Category, error) {
	return first[domain.Category](ctx, s.db, id)
}

// ListCategories returns a user's categories ordered by name
func (s *Store) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	var categories []domain.Category
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("name asc").Find(&categories).Error
	return categories, err
}

// UpdateCategory applies fields to a category
func (s *Store) UpdateCategory(ctx context.Context, id string, fields map[string]interface{}) (*domain.Category, error) {
	return update[domain.Category](ctx, s.db, id, fields)
}

func categoryInUse(tx *gorm.DB, id string) (bool, error) {
	var count int64
	err := tx.Model(&domain.Transaction{}).Where("category_id = ?", id).Limit(1).Count(&count).Error
	return count > 0, err
}

// DeleteCategory removes a category and its budget allocations. It fails with
// Conflict while any transaction still references the category.
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inUse, err := categoryInUse(tx, id)
		if err != nil {
			return err
		}
		if inUse {
			return domain.Conflict("cannot delete category with existing transactions")
		}
		if err := tx.Where("category_id = ?", id).Delete(&domain.BudgetCategory{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Category{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("category not found")
		}
		return nil
	})
}

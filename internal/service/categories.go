package service

import (
	"context"
	"strings"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/policy"

	"github.com/sirupsen/logrus"
)

// CategoryInput carries the writable category fields
type CategoryInput struct {
	UserID    string
	Name      string
	Type      domain.CategoryType
	Icon      string
	Color     string
	IsDefault bool
	IsActive  *bool
}

func (in *CategoryInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.InvalidInput("category name is required")
	}
	if !in.Type.Valid() {
		return domain.InvalidInput("invalid category type %q", in.Type)
	}
	return nil
}

func (s *FinanceService) category(ctx context.Context, sess policy.Session, op policy.Op, id string) (*domain.Category, error) {
	c, err := s.store.FindCategory(ctx, id) // (nil, nil) when missing
	return policy.Guard(sess, op, "category", c, err)
}

// Category returns one category
func (s *FinanceService) Category(ctx context.Context, sess policy.Session, id string) (*domain.Category, error) {
	return s.category(ctx, sess, policy.OpRead, id)
}

// Categories lists a user's categories
func (s *FinanceService) Categories(ctx context.Context, sess policy.Session, userID string) ([]domain.Category, error) {
	if err := policy.Authorize(sess, policy.OpList, userID); err != nil {
		return nil, err
	}
	return s.store.ListCategories(ctx, userID)
}

// CreateCategory adds a category
func (s *FinanceService) CreateCategory(ctx context.Context, sess policy.Session, in CategoryInput) (*domain.Category, error) {
	if err := policy.Authorize(sess, policy.OpCreate, in.UserID); err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}
	c := &domain.Category{
		UserID:    in.UserID,
		Name:      in.Name,
		Type:      in.Type,
		Icon:      in.Icon,
		Color:     in.Color,
		IsDefault: in.IsDefault,
		IsActive:  in.IsActive == nil || *in.IsActive,
	}
	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCategory replaces a category's fields
func (s *FinanceService) UpdateCategory(ctx context.Context, sess policy.Session, id string, in CategoryInput) (*domain.Category, error) {
	if _, err := s.category(ctx, sess, policy.OpUpdate, id); err != nil {
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
		"type":       in.Type,
		"icon":       in.Icon,
		"color":      in.Color,
		"is_default": in.IsDefault,
	}
	if in.IsActive != nil {
		fields["is_active"] = *in.IsActive
	}
	c, err := s.store.UpdateCategory(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("category not found") // Deleted since the ownership check
	}
	return c, nil
}

// DeleteCategory removes an unused category and its budget allocations
func (s *FinanceService) DeleteCategory(ctx context.Context, sess policy.Session, id string) (bool, error) {
	c, err := s.category(ctx, sess, policy.OpDelete, id)
	if err != nil {
		return false, err
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil { // Conflict while still referenced
		return false, err
	}
	logrus.WithFields(logrus.Fields{"user_id": c.UserID, "category_id": id}).Info("Category deleted")
	return true, nil
}

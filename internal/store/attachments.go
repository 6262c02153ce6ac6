package store

import (
	"context"

	"finance_tracker/internal/domain"
)

// CreateAttachment inserts a
func (s *Store) CreateAttachment(ctx context.Context, a *domain.Attachment) error {
	return s.db.WithContext(ctx).Create(a).Error
}

// FindAttachment loads an attachment by id
func (s *Store) FindAttachment(ctx context.Context, id string) (*domain.Attachment, error) {
	return first[domain.Attachment](ctx, s.db, id)
}

// ListAttachments returns the attachments of a transaction
func (s *Store) ListAttachments(ctx context.Context, transactionID string) ([]domain.Attachment, error) {
	var rows []domain.Attachment
	err := s.db.WithContext(ctx).Where("transaction_id = ?", transactionID).Order("uploaded_at asc").Find(&rows).Error
	return rows, err
}

// CountAttachments counts attachments across the given transactions
func (s *Store) CountAttachments(ctx context.Context, transactionIDs ...string) (int64, error) {
	var count int64
	if len(transactionIDs) == 0 {
		return 0, nil
	}
	err := s.db.WithContext(ctx).Model(&domain.Attachment{}).Where("transaction_id IN ?", transactionIDs).Count(&count).Error
	return count, err
}

// DeleteAttachment removes one attachment
func (s *Store) DeleteAttachment(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Attachment{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("attachment not found")
	}
	return nil
}

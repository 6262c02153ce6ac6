package service

import (
	"context"
	"strings"

	"finance_tracker/internal/domain"
	"finance_tracker/internal/policy"
)

// AttachmentInput describes an uploaded file. The file itself lives at FileURL.
type AttachmentInput struct {
	FileName string
	FileType string
	FileURL  string
	FileSize int64
}

// Attachments lists the attachments of a transaction
func (s *FinanceService) Attachments(ctx context.Context, sess policy.Session, transactionID string) ([]domain.Attachment, error) {
	if _, err := s.transaction(ctx, sess, policy.OpList, transactionID); err != nil {
		return nil, err
	}
	return s.store.ListAttachments(ctx, transactionID)
}

// CreateAttachment records file metadata on a transaction
func (s *FinanceService) CreateAttachment(ctx context.Context, sess policy.Session, transactionID string, in AttachmentInput) (*domain.Attachment, error) {
	if _, err := s.transaction(ctx, sess, policy.OpUpdate, transactionID); err != nil {
		return nil, err
	}
	in.FileName = strings.TrimSpace(in.FileName)
	in.FileURL = strings.TrimSpace(in.FileURL)
	if in.FileName == "" || in.FileURL == "" {
		return nil, domain.InvalidInput("file name and url are required")
	}
	if in.FileSize < 0 {
		return nil, domain.InvalidInput("file size must not be negative")
	}
	a := &domain.Attachment{
		TransactionID: transactionID,
		FileName:      in.FileName,
		FileType:      in.FileType,
		FileURL:       in.FileURL,
		FileSize:      in.FileSize,
		UploadedAt:    s.now().UTC(),
	}
	if err := s.store.CreateAttachment(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAttachment removes an attachment; ownership follows its transaction
func (s *FinanceService) DeleteAttachment(ctx context.Context, sess policy.Session, id string) (bool, error) {
	if !sess.Authenticated() {
		return false, domain.Unauthenticated("not authenticated")
	}
	a, err := s.store.FindAttachment(ctx, id)
	if err != nil {
		return false, err
	}
	if a == nil {
		return false, domain.NotFound("attachment not found")
	}
	if _, err := s.transaction(ctx, sess, policy.OpDelete, a.TransactionID); err != nil {
		return false, err
	}
	if err := s.store.DeleteAttachment(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

package store

import (
	"context"
	"time"

	"finance_tracker/internal/domain"

	"gorm.io/gorm"
)

// CreateUser inserts u. Duplicate emails surface as gorm.ErrDuplicatedKey.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

// FindUser loads a user by id
func (s *Store) FindUser(ctx context.Context, id string) (*domain.User, error) {
	return first[domain.User](ctx, s.db, id)
}

// FindUserByEmail loads a user by email
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var users []domain.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).Limit(1).Find(&users).Error; err != nil { // Find avoids a record-not-found log line
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// CreateSession stores a new refresh session
func (s *Store) CreateSession(ctx context.Context, sess *domain.Session) error {
	return s.db.WithContext(ctx).Create(sess).Error
}

// FindSessionByTokenHash loads the session issued for a refresh token hash
func (s *Store) FindSessionByTokenHash(ctx context.Context, hash string) (*domain.Session, error) {
	var sessions []domain.Session
	if err := s.db.WithContext(ctx).Where("token_hash = ?", hash).Limit(1).Find(&sessions).Error; err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[0], nil
}

// RotateSession revokes prev and stores next in one database transaction. The
// revocation only matches an unrevoked row, so of two concurrent rotations of
// the same token exactly one succeeds; the loser gets ErrStale.
func (s *Store) RotateSession(ctx context.Context, prev *domain.Session, next *domain.Session, now time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Session{}).
			Where("id = ? AND revoked_at IS NULL", prev.ID).
			Update("revoked_at", now)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStale
		}
		return tx.Create(next).Error
	})
}

// RevokeSession marks one session revoked; revoking twice is a no-op
func (s *Store) RevokeSession(ctx context.Context, id string, now time.Time) error {
	return s.db.WithContext(ctx).Model(&domain.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", now).Error
}

// RevokeFamily revokes every live session in a rotation lineage
func (s *Store) RevokeFamily(ctx context.Context, familyID string, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Model(&domain.Session{}).
		Where("family_id = ? AND revoked_at IS NULL", familyID).
		Update("revoked_at", now)
	return res.RowsAffected, res.Error
}

// ListActiveSessions returns the user's unrevoked, unexpired sessions
func (s *Store) ListActiveSessions(ctx context.Context, userID string, now time.Time) ([]domain.Session, error) {
	var sessions []domain.Session
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND revoked_at IS NULL AND expires_at > ?", userID, now).
		Order("created_at desc").
		Find(&sessions).Error
	return sessions, err
}

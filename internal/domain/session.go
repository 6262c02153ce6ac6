package domain

import "time"

// Session is one refresh-token generation. Rotation revokes the presented
// session and creates a child in the same family.
type Session struct {
	Base
	UserID    string     `gorm:"type:char(36);index;not null"` // Owning user
	FamilyID  string     `gorm:"type:char(36);index;not null"` // Root of the rotation lineage
	ParentID  *string    `gorm:"type:char(36)"`                // Session this one was rotated from
	TokenHash string     `gorm:"size:64;uniqueIndex;not null"` // sha256 hex of the opaque refresh token
	ExpiresAt time.Time  `gorm:"not null"`                     // Absolute expiry
	RevokedAt *time.Time `gorm:"index"`                        // Set on rotation, logout or replay detection
	UserAgent string     `gorm:"size:255"`                     // Client user agent at issuance
	IP        string     `gorm:"size:64"`                      // Client IP at issuance
}

// Active reports whether the session can still be redeemed at now
func (s *Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

package domain

import (
	"time"

	"github.com/google/uuid" // UUID primary keys
	"gorm.io/gorm"           // GORM hooks
)

// Base carries the columns shared by every model
type Base struct {
	ID        string    `gorm:"type:char(36);primaryKey"` // UUID primary key
	CreatedAt time.Time // Set by GORM on insert
	UpdatedAt time.Time // Set by GORM on insert and update
}

// BeforeCreate assigns a UUID when the caller did not provide one
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

package domain

import "time"

// Attachment is metadata about a file attached to a transaction
type Attachment struct {
	Base
	TransactionID string    `gorm:"type:char(36);index;not null"` // Foreign key to Transaction
	FileName      string    `gorm:"size:255;not null"`
	FileType      string    `gorm:"size:100;not null"`
	FileURL       string    `gorm:"size:1024;not null"`
	FileSize      int64     `gorm:"not null"`
	UploadedAt    time.Time `gorm:"not null"`
}

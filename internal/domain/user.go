package domain

// User Model
type User struct {
	Base
	Email        string `gorm:"size:255;uniqueIndex;not null"` // Unique login email
	PasswordHash string `gorm:"not null"`                      // bcrypt hash
	Salt         string `gorm:"size:64"`                       // Per-user salt, empty when hashed without one
	FirstName    string `gorm:"size:100;not null"`             // Given name
	LastName     string `gorm:"size:100;not null"`             // Family name
	Currency     string `gorm:"size:3;not null"`               // Display currency (ISO 4217)
}

// OwnerID returns the user's own id, users own themselves
func (u *User) OwnerID() string { return u.ID }

package service

import (
	"crypto/rand"  // Salt generation
	"encoding/hex" // Salt encoding
	"strings"      // Character class checks
	"unicode"      // Character classes

	"finance_tracker/internal/domain" // Error taxonomy

	"golang.org/x/crypto/bcrypt" // Password hashing
)

// Password policies
const (
	PasswordStrict = "strict" // Upper, lower, digit and symbol required
	PasswordBasic  = "basic"  // Length only
)

// Hash policies
const (
	HashSalted = "salted" // bcrypt over password+salt
	HashPlain  = "plain"  // bcrypt over password
)

const (
	minPasswordLen  = 8
	maxPasswordLen  = 56 // 56 bytes of password plus a 16 char salt fill bcrypt's 72 byte input
	saltBytes       = 8
	passwordSymbols = "@$!%*?&"
)

// checkPassword enforces the configured password policy
func checkPassword(policy, password string) error {
	if len(password) < minPasswordLen {
		return domain.InvalidInput("password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return domain.InvalidInput("password must be at most %d bytes", maxPasswordLen)
	}
	if policy != PasswordStrict {
		return nil
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case r <= unicode.MaxASCII && unicode.IsUpper(r):
			upper = true
		case r <= unicode.MaxASCII && unicode.IsLower(r):
			lower = true
		case r <= unicode.MaxASCII && unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return domain.InvalidInput("password may only contain letters, digits and %s", passwordSymbols)
		}
	}
	if !upper || !lower || !digit || !symbol {
		return domain.InvalidInput("password must contain an uppercase letter, a lowercase letter, a digit and one of %s", passwordSymbols)
	}
	return nil
}

// hashPassword returns the bcrypt hash and the salt it was computed with
func hashPassword(policy, password string, cost int) (hash, salt string, err error) {
	if policy == HashSalted {
		b := make([]byte, saltBytes)
		if _, err := rand.Read(b); err != nil {
			return "", "", err
		}
		salt = hex.EncodeToString(b)
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password+salt), cost)
	if err != nil {
		return "", "", err
	}
	return string(h), salt, nil
}

// verifyPassword checks password against a stored hash and salt. The stored
// salt decides the scheme, so users keep working after the hash policy changes.
func verifyPassword(hash, salt, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password+salt)) == nil
}

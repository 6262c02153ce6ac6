package service

import (
	"context"
	"testing"
	"time"

	"finance_tracker/internal/db"
	"finance_tracker/internal/store"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenMemory()
	require.NoError(t, err, "failed to create test database")
	return gdb
}

func newTestStore(t *testing.T) *store.Store {
	return store.New(newTestDB(t))
}

// bumpVersions makes the next times guarded writes to transactions find the
// row one version ahead, the way a concurrent writer would. It returns the
// number of bumps made so far.
func bumpVersions(t *testing.T, gdb *gorm.DB, times int) *int {
	t.Helper()
	bumps := new(int)
	bump := func(tx *gorm.DB) {
		if tx.Statement.Table != "transactions" || *bumps >= times {
			return
		}
		*bumps++
		tx.Session(&gorm.Session{NewDB: true}).Exec("UPDATE transactions SET version = version + 1") // Same database transaction
	}
	require.NoError(t, gdb.Callback().Update().Before("gorm:update").Register("test:bump_version_update", bump))
	require.NoError(t, gdb.Callback().Delete().Before("gorm:delete").Register("test:bump_version_delete", bump))
	return bumps
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:       "test-secret",
		JWTIssuer:       "finance_tracker",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		PasswordPolicy:  PasswordStrict,
		HashPolicy:      HashSalted,
		BcryptCost:      bcrypt.MinCost,
	}
}

func registerInput(email string) RegisterInput {
	return RegisterInput{
		Email:     email,
		Password:  "Str0ng!Pass",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Currency:  "usd",
	}
}

var bg = context.Background()

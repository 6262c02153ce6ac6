package db

import (
	"finance_tracker/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus" // Structured logging
	"gorm.io/gorm"               // GORM ORM library
)

// Models lists every table the service owns, in creation order
func Models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Session{},
		&domain.Account{},
		&domain.Category{},
		&domain.Transaction{},
		&domain.Attachment{},
		&domain.Budget{},
		&domain.BudgetCategory{},
	}
}

// Migrate performs automatic migration for the database schema
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing columns and indexes
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	logrus.WithField("tables", len(Models())).Info("Migration completed.") // Log successful migration
	return nil
}

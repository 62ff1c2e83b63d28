package db

import (
	"fmt"

	"github.com/aramkechichian/fintech-credits/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for every persisted model.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	return conn.AutoMigrate(
		&models.User{},
		&models.CountryRule{},
		&models.CreditRequest{},
		&models.AuditLog{},
	)
}

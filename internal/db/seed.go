package db

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/aramkechichian/fintech-credits/internal/models"
	"github.com/aramkechichian/fintech-credits/internal/security"
)

// EnsureAdminUser creates the administrator account when it does not exist.
// Seeding is skipped, with a warning, when no password is configured.
func EnsureAdminUser(ctx context.Context, conn *gorm.DB, email, password, fullName string) error {
	if email == "" {
		return nil
	}

	var existing models.User
	errFind := conn.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if errFind == nil {
		return nil
	}
	if !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return errFind
	}

	if password == "" {
		log.WithField("email", email).Warn("admin password not configured, skipping admin seed")
		return nil
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		return errHash
	}

	now := time.Now().UTC()
	admin := models.User{
		Email:     email,
		FullName:  fullName,
		Password:  hash,
		Active:    true,
		IsAdmin:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := conn.WithContext(ctx).Create(&admin).Error; errCreate != nil {
		return errCreate
	}
	log.WithField("email", email).Info("seeded admin user")
	return nil
}

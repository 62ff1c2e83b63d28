package models

import "time"

// User represents an account that can submit credit requests.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Email    string `gorm:"type:text;not null;uniqueIndex"` // Unique login email.
	FullName string `gorm:"type:text;not null"`             // Display name.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	Active  bool `gorm:"not null;default:true"`  // Whether the user can sign in.
	IsAdmin bool `gorm:"not null;default:false"` // Grants rule management and exports.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

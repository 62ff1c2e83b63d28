package models

import (
	"time"

	"gorm.io/datatypes"
)

// AffordabilityRule caps the requested amount as a percentage of monthly income.
type AffordabilityRule struct {
	MaxPercentage float64 `json:"max_percentage"`          // Maximum percentage of monthly income that can be requested.
	Enabled       bool    `json:"enabled"`                 // Whether this rule is evaluated.
	ErrorMessage  string  `json:"error_message,omitempty"` // Custom message reported when the rule is violated.
}

// CountryRule holds the admission rules applied to credit requests for one country.
type CountryRule struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Country              Country `gorm:"type:text;not null;index"` // Country the rule applies to.
	RequiredDocumentType string  `gorm:"type:text;not null"`       // Document type label required for this country.
	Description          string  `gorm:"type:text"`                // Human-readable description.

	// No column default here: GORM would omit an explicit false from the
	// INSERT and the rule would come back active.
	IsActive bool `gorm:"not null"` // Soft-delete flag; only active rules are enforced.

	ValidationRules datatypes.JSONSlice[AffordabilityRule] `gorm:"type:jsonb"` // Ordered affordability rules.

	CreatedBy *uint64 `gorm:"index"` // User who created the rule.
	UpdatedBy *uint64 `gorm:"index"` // User who last updated the rule.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

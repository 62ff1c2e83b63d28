package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records one handled API request for the audit trail.
type AuditLog struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Endpoint string `gorm:"type:text;not null;index"` // Request path.
	Method   string `gorm:"type:text;not null;index"` // HTTP method.

	UserID    *uint64 `gorm:"index"`     // Authenticated user, when known.
	RequestID string  `gorm:"type:text"` // Correlation ID assigned by the router.

	Payload datatypes.JSON `gorm:"type:jsonb"` // Sanitized request body.

	ResponseStatus int    `gorm:"not null"`  // HTTP status code returned.
	IsSuccess      bool   `gorm:"not null"`  // Whether the request succeeded.
	ErrorMessage   string `gorm:"type:text"` // Error detail for failed requests.

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index"` // Creation timestamp.
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// CreditRequestStatus tracks the lifecycle of a credit request.
type CreditRequestStatus string

// Credit request lifecycle states.
const (
	// CreditRequestPending is the initial state after creation.
	CreditRequestPending CreditRequestStatus = "pending"
	// CreditRequestInReview marks a request under manual review.
	CreditRequestInReview CreditRequestStatus = "in_review"
	// CreditRequestApproved marks an approved request.
	CreditRequestApproved CreditRequestStatus = "approved"
	// CreditRequestRejected marks a rejected request.
	CreditRequestRejected CreditRequestStatus = "rejected"
	// CreditRequestCancelled marks a request cancelled by the user.
	CreditRequestCancelled CreditRequestStatus = "cancelled"
)

// IsValid reports whether the status is a known lifecycle state.
func (s CreditRequestStatus) IsValid() bool {
	switch s {
	case CreditRequestPending, CreditRequestInReview, CreditRequestApproved,
		CreditRequestRejected, CreditRequestCancelled:
		return true
	default:
		return false
	}
}

// BankInformation holds account data returned by a bank provider.
type BankInformation struct {
	BankName      string         `json:"bank_name,omitempty"`
	AccountNumber string         `json:"account_number,omitempty"`
	AccountType   string         `json:"account_type,omitempty"`
	RoutingNumber string         `json:"routing_number,omitempty"`
	IBAN          string         `json:"iban,omitempty"`
	SWIFT         string         `json:"swift,omitempty"`
	ProviderData  map[string]any `json:"provider_data,omitempty"` // Raw provider payload.
}

// CreditRequest represents a persisted loan application.
type CreditRequest struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID uint64 `gorm:"not null;index"` // User who submitted the request.

	Country      Country `gorm:"type:text;not null;index"` // Country of the applicant.
	CurrencyCode string  `gorm:"type:text;not null"`       // Currency derived from the country.

	FullName         string `gorm:"type:text;not null"`       // Applicant full name.
	Email            string `gorm:"type:text"`                // Notification email.
	IdentityDocument string `gorm:"type:text;not null;index"` // National identity document as submitted.

	RequestedAmount float64 `gorm:"not null"` // Requested loan amount.
	MonthlyIncome   float64 `gorm:"not null"` // Declared monthly income.

	RequestDate time.Time           `gorm:"not null;index"`                         // Submission timestamp.
	Status      CreditRequestStatus `gorm:"type:text;not null;default:'pending'"`   // Lifecycle state.

	BankInformation datatypes.JSON `gorm:"type:jsonb"` // Provider bank data, when available.

	User User `gorm:"foreignKey:UserID"` // Owning user relation.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

package validation

import (
	"strings"

	"github.com/aramkechichian/fintech-credits/internal/models"
)

// RuleType discriminates the kind of rule behind a violation.
type RuleType string

// Rule types reported in violation records.
const (
	// RuleTypeDocumentFormat marks a document pattern or checksum failure.
	RuleTypeDocumentFormat RuleType = "document_format"
	// RuleTypeAmountToIncomeRatio marks an affordability cap failure.
	RuleTypeAmountToIncomeRatio RuleType = "amount_to_income_ratio"
)

// RuleViolation is one individual rule failure found during validation.
type RuleViolation struct {
	RuleType     RuleType `json:"rule_type"`
	ErrorMessage string   `json:"error_message"`

	// Document-format fields.
	DocumentType string `json:"document_type,omitempty"`

	// Affordability fields.
	MaxPercentage       *float64 `json:"max_percentage,omitempty"`
	RequestedPercentage *float64 `json:"requested_percentage,omitempty"`
	RequestedAmount     *float64 `json:"requested_amount,omitempty"`
	MonthlyIncome       *float64 `json:"monthly_income,omitempty"`
}

// RuleDetails is the structured payload attached to a validation failure.
type RuleDetails struct {
	Country              models.Country  `json:"country"`
	RequiredDocumentType string          `json:"required_document_type"`
	Errors               []RuleViolation `json:"errors"`
	Summary              string          `json:"summary"`
}

// Error aggregates every rule violation found in a single validation pass.
// It is the contract exposed to callers: all violations are reported together
// so the user sees every problem at once.
type Error struct {
	Message     string      `json:"message"`
	RuleDetails RuleDetails `json:"rule_details"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.RuleDetails.Summary == "" {
		return e.Message
	}
	return e.Message + ": " + e.RuleDetails.Summary
}

// failureMessage is the fixed top-level message of an aggregate failure.
const failureMessage = "request does not satisfy country validation rules"

// newError finalizes a violation list into one aggregate failure value.
func newError(country models.Country, requiredDocumentType string, violations []RuleViolation) *Error {
	messages := make([]string, 0, len(violations))
	for _, violation := range violations {
		messages = append(messages, violation.ErrorMessage)
	}
	return &Error{
		Message: failureMessage,
		RuleDetails: RuleDetails{
			Country:              country,
			RequiredDocumentType: requiredDocumentType,
			Errors:               violations,
			Summary:              strings.Join(messages, "; "),
		},
	}
}

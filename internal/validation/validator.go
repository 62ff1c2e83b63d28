// Package validation implements the country rule validation engine: pure,
// synchronous admission checks for credit requests, combining per-country
// document format validators with configurable affordability rules.
package validation

import (
	"context"
	"fmt"
	"math"

	"github.com/aramkechichian/fintech-credits/internal/models"
)

// RuleSource looks up the single active country rule for a country. A nil
// rule with a nil error signals that no rule is configured.
type RuleSource interface {
	ActiveRule(ctx context.Context, country models.Country) (*models.CountryRule, error)
}

// Validator decides whether a credit request is admissible for a country.
// It holds no mutable state and is safe for concurrent use; the rule is
// re-fetched on every call so rule updates apply immediately.
type Validator struct {
	rules RuleSource
}

// NewValidator constructs a Validator over the given rule source.
func NewValidator(rules RuleSource) *Validator {
	return &Validator{rules: rules}
}

// Validate checks one credit request candidate against the active rule for
// its country. Countries without an active rule pass unconditionally. On
// failure the returned error is a *Error carrying every violation found,
// document errors first, then affordability errors in rule order.
func (v *Validator) Validate(ctx context.Context, country models.Country, document string, requestedAmount, monthlyIncome float64) error {
	rule, errFetch := v.rules.ActiveRule(ctx, country)
	if errFetch != nil {
		return fmt.Errorf("fetch country rule: %w", errFetch)
	}
	if rule == nil || !rule.IsActive {
		return nil
	}

	var violations []RuleViolation

	if errDoc := CheckDocument(country, rule.RequiredDocumentType, document); errDoc != nil {
		violations = append(violations, RuleViolation{
			RuleType:     RuleTypeDocumentFormat,
			ErrorMessage: errDoc.Error(),
			DocumentType: rule.RequiredDocumentType,
		})
	}

	for _, affordability := range rule.ValidationRules {
		if !affordability.Enabled {
			continue
		}
		if violation := evaluateAffordability(affordability, requestedAmount, monthlyIncome); violation != nil {
			violations = append(violations, *violation)
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return newError(country, rule.RequiredDocumentType, violations)
}

// evaluateAffordability applies one enabled affordability rule. The
// comparison uses full precision; only the reported percentage is rounded.
func evaluateAffordability(rule models.AffordabilityRule, requestedAmount, monthlyIncome float64) *RuleViolation {
	if monthlyIncome <= 0 {
		return &RuleViolation{
			RuleType:      RuleTypeAmountToIncomeRatio,
			ErrorMessage:  "monthly income must be greater than zero",
			MaxPercentage: ptr(rule.MaxPercentage),
			MonthlyIncome: ptr(monthlyIncome),
		}
	}

	percentage := requestedAmount / monthlyIncome * 100
	if percentage <= rule.MaxPercentage {
		return nil
	}

	reported := math.Round(percentage*100) / 100
	message := rule.ErrorMessage
	if message == "" {
		message = fmt.Sprintf("requested amount %.2f exceeds %.2f%% of monthly income (requested %.2f%%)",
			requestedAmount, rule.MaxPercentage, reported)
	}
	return &RuleViolation{
		RuleType:            RuleTypeAmountToIncomeRatio,
		ErrorMessage:        message,
		MaxPercentage:       ptr(rule.MaxPercentage),
		RequestedPercentage: ptr(reported),
		RequestedAmount:     ptr(requestedAmount),
		MonthlyIncome:       ptr(monthlyIncome),
	}
}

// ptr returns a pointer to the given float for optional JSON fields.
func ptr(v float64) *float64 { return &v }

// Package rules persists country validation rules and exposes them to the
// validation engine and the admin API.
package rules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aramkechichian/fintech-credits/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Store errors.
var (
	// ErrActiveRuleExists indicates a country already has an active rule.
	ErrActiveRuleExists = errors.New("active country rule already exists")
	// ErrRuleNotFound indicates the requested rule does not exist.
	ErrRuleNotFound = errors.New("country rule not found")
	// ErrEmptyPatch indicates an update carried no fields.
	ErrEmptyPatch = errors.New("no fields to update")
)

// Store provides database-backed access to country rules.
type Store struct {
	db *gorm.DB
}

// NewStore constructs a Store backed by GORM.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// ActiveRule returns the single active rule for a country, or nil when none
// is configured. It implements validation.RuleSource.
func (s *Store) ActiveRule(ctx context.Context, country models.Country) (*models.CountryRule, error) {
	var rule models.CountryRule
	errFind := s.db.WithContext(ctx).
		Where("country = ? AND is_active = ?", country, true).
		Order("id ASC").
		First(&rule).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errFind
	}
	return &rule, nil
}

// Create inserts a new country rule. At most one active rule may exist per
// country at a time.
func (s *Store) Create(ctx context.Context, rule *models.CountryRule) error {
	if rule.IsActive {
		existing, errActive := s.ActiveRule(ctx, rule.Country)
		if errActive != nil {
			return errActive
		}
		if existing != nil {
			return fmt.Errorf("%w for %s", ErrActiveRuleExists, rule.Country)
		}
	}
	return s.db.WithContext(ctx).Create(rule).Error
}

// GetByID returns one rule by primary key.
func (s *Store) GetByID(ctx context.Context, id uint64) (*models.CountryRule, error) {
	var rule models.CountryRule
	if errFind := s.db.WithContext(ctx).First(&rule, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrRuleNotFound
		}
		return nil, errFind
	}
	return &rule, nil
}

// List returns rules with pagination and an optional active filter, plus the
// total matching count.
func (s *Store) List(ctx context.Context, offset, limit int, isActive *bool) ([]models.CountryRule, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.CountryRule{})
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	var total int64
	if errCount := query.Count(&total).Error; errCount != nil {
		return nil, 0, errCount
	}

	var out []models.CountryRule
	if errFind := query.Order("id ASC").Offset(offset).Limit(limit).Find(&out).Error; errFind != nil {
		return nil, 0, errFind
	}
	return out, total, nil
}

// Patch holds the optional fields of a rule update. Nil fields are left
// untouched; the rule list is replaced wholesale when present.
type Patch struct {
	RequiredDocumentType *string
	Description          *string
	IsActive             *bool
	ValidationRules      *[]models.AffordabilityRule
}

// Update applies a partial update to a rule and returns the updated record.
func (s *Store) Update(ctx context.Context, id uint64, patch Patch, updatedBy *uint64) (*models.CountryRule, error) {
	updates := map[string]any{}
	if patch.RequiredDocumentType != nil {
		updates["required_document_type"] = *patch.RequiredDocumentType
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if patch.ValidationRules != nil {
		updates["validation_rules"] = datatypes.NewJSONSlice(*patch.ValidationRules)
	}
	if len(updates) == 0 {
		return nil, ErrEmptyPatch
	}
	updates["updated_by"] = updatedBy
	updates["updated_at"] = time.Now().UTC()

	result := s.db.WithContext(ctx).Model(&models.CountryRule{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrRuleNotFound
	}
	return s.GetByID(ctx, id)
}

// SoftDelete deactivates a rule without removing it.
func (s *Store) SoftDelete(ctx context.Context, id uint64, updatedBy *uint64) error {
	result := s.db.WithContext(ctx).Model(&models.CountryRule{}).Where("id = ?", id).Updates(map[string]any{
		"is_active":  false,
		"updated_by": updatedBy,
		"updated_at": time.Now().UTC(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// HardDelete permanently removes a rule.
func (s *Store) HardDelete(ctx context.Context, id uint64) error {
	result := s.db.WithContext(ctx).Delete(&models.CountryRule{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}

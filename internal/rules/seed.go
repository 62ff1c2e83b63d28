package rules

import (
	"context"
	"errors"
	"fmt"

	"github.com/aramkechichian/fintech-credits/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// defaultRule describes one seeded country rule.
type defaultRule struct {
	country       models.Country
	maxPercentage float64
}

// defaultRules are created at startup for countries with no configured rule.
var defaultRules = []defaultRule{
	{models.CountrySpain, 30},
	{models.CountryPortugal, 30},
	{models.CountryItaly, 35},
	{models.CountryMexico, 40},
	{models.CountryColombia, 50},
	{models.CountryBrazil, 35},
}

// SeedDefaults creates the default rule for every country that has no rule
// yet, active or not. Existing rules are never touched.
func (s *Store) SeedDefaults(ctx context.Context) error {
	created := 0
	for _, def := range defaultRules {
		var existing models.CountryRule
		errFind := s.db.WithContext(ctx).Where("country = ?", def.country).First(&existing).Error
		if errFind == nil {
			continue
		}
		if !errors.Is(errFind, gorm.ErrRecordNotFound) {
			return errFind
		}

		docType := def.country.DocumentType()
		rule := models.CountryRule{
			Country:              def.country,
			RequiredDocumentType: docType,
			Description:          fmt.Sprintf("Validation rules for %s - %s required", def.country, docType),
			IsActive:             true,
			ValidationRules: datatypes.NewJSONSlice([]models.AffordabilityRule{{
				MaxPercentage: def.maxPercentage,
				Enabled:       true,
				ErrorMessage:  fmt.Sprintf("requested amount cannot exceed %.0f%% of monthly income", def.maxPercentage),
			}}),
		}
		if errCreate := s.Create(ctx, &rule); errCreate != nil {
			return fmt.Errorf("seed rule for %s: %w", def.country, errCreate)
		}
		created++
	}
	if created > 0 {
		log.Infof("seeded %d default country rules", created)
	}
	return nil
}

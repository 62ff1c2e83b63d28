package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/aramkechichian/fintech-credits/internal/models"
	"github.com/aramkechichian/fintech-credits/internal/rules"
)

// CountryRuleHandler manages admin CRUD endpoints for country rules.
type CountryRuleHandler struct {
	store *rules.Store
}

// NewCountryRuleHandler constructs a CountryRuleHandler.
func NewCountryRuleHandler(store *rules.Store) *CountryRuleHandler {
	return &CountryRuleHandler{store: store}
}

// affordabilityRuleBody mirrors one affordability rule in request payloads.
type affordabilityRuleBody struct {
	MaxPercentage float64 `json:"max_percentage"` // Cap as percent of income.
	Enabled       bool    `json:"enabled"`        // Whether the rule is evaluated.
	ErrorMessage  string  `json:"error_message"`  // Optional custom message.
}

// createCountryRuleBody captures the payload for creating a rule.
type createCountryRuleBody struct {
	Country              string                  `json:"country"`                // Country name.
	RequiredDocumentType string                  `json:"required_document_type"` // Expected document label.
	Description          string                  `json:"description"`            // Free-form description.
	IsActive             *bool                   `json:"is_active"`              // Defaults to true.
	ValidationRules      []affordabilityRuleBody `json:"validation_rules"`       // Affordability rules.
}

// toModelRules converts payload rules into model rules with bounds checks.
func toModelRules(in []affordabilityRuleBody) ([]models.AffordabilityRule, error) {
	out := make([]models.AffordabilityRule, 0, len(in))
	for _, rule := range in {
		// No upper bound: caps above 100% of income are a valid policy.
		if rule.MaxPercentage <= 0 {
			return nil, errors.New("max_percentage must be greater than zero")
		}
		out = append(out, models.AffordabilityRule{
			MaxPercentage: rule.MaxPercentage,
			Enabled:       rule.Enabled,
			ErrorMessage:  strings.TrimSpace(rule.ErrorMessage),
		})
	}
	return out, nil
}

// formatRule renders one rule for API responses.
func formatRule(rule *models.CountryRule) gin.H {
	return gin.H{
		"id":                     rule.ID,
		"country":                rule.Country,
		"required_document_type": rule.RequiredDocumentType,
		"description":            rule.Description,
		"is_active":              rule.IsActive,
		"validation_rules":       rule.ValidationRules,
		"created_by":             rule.CreatedBy,
		"updated_by":             rule.UpdatedBy,
		"created_at":             rule.CreatedAt,
		"updated_at":             rule.UpdatedAt,
	}
}

// Create validates input and inserts a country rule.
func (h *CountryRuleHandler) Create(c *gin.Context) {
	var body createCountryRuleBody
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	country, okCountry := models.ParseCountry(body.Country)
	if !okCountry {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported country"})
		return
	}
	documentType := strings.TrimSpace(body.RequiredDocumentType)
	if documentType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "required_document_type is required"})
		return
	}
	ruleList, errRules := toModelRules(body.ValidationRules)
	if errRules != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errRules.Error()})
		return
	}

	isActive := true
	if body.IsActive != nil {
		isActive = *body.IsActive
	}

	userID := getUserID(c)
	now := time.Now().UTC()
	rule := models.CountryRule{
		Country:              country,
		RequiredDocumentType: documentType,
		Description:          strings.TrimSpace(body.Description),
		IsActive:             isActive,
		ValidationRules:      datatypes.NewJSONSlice(ruleList),
		CreatedBy:            &userID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if errCreate := h.store.Create(c.Request.Context(), &rule); errCreate != nil {
		if errors.Is(errCreate, rules.ErrActiveRuleExists) {
			c.JSON(http.StatusConflict, gin.H{"error": errCreate.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create country rule failed"})
		return
	}
	c.JSON(http.StatusCreated, formatRule(&rule))
}

// List returns country rules with pagination and an optional active filter.
func (h *CountryRuleHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)
	isActive := parseBoolQuery(c, "is_active")

	rows, total, errList := h.store.List(c.Request.Context(), offset, limit, isActive)
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list country rules failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatRule(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"country_rules": out, "total": total, "offset": offset, "limit": limit})
}

// Get fetches a country rule by ID.
func (h *CountryRuleHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	rule, errGet := h.store.GetByID(c.Request.Context(), id)
	if errGet != nil {
		if errors.Is(errGet, rules.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, formatRule(rule))
}

// GetByCountry fetches the active rule for a country.
func (h *CountryRuleHandler) GetByCountry(c *gin.Context) {
	country, okCountry := models.ParseCountry(c.Param("country"))
	if !okCountry {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported country"})
		return
	}
	rule, errGet := h.store.ActiveRule(c.Request.Context(), country)
	if errGet != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if rule == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active rule for country"})
		return
	}
	c.JSON(http.StatusOK, formatRule(rule))
}

// updateCountryRuleBody captures optional fields for rule updates.
type updateCountryRuleBody struct {
	RequiredDocumentType *string                  `json:"required_document_type"` // Optional document label.
	Description          *string                  `json:"description"`            // Optional description.
	IsActive             *bool                    `json:"is_active"`              // Optional active flag.
	ValidationRules      *[]affordabilityRuleBody `json:"validation_rules"`       // Optional full replacement.
}

// Update applies a partial update to a country rule.
func (h *CountryRuleHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateCountryRuleBody
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	patch := rules.Patch{
		Description: body.Description,
		IsActive:    body.IsActive,
	}
	if body.RequiredDocumentType != nil {
		documentType := strings.TrimSpace(*body.RequiredDocumentType)
		if documentType == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "required_document_type cannot be empty"})
			return
		}
		patch.RequiredDocumentType = &documentType
	}
	if body.ValidationRules != nil {
		ruleList, errRules := toModelRules(*body.ValidationRules)
		if errRules != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errRules.Error()})
			return
		}
		patch.ValidationRules = &ruleList
	}

	userID := getUserID(c)
	updated, errUpdate := h.store.Update(c.Request.Context(), id, patch, &userID)
	if errUpdate != nil {
		switch {
		case errors.Is(errUpdate, rules.ErrRuleNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case errors.Is(errUpdate, rules.ErrEmptyPatch):
			c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update country rule failed"})
		}
		return
	}
	c.JSON(http.StatusOK, formatRule(updated))
}

// Delete deactivates a rule, or removes it permanently with ?hard=true.
func (h *CountryRuleHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var errDelete error
	if c.Query("hard") == "true" {
		errDelete = h.store.HardDelete(c.Request.Context(), id)
	} else {
		userID := getUserID(c)
		errDelete = h.store.SoftDelete(c.Request.Context(), id, &userID)
	}
	if errDelete != nil {
		if errors.Is(errDelete, rules.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete country rule failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/aramkechichian/fintech-credits/internal/bankprovider"
	"github.com/aramkechichian/fintech-credits/internal/db"
	"github.com/aramkechichian/fintech-credits/internal/mail"
	"github.com/aramkechichian/fintech-credits/internal/metrics"
	"github.com/aramkechichian/fintech-credits/internal/models"
	"github.com/aramkechichian/fintech-credits/internal/validation"
)

// maxDocumentLen caps the identity document accepted at intake.
const maxDocumentLen = 50

// CreditRequestHandler handles credit request intake and lifecycle endpoints.
type CreditRequestHandler struct {
	db        *gorm.DB
	validator *validation.Validator
	mailer    *mail.Sender
	bank      *bankprovider.Client
}

// NewCreditRequestHandler constructs a CreditRequestHandler.
func NewCreditRequestHandler(conn *gorm.DB, validator *validation.Validator, mailer *mail.Sender, bank *bankprovider.Client) *CreditRequestHandler {
	return &CreditRequestHandler{db: conn, validator: validator, mailer: mailer, bank: bank}
}

// createCreditRequestBody captures the intake payload.
type createCreditRequestBody struct {
	Country          string  `json:"country"`           // Country name.
	FullName         string  `json:"full_name"`         // Applicant full name.
	Email            string  `json:"email"`             // Optional notification email.
	IdentityDocument string  `json:"identity_document"` // National identity document.
	RequestedAmount  float64 `json:"requested_amount"`  // Requested loan amount.
	MonthlyIncome    float64 `json:"monthly_income"`    // Declared monthly income.
}

// formatCreditRequest renders one request for API responses.
func formatCreditRequest(r *models.CreditRequest) gin.H {
	return gin.H{
		"id":                r.ID,
		"user_id":           r.UserID,
		"country":           r.Country,
		"currency_code":     r.CurrencyCode,
		"full_name":         r.FullName,
		"email":             r.Email,
		"identity_document": r.IdentityDocument,
		"requested_amount":  r.RequestedAmount,
		"monthly_income":    r.MonthlyIncome,
		"status":            r.Status,
		"request_date":      r.RequestDate,
		"created_at":        r.CreatedAt,
		"updated_at":        r.UpdatedAt,
	}
}

// Create validates a credit request against the country rules and persists it.
func (h *CreditRequestHandler) Create(c *gin.Context) {
	var body createCreditRequestBody
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	country, okCountry := models.ParseCountry(body.Country)
	if !okCountry {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported country"})
		return
	}
	fullName := strings.TrimSpace(body.FullName)
	if fullName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "full_name is required"})
		return
	}
	if body.RequestedAmount <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "requested_amount must be greater than zero"})
		return
	}
	if body.MonthlyIncome <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "monthly_income must be greater than zero"})
		return
	}
	// Schema checks hold even for countries whose rule was soft-deleted.
	document := strings.TrimSpace(body.IdentityDocument)
	if document == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity_document is required"})
		return
	}
	if len(document) > maxDocumentLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity_document must be at most 50 characters"})
		return
	}

	errValidate := h.validator.Validate(c.Request.Context(), country, document, body.RequestedAmount, body.MonthlyIncome)
	if errValidate != nil {
		var ruleErr *validation.Error
		if errors.As(errValidate, &ruleErr) {
			for _, violation := range ruleErr.RuleDetails.Errors {
				metrics.RecordRejection(string(country), string(violation.RuleType))
			}
			c.JSON(http.StatusBadRequest, ruleErr)
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "rule evaluation failed"})
		return
	}

	now := time.Now().UTC()
	request := models.CreditRequest{
		UserID:           getUserID(c),
		Country:          country,
		CurrencyCode:     country.CurrencyCode(),
		FullName:         fullName,
		Email:            strings.TrimSpace(body.Email),
		IdentityDocument: document,
		RequestedAmount:  body.RequestedAmount,
		MonthlyIncome:    body.MonthlyIncome,
		RequestDate:      now,
		Status:           models.CreditRequestPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	bankInfo := h.bank.BankInformation(c.Request.Context(), country, request.IdentityDocument)
	if raw, errMarshal := json.Marshal(bankInfo); errMarshal == nil {
		request.BankInformation = datatypes.JSON(raw)
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&request).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create credit request failed"})
		return
	}

	metrics.RecordCreditRequestCreated(string(country))
	c.JSON(http.StatusCreated, formatCreditRequest(&request))
}

// List returns the authenticated user's credit requests.
func (h *CreditRequestHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	query := h.db.WithContext(c.Request.Context()).
		Model(&models.CreditRequest{}).
		Where("user_id = ?", getUserID(c))

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		if !models.CreditRequestStatus(status).IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	if errCount := query.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	var rows []models.CreditRequest
	if errFind := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list credit requests failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatCreditRequest(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"credit_requests": out, "total": total, "offset": offset, "limit": limit})
}

// Get fetches one credit request. Users see their own; admins see all.
func (h *CreditRequestHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var request models.CreditRequest
	if errFind := h.db.WithContext(c.Request.Context()).First(&request, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if request.UserID != getUserID(c) && !isAdmin(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, formatCreditRequest(&request))
}

// applySearchFilters narrows a credit request query from search parameters.
func applySearchFilters(c *gin.Context, query *gorm.DB) (*gorm.DB, bool) {
	if countriesQ := strings.TrimSpace(c.Query("countries")); countriesQ != "" {
		var countries []models.Country
		for _, raw := range strings.Split(countriesQ, ",") {
			country, ok := models.ParseCountry(raw)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported country in countries filter"})
				return nil, false
			}
			countries = append(countries, country)
		}
		query = query.Where("country IN ?", countries)
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		if !models.CreditRequestStatus(status).IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return nil, false
		}
		query = query.Where("status = ?", status)
	}
	if document := strings.TrimSpace(c.Query("document")); document != "" {
		pattern := db.NormalizeLikePattern(query, "%"+document+"%")
		query = query.Where(db.CaseInsensitiveLikeExpr(query, "identity_document"), pattern)
	}
	if email := strings.TrimSpace(c.Query("email")); email != "" {
		pattern := db.NormalizeLikePattern(query, "%"+email+"%")
		query = query.Where(db.CaseInsensitiveLikeExpr(query, "email"), pattern)
	}
	from, okFrom := parseDateQuery(c, "from")
	if !okFrom {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return nil, false
	}
	if from != nil {
		query = query.Where("request_date >= ?", *from)
	}
	to, okTo := parseDateQuery(c, "to")
	if !okTo {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return nil, false
	}
	if to != nil {
		query = query.Where("request_date <= ?", *to)
	}
	return query, true
}

// Search returns credit requests filtered by query parameters. Admins search
// across all users; everyone else is scoped to their own rows.
func (h *CreditRequestHandler) Search(c *gin.Context) {
	offset, limit := parsePagination(c)

	query := h.db.WithContext(c.Request.Context()).Model(&models.CreditRequest{})
	if !isAdmin(c) {
		query = query.Where("user_id = ?", getUserID(c))
	}
	query, ok := applySearchFilters(c, query)
	if !ok {
		return
	}

	var total int64
	if errCount := query.Count(&total).Error; errCount != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	var rows []models.CreditRequest
	if errFind := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatCreditRequest(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"credit_requests": out, "total": total, "offset": offset, "limit": limit})
}

// updateStatusBody captures the status transition payload.
type updateStatusBody struct {
	Status string `json:"status"` // Target lifecycle state.
}

// UpdateStatus transitions a credit request and notifies the applicant.
// Admin only.
func (h *CreditRequestHandler) UpdateStatus(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var body updateStatusBody
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	status := models.CreditRequestStatus(strings.TrimSpace(body.Status))
	if !status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	var request models.CreditRequest
	if errFind := h.db.WithContext(c.Request.Context()).First(&request, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	if request.Status == status {
		c.JSON(http.StatusOK, formatCreditRequest(&request))
		return
	}

	request.Status = status
	request.UpdatedAt = time.Now().UTC()
	if errSave := h.db.WithContext(c.Request.Context()).
		Model(&models.CreditRequest{}).
		Where("id = ?", request.ID).
		Updates(map[string]any{"status": status, "updated_at": request.UpdatedAt}).Error; errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update status failed"})
		return
	}

	// Delivery is best effort and must not fail the transition.
	if errMail := h.mailer.NotifyStatusChange(&request); errMail != nil {
		log.WithError(errMail).WithField("credit_request_id", request.ID).Warn("status notification failed")
	}

	c.JSON(http.StatusOK, formatCreditRequest(&request))
}

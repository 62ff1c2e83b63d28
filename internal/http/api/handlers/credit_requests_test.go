package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aramkechichian/fintech-credits/internal/bankprovider"
	"github.com/aramkechichian/fintech-credits/internal/config"
	"github.com/aramkechichian/fintech-credits/internal/mail"
	"github.com/aramkechichian/fintech-credits/internal/models"
	"github.com/aramkechichian/fintech-credits/internal/rules"
	"github.com/aramkechichian/fintech-credits/internal/validation"
)

// creditRequestResponse mirrors the formatted credit request payload.
type creditRequestResponse struct {
	ID               uint64  `json:"id"`
	UserID           uint64  `json:"user_id"`
	Country          string  `json:"country"`
	CurrencyCode     string  `json:"currency_code"`
	IdentityDocument string  `json:"identity_document"`
	RequestedAmount  float64 `json:"requested_amount"`
	Status           string  `json:"status"`
}

// ruleFailureResponse mirrors the aggregate validation failure payload.
type ruleFailureResponse struct {
	Message     string `json:"message"`
	RuleDetails struct {
		Country              string `json:"country"`
		RequiredDocumentType string `json:"required_document_type"`
		Errors               []struct {
			RuleType     string `json:"rule_type"`
			ErrorMessage string `json:"error_message"`
		} `json:"errors"`
		Summary string `json:"summary"`
	} `json:"rule_details"`
}

func newCreditRouter(t *testing.T, db *gorm.DB, user *models.User) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler := NewCreditRequestHandler(db, validation.NewValidator(rules.NewStore(db)), mail.NewSender(config.SMTPConfig{}), bankprovider.NewClient(""))

	router := gin.New()
	authed := router.Group("", asUser(user))
	authed.POST("/v1/credit-requests", handler.Create)
	authed.GET("/v1/credit-requests", handler.List)
	authed.GET("/v1/credit-requests/:id", handler.Get)
	authed.GET("/v1/credit-requests/search", handler.Search)
	authed.PUT("/v1/credit-requests/:id/status", handler.UpdateStatus)
	return router
}

func TestCreateCreditRequestAccepted(t *testing.T) {
	db := setupHandlerTestDB(t)
	user := seedTestUser(t, db, "maria@example.com", false)
	seedActiveRule(t, db, models.CountryBrazil, 35)
	router := newCreditRouter(t, db, user)

	var created creditRequestResponse
	w := doJSON(t, router, http.MethodPost, "/v1/credit-requests", gin.H{
		"country":           "Brazil",
		"full_name":         "Maria Silva",
		"email":             "maria@example.com",
		"identity_document": "123.456.789-09",
		"requested_amount":  1500.0,
		"monthly_income":    6000.0,
	}, &created)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	if created.UserID != user.ID {
		t.Fatalf("user_id = %d, want %d", created.UserID, user.ID)
	}
	if created.CurrencyCode != "BRL" {
		t.Fatalf("currency_code = %q, want %q", created.CurrencyCode, "BRL")
	}
	if created.Status != "pending" {
		t.Fatalf("status = %q, want %q", created.Status, "pending")
	}
}

func TestCreateCreditRequestRejectedWithDetails(t *testing.T) {
	db := setupHandlerTestDB(t)
	user := seedTestUser(t, db, "maria@example.com", false)
	seedActiveRule(t, db, models.CountryBrazil, 35)
	router := newCreditRouter(t, db, user)

	// Invalid CPF check digit and a requested amount above 35% of income.
	var failure ruleFailureResponse
	w := doJSON(t, router, http.MethodPost, "/v1/credit-requests", gin.H{
		"country":           "Brazil",
		"full_name":         "Maria Silva",
		"identity_document": "123.456.789-00",
		"requested_amount":  3000.0,
		"monthly_income":    6000.0,
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("create status = %d, want 400 (body %s)", w.Code, w.Body.String())
	}
	if errDecode := json.Unmarshal(w.Body.Bytes(), &failure); errDecode != nil {
		t.Fatalf("decode failure: %v", errDecode)
	}
	if failure.Message != "request does not satisfy country validation rules" {
		t.Fatalf("message = %q", failure.Message)
	}
	if failure.RuleDetails.Country != "Brazil" {
		t.Fatalf("country = %q, want Brazil", failure.RuleDetails.Country)
	}
	if len(failure.RuleDetails.Errors) != 2 {
		t.Fatalf("len(errors) = %d, want 2 (body %s)", len(failure.RuleDetails.Errors), w.Body.String())
	}
	if failure.RuleDetails.Errors[0].RuleType != "document_format" {
		t.Fatalf("errors[0].rule_type = %q, want document_format", failure.RuleDetails.Errors[0].RuleType)
	}
	if failure.RuleDetails.Errors[1].RuleType != "amount_to_income_ratio" {
		t.Fatalf("errors[1].rule_type = %q, want amount_to_income_ratio", failure.RuleDetails.Errors[1].RuleType)
	}
	if failure.RuleDetails.Summary == "" {
		t.Fatal("summary is empty")
	}

	// Nothing may be persisted on rejection.
	var count int64
	if errCount := db.Model(&models.CreditRequest{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 0 {
		t.Fatalf("persisted %d requests after rejection, want 0", count)
	}
}

func TestCreateCreditRequestUnsupportedCountry(t *testing.T) {
	db := setupHandlerTestDB(t)
	user := seedTestUser(t, db, "maria@example.com", false)
	router := newCreditRouter(t, db, user)

	w := doJSON(t, router, http.MethodPost, "/v1/credit-requests", gin.H{
		"country":           "Atlantis",
		"full_name":         "Maria Silva",
		"identity_document": "123",
		"requested_amount":  100.0,
		"monthly_income":    1000.0,
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("create status = %d, want 400", w.Code)
	}
}

func TestCreateCreditRequestSchemaChecks(t *testing.T) {
	db := setupHandlerTestDB(t)
	user := seedTestUser(t, db, "maria@example.com", false)
	// No rule is seeded for Mexico, so intake checks are the only gate.
	router := newCreditRouter(t, db, user)

	cases := []struct {
		name string
		body gin.H
	}{
		{"zero income", gin.H{
			"country": "Mexico", "full_name": "Ana López",
			"identity_document": "ABCD123456HDFXYZ01",
			"requested_amount":  1000.0, "monthly_income": 0.0,
		}},
		{"negative income", gin.H{
			"country": "Mexico", "full_name": "Ana López",
			"identity_document": "ABCD123456HDFXYZ01",
			"requested_amount":  1000.0, "monthly_income": -500.0,
		}},
		{"missing document", gin.H{
			"country": "Mexico", "full_name": "Ana López",
			"identity_document": "  ",
			"requested_amount":  1000.0, "monthly_income": 4000.0,
		}},
		{"oversized document", gin.H{
			"country": "Mexico", "full_name": "Ana López",
			"identity_document": strings.Repeat("9", 51),
			"requested_amount":  1000.0, "monthly_income": 4000.0,
		}},
	}
	for _, tc := range cases {
		if w := doJSON(t, router, http.MethodPost, "/v1/credit-requests", tc.body, nil); w.Code != http.StatusBadRequest {
			t.Fatalf("%s status = %d, want 400", tc.name, w.Code)
		}
	}

	var count int64
	if errCount := db.Model(&models.CreditRequest{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 0 {
		t.Fatalf("persisted %d requests after schema rejections, want 0", count)
	}
}

func TestListScopedToOwner(t *testing.T) {
	db := setupHandlerTestDB(t)
	owner := seedTestUser(t, db, "owner@example.com", false)
	other := seedTestUser(t, db, "other@example.com", false)
	seedActiveRule(t, db, models.CountrySpain, 30)

	ownerRouter := newCreditRouter(t, db, owner)
	otherRouter := newCreditRouter(t, db, other)

	w := doJSON(t, ownerRouter, http.MethodPost, "/v1/credit-requests", gin.H{
		"country":           "Spain",
		"full_name":         "Juan Pérez",
		"identity_document": "12345678Z",
		"requested_amount":  500.0,
		"monthly_income":    3000.0,
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}

	var listing struct {
		CreditRequests []creditRequestResponse `json:"credit_requests"`
		Total          int64                   `json:"total"`
	}
	if w := doJSON(t, ownerRouter, http.MethodGet, "/v1/credit-requests", nil, &listing); w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}
	if listing.Total != 1 || len(listing.CreditRequests) != 1 {
		t.Fatalf("owner list total = %d, len = %d, want 1, 1", listing.Total, len(listing.CreditRequests))
	}

	listing.CreditRequests = nil
	if w := doJSON(t, otherRouter, http.MethodGet, "/v1/credit-requests", nil, &listing); w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}
	if listing.Total != 0 {
		t.Fatalf("other user list total = %d, want 0", listing.Total)
	}

	// Other users cannot fetch the request by ID either.
	if w := doJSON(t, otherRouter, http.MethodGet, "/v1/credit-requests/1", nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get status = %d, want 404", w.Code)
	}
}

func TestSearchFilters(t *testing.T) {
	db := setupHandlerTestDB(t)
	admin := seedTestUser(t, db, "admin@example.com", true)
	seedActiveRule(t, db, models.CountrySpain, 30)
	seedActiveRule(t, db, models.CountryBrazil, 35)
	router := newCreditRouter(t, db, admin)

	for _, body := range []gin.H{
		{"country": "Spain", "full_name": "Juan Pérez", "identity_document": "12345678Z", "requested_amount": 500.0, "monthly_income": 3000.0},
		{"country": "Brazil", "full_name": "Maria Silva", "identity_document": "123.456.789-09", "requested_amount": 1500.0, "monthly_income": 6000.0},
	} {
		if w := doJSON(t, router, http.MethodPost, "/v1/credit-requests", body, nil); w.Code != http.StatusCreated {
			t.Fatalf("create status = %d, want 201 (body %s)", w.Code, w.Body.String())
		}
	}

	var listing struct {
		CreditRequests []creditRequestResponse `json:"credit_requests"`
		Total          int64                   `json:"total"`
	}
	if w := doJSON(t, router, http.MethodGet, "/v1/credit-requests/search?countries=Brazil", nil, &listing); w.Code != http.StatusOK {
		t.Fatalf("search status = %d, want 200", w.Code)
	}
	if listing.Total != 1 || listing.CreditRequests[0].Country != "Brazil" {
		t.Fatalf("countries filter total = %d, want 1 Brazil row", listing.Total)
	}

	listing.CreditRequests = nil
	if w := doJSON(t, router, http.MethodGet, "/v1/credit-requests/search?document=12345678z", nil, &listing); w.Code != http.StatusOK {
		t.Fatalf("search status = %d, want 200", w.Code)
	}
	if listing.Total != 1 || listing.CreditRequests[0].IdentityDocument != "12345678Z" {
		t.Fatalf("document filter total = %d, want 1 DNI row", listing.Total)
	}

	if w := doJSON(t, router, http.MethodGet, "/v1/credit-requests/search?countries=Narnia", nil, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("search status = %d, want 400 for unknown country", w.Code)
	}
}

func TestSearchScopesNonAdmins(t *testing.T) {
	db := setupHandlerTestDB(t)
	admin := seedTestUser(t, db, "admin@example.com", true)
	applicant := seedTestUser(t, db, "user@example.com", false)
	seedActiveRule(t, db, models.CountrySpain, 30)

	adminRouter := newCreditRouter(t, db, admin)
	applicantRouter := newCreditRouter(t, db, applicant)

	w := doJSON(t, adminRouter, http.MethodPost, "/v1/credit-requests", gin.H{
		"country":           "Spain",
		"full_name":         "Juan Pérez",
		"identity_document": "12345678Z",
		"requested_amount":  500.0,
		"monthly_income":    3000.0,
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", w.Code)
	}

	var listing struct {
		Total int64 `json:"total"`
	}
	if w := doJSON(t, applicantRouter, http.MethodGet, "/v1/credit-requests/search", nil, &listing); w.Code != http.StatusOK {
		t.Fatalf("search status = %d, want 200", w.Code)
	}
	if listing.Total != 0 {
		t.Fatalf("non-admin search total = %d, want 0", listing.Total)
	}

	if w := doJSON(t, adminRouter, http.MethodGet, "/v1/credit-requests/search", nil, &listing); w.Code != http.StatusOK {
		t.Fatalf("search status = %d, want 200", w.Code)
	}
	if listing.Total != 1 {
		t.Fatalf("admin search total = %d, want 1", listing.Total)
	}
}

func TestUpdateStatus(t *testing.T) {
	db := setupHandlerTestDB(t)
	admin := seedTestUser(t, db, "admin@example.com", true)
	seedActiveRule(t, db, models.CountrySpain, 30)
	router := newCreditRouter(t, db, admin)

	var created creditRequestResponse
	w := doJSON(t, router, http.MethodPost, "/v1/credit-requests", gin.H{
		"country":           "Spain",
		"full_name":         "Juan Pérez",
		"identity_document": "12345678Z",
		"requested_amount":  500.0,
		"monthly_income":    3000.0,
	}, &created)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", w.Code)
	}

	var updated creditRequestResponse
	w = doJSON(t, router, http.MethodPut, "/v1/credit-requests/1/status", gin.H{"status": "approved"}, &updated)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if updated.Status != "approved" {
		t.Fatalf("status = %q, want approved", updated.Status)
	}

	if w := doJSON(t, router, http.MethodPut, "/v1/credit-requests/1/status", gin.H{"status": "sideways"}, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("update status = %d, want 400 for invalid status", w.Code)
	}
	if w := doJSON(t, router, http.MethodPut, "/v1/credit-requests/999/status", gin.H{"status": "approved"}, nil); w.Code != http.StatusNotFound {
		t.Fatalf("update status = %d, want 404 for missing id", w.Code)
	}
}

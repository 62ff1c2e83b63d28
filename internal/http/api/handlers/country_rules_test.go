package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aramkechichian/fintech-credits/internal/models"
	"github.com/aramkechichian/fintech-credits/internal/rules"
)

// countryRuleResponse mirrors the formatted country rule payload.
type countryRuleResponse struct {
	ID                   uint64 `json:"id"`
	Country              string `json:"country"`
	RequiredDocumentType string `json:"required_document_type"`
	IsActive             bool   `json:"is_active"`
	ValidationRules      []struct {
		MaxPercentage float64 `json:"max_percentage"`
		Enabled       bool    `json:"enabled"`
	} `json:"validation_rules"`
}

func newRuleRouter(t *testing.T, db *gorm.DB, user *models.User) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler := NewCountryRuleHandler(rules.NewStore(db))

	router := gin.New()
	admin := router.Group("", asUser(user))
	admin.GET("/v1/country-rules", handler.List)
	admin.POST("/v1/country-rules", handler.Create)
	admin.GET("/v1/country-rules/:id", handler.Get)
	admin.PUT("/v1/country-rules/:id", handler.Update)
	admin.DELETE("/v1/country-rules/:id", handler.Delete)
	admin.GET("/v1/country-rules/country/:country", handler.GetByCountry)
	return router
}

func TestCountryRuleCRUD(t *testing.T) {
	db := setupHandlerTestDB(t)
	admin := seedTestUser(t, db, "admin@example.com", true)
	router := newRuleRouter(t, db, admin)

	var created countryRuleResponse
	w := doJSON(t, router, http.MethodPost, "/v1/country-rules", gin.H{
		"country":                "Portugal",
		"required_document_type": "NIF",
		"description":            "Portugal intake rules",
		"validation_rules": []gin.H{
			{"max_percentage": 30.0, "enabled": true},
		},
	}, &created)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	if created.Country != "Portugal" || !created.IsActive {
		t.Fatalf("created = %+v, want active Portugal rule", created)
	}
	if len(created.ValidationRules) != 1 || created.ValidationRules[0].MaxPercentage != 30 {
		t.Fatalf("validation_rules = %+v, want one 30%% rule", created.ValidationRules)
	}

	// Second active rule for the same country is rejected.
	w = doJSON(t, router, http.MethodPost, "/v1/country-rules", gin.H{
		"country":                "Portugal",
		"required_document_type": "NIF",
	}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate create status = %d, want 409", w.Code)
	}

	var fetched countryRuleResponse
	if w := doJSON(t, router, http.MethodGet, "/v1/country-rules/1", nil, &fetched); w.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", w.Code)
	}
	if fetched.ID != created.ID {
		t.Fatalf("fetched.ID = %d, want %d", fetched.ID, created.ID)
	}

	var byCountry countryRuleResponse
	if w := doJSON(t, router, http.MethodGet, "/v1/country-rules/country/portugal", nil, &byCountry); w.Code != http.StatusOK {
		t.Fatalf("get by country status = %d, want 200", w.Code)
	}
	if byCountry.ID != created.ID {
		t.Fatalf("byCountry.ID = %d, want %d", byCountry.ID, created.ID)
	}

	var updated countryRuleResponse
	w = doJSON(t, router, http.MethodPut, "/v1/country-rules/1", gin.H{
		"validation_rules": []gin.H{
			{"max_percentage": 25.0, "enabled": true},
			{"max_percentage": 40.0, "enabled": false},
		},
	}, &updated)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if len(updated.ValidationRules) != 2 || updated.ValidationRules[0].MaxPercentage != 25 {
		t.Fatalf("updated rules = %+v, want replaced list", updated.ValidationRules)
	}

	if w := doJSON(t, router, http.MethodPut, "/v1/country-rules/1", gin.H{}, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("empty patch status = %d, want 400", w.Code)
	}

	// Soft delete deactivates; the country lookup then finds nothing.
	if w := doJSON(t, router, http.MethodDelete, "/v1/country-rules/1", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/v1/country-rules/country/Portugal", nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get by country after delete status = %d, want 404", w.Code)
	}

	// Hard delete removes the record entirely.
	if w := doJSON(t, router, http.MethodDelete, "/v1/country-rules/1?hard=true", nil, nil); w.Code != http.StatusOK {
		t.Fatalf("hard delete status = %d, want 200", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/v1/country-rules/1", nil, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after hard delete status = %d, want 404", w.Code)
	}
}

func TestCountryRuleCreateValidation(t *testing.T) {
	db := setupHandlerTestDB(t)
	admin := seedTestUser(t, db, "admin@example.com", true)
	router := newRuleRouter(t, db, admin)

	cases := []gin.H{
		{"country": "Narnia", "required_document_type": "ID"},
		{"country": "Spain", "required_document_type": ""},
		{"country": "Spain", "required_document_type": "DNI", "validation_rules": []gin.H{{"max_percentage": 0.0, "enabled": true}}},
		{"country": "Spain", "required_document_type": "DNI", "validation_rules": []gin.H{{"max_percentage": -10.0, "enabled": true}}},
	}
	for _, body := range cases {
		if w := doJSON(t, router, http.MethodPost, "/v1/country-rules", body, nil); w.Code != http.StatusBadRequest {
			t.Fatalf("create %v status = %d, want 400", body, w.Code)
		}
	}

	// Caps above 100% are accepted.
	var created countryRuleResponse
	w := doJSON(t, router, http.MethodPost, "/v1/country-rules", gin.H{
		"country":                "Spain",
		"required_document_type": "DNI",
		"validation_rules":       []gin.H{{"max_percentage": 150.0, "enabled": true}},
	}, &created)
	if w.Code != http.StatusCreated {
		t.Fatalf("create with 150%% cap status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	if len(created.ValidationRules) != 1 || created.ValidationRules[0].MaxPercentage != 150 {
		t.Fatalf("validation_rules = %+v, want one 150%% rule", created.ValidationRules)
	}
}

func TestCountryRuleListFilter(t *testing.T) {
	db := setupHandlerTestDB(t)
	admin := seedTestUser(t, db, "admin@example.com", true)
	router := newRuleRouter(t, db, admin)

	active := gin.H{"country": "Spain", "required_document_type": "DNI"}
	inactive := gin.H{"country": "Italy", "required_document_type": "Codice Fiscale", "is_active": false}
	for _, body := range []gin.H{active, inactive} {
		if w := doJSON(t, router, http.MethodPost, "/v1/country-rules", body, nil); w.Code != http.StatusCreated {
			t.Fatalf("create status = %d, want 201", w.Code)
		}
	}

	var listing struct {
		CountryRules []countryRuleResponse `json:"country_rules"`
		Total        int64                 `json:"total"`
	}
	if w := doJSON(t, router, http.MethodGet, "/v1/country-rules?is_active=true", nil, &listing); w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}
	if listing.Total != 1 || listing.CountryRules[0].Country != "Spain" {
		t.Fatalf("active filter total = %d, want the Spain rule only", listing.Total)
	}
}

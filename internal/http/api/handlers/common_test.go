package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aramkechichian/fintech-credits/internal/config"
	"github.com/aramkechichian/fintech-credits/internal/models"
	"github.com/aramkechichian/fintech-credits/internal/rules"
	"github.com/aramkechichian/fintech-credits/internal/security"
)

// testJWTConfig is the signing configuration used across handler tests.
var testJWTConfig = config.JWTConfig{Secret: "handler-test-secret", ExpiryMinutes: 60}

func setupHandlerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, errOpen := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	errMigrate := db.AutoMigrate(&models.User{}, &models.CountryRule{}, &models.CreditRequest{}, &models.AuditLog{})
	if errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return db
}

// seedTestUser inserts a user and returns it.
func seedTestUser(t *testing.T, db *gorm.DB, email string, admin bool) *models.User {
	t.Helper()
	hash, errHash := security.HashPassword("correct-horse-battery")
	if errHash != nil {
		t.Fatalf("hash password: %v", errHash)
	}
	user := models.User{
		Email:    email,
		FullName: "Test User",
		Password: hash,
		Active:   true,
		IsAdmin:  admin,
	}
	if errCreate := db.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	return &user
}

// seedActiveRule inserts an active country rule with one affordability cap.
func seedActiveRule(t *testing.T, db *gorm.DB, country models.Country, maxPercentage float64) *models.CountryRule {
	t.Helper()
	rule := models.CountryRule{
		Country:              country,
		RequiredDocumentType: country.DocumentType(),
		IsActive:             true,
		ValidationRules: datatypes.NewJSONSlice([]models.AffordabilityRule{
			{MaxPercentage: maxPercentage, Enabled: true},
		}),
	}
	if errCreate := rules.NewStore(db).Create(context.Background(), &rule); errCreate != nil {
		t.Fatalf("create rule: %v", errCreate)
	}
	return &rule
}

// asUser returns a middleware that authenticates requests as the given user.
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", user.ID)
		c.Set("isAdmin", user.IsAdmin)
		c.Next()
	}
}

// doJSON performs one JSON request against the router and decodes the body.
func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		raw, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal request body: %v", errMarshal)
		}
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if out != nil && w.Code < http.StatusMultipleChoices {
		if errDecode := json.Unmarshal(w.Body.Bytes(), out); errDecode != nil {
			t.Fatalf("decode response: %v (body %s)", errDecode, w.Body.String())
		}
	}
	return w
}

package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/aramkechichian/fintech-credits/internal/security"
)

func newAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := setupHandlerTestDB(t)
	handler := NewAuthHandler(db, testJWTConfig, nil)

	router := gin.New()
	router.POST("/v1/auth/register", handler.Register)
	router.POST("/v1/auth/login", handler.Login)
	return router
}

func TestRegisterThenLogin(t *testing.T) {
	router := newAuthRouter(t)

	var created struct {
		ID       uint64 `json:"id"`
		Email    string `json:"email"`
		FullName string `json:"full_name"`
	}
	w := doJSON(t, router, http.MethodPost, "/v1/auth/register", gin.H{
		"email":     "Ana@Example.com",
		"full_name": "Ana García",
		"password":  "s3cure-password",
	}, &created)
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}
	if created.Email != "ana@example.com" {
		t.Fatalf("email = %q, want lowercased %q", created.Email, "ana@example.com")
	}

	var login struct {
		Token string `json:"token"`
		User  struct {
			ID      uint64 `json:"id"`
			IsAdmin bool   `json:"is_admin"`
		} `json:"user"`
	}
	w = doJSON(t, router, http.MethodPost, "/v1/auth/login", gin.H{
		"email":    "ana@example.com",
		"password": "s3cure-password",
	}, &login)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if login.Token == "" {
		t.Fatal("login returned empty token")
	}
	if login.User.IsAdmin {
		t.Fatal("new user unexpectedly admin")
	}

	claims, errParse := security.ParseToken(testJWTConfig.Secret, login.Token)
	if errParse != nil {
		t.Fatalf("ParseToken() error = %v", errParse)
	}
	if claims.UserID != created.ID {
		t.Fatalf("claims.UserID = %d, want %d", claims.UserID, created.ID)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	router := newAuthRouter(t)

	body := gin.H{"email": "dup@example.com", "full_name": "Dup", "password": "s3cure-password"}
	if w := doJSON(t, router, http.MethodPost, "/v1/auth/register", body, nil); w.Code != http.StatusCreated {
		t.Fatalf("first register status = %d, want 201", w.Code)
	}
	if w := doJSON(t, router, http.MethodPost, "/v1/auth/register", body, nil); w.Code != http.StatusConflict {
		t.Fatalf("second register status = %d, want 409", w.Code)
	}
}

func TestRegisterRejectsWeakInput(t *testing.T) {
	router := newAuthRouter(t)

	cases := []gin.H{
		{"email": "", "full_name": "X", "password": "s3cure-password"},
		{"email": "no-at-sign", "full_name": "X", "password": "s3cure-password"},
		{"email": "a@b.com", "full_name": "", "password": "s3cure-password"},
		{"email": "a@b.com", "full_name": "X", "password": "short"},
	}
	for _, body := range cases {
		if w := doJSON(t, router, http.MethodPost, "/v1/auth/register", body, nil); w.Code != http.StatusBadRequest {
			t.Fatalf("register %v status = %d, want 400", body, w.Code)
		}
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	router := newAuthRouter(t)

	body := gin.H{"email": "ana@example.com", "full_name": "Ana", "password": "s3cure-password"}
	if w := doJSON(t, router, http.MethodPost, "/v1/auth/register", body, nil); w.Code != http.StatusCreated {
		t.Fatalf("register status = %d, want 201", w.Code)
	}

	w := doJSON(t, router, http.MethodPost, "/v1/auth/login", gin.H{
		"email":    "ana@example.com",
		"password": "wrong-password",
	}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", w.Code)
	}
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	router := newAuthRouter(t)

	w := doJSON(t, router, http.MethodPost, "/v1/auth/login", gin.H{
		"email":    "ghost@example.com",
		"password": "whatever-pass",
	}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("login status = %d, want 401", w.Code)
	}
}

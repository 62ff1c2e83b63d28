package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aramkechichian/fintech-credits/internal/config"
	"github.com/aramkechichian/fintech-credits/internal/models"
	"github.com/aramkechichian/fintech-credits/internal/security"
)

// AuthHandler handles user authentication endpoints.
type AuthHandler struct {
	db      *gorm.DB
	jwtCfg  config.JWTConfig
	limiter *security.LoginLimiter
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig, limiter *security.LoginLimiter) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg, limiter: limiter}
}

// registerRequest defines the request body for user registration.
type registerRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// Register creates a new user account.
func (h *AuthHandler) Register(c *gin.Context) {
	var body registerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if email == "" || !strings.Contains(email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "valid email is required"})
		return
	}
	fullName := strings.TrimSpace(body.FullName)
	if fullName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "full_name is required"})
		return
	}
	password := strings.TrimSpace(body.Password)
	if errPassword := security.ValidatePassword(password); errPassword != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errPassword.Error()})
		return
	}

	var exists models.User
	if errCheck := h.db.WithContext(c.Request.Context()).Where("email = ?", email).First(&exists).Error; errCheck == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}

	hash, errHash := security.HashPassword(password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	now := time.Now().UTC()
	user := models.User{
		Email:     email,
		FullName:  fullName,
		Password:  hash,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&user).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create user failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":        user.ID,
		"email":     user.Email,
		"full_name": user.FullName,
	})
}

// loginRequest defines the request body for login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and issues a JWT.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	password := strings.TrimSpace(body.Password)
	if email == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing email or password"})
		return
	}

	if h.limiter.Blocked(c.Request.Context(), email) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many failed login attempts, try again later"})
		return
	}

	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).Where("email = ?", email).First(&user).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			h.limiter.RecordFailure(c.Request.Context(), email)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "user disabled"})
		return
	}

	if !security.CheckPassword(user.Password, password) {
		h.limiter.RecordFailure(c.Request.Context(), email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	h.limiter.Reset(c.Request.Context(), email)

	token, errToken := security.GenerateToken(h.jwtCfg.Secret, user.ID, user.Email, user.FullName, user.IsAdmin, h.jwtCfg.Expiry())
	if errToken != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate token failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_in": int(h.jwtCfg.Expiry().Seconds()),
		"user": gin.H{
			"id":        user.ID,
			"email":     user.Email,
			"full_name": user.FullName,
			"is_admin":  user.IsAdmin,
		},
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	var user models.User
	if errFind := h.db.WithContext(c.Request.Context()).First(&user, getUserID(c)).Error; errFind != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":         user.ID,
		"email":      user.Email,
		"full_name":  user.FullName,
		"is_admin":   user.IsAdmin,
		"created_at": user.CreatedAt,
	})
}

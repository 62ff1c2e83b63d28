// Package api wires the HTTP surface: route registration and the shared
// request middlewares.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/aramkechichian/fintech-credits/internal/audit"
	"github.com/aramkechichian/fintech-credits/internal/bankprovider"
	"github.com/aramkechichian/fintech-credits/internal/config"
	"github.com/aramkechichian/fintech-credits/internal/http/api/handlers"
	"github.com/aramkechichian/fintech-credits/internal/mail"
	"github.com/aramkechichian/fintech-credits/internal/metrics"
	"github.com/aramkechichian/fintech-credits/internal/models"
	"github.com/aramkechichian/fintech-credits/internal/rules"
	"github.com/aramkechichian/fintech-credits/internal/security"
	"github.com/aramkechichian/fintech-credits/internal/validation"
)

// Deps bundles the services the HTTP layer depends on.
type Deps struct {
	DB           *gorm.DB
	JWT          config.JWTConfig
	Rules        *rules.Store
	Validator    *validation.Validator
	Audit        *audit.Store
	Mail         *mail.Sender
	Bank         *bankprovider.Client
	LoginLimiter *security.LoginLimiter
}

// RegisterRoutes registers every route on the engine.
func RegisterRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil {
		return
	}

	r.Use(requestIDMiddleware(), accessLogMiddleware(), metrics.Middleware())

	r.GET("/healthz", handlers.NewHealthHandler(deps.DB).Check)
	r.GET("/metrics", metrics.Handler())

	v1 := r.Group("/v1")

	authHandler := handlers.NewAuthHandler(deps.DB, deps.JWT, deps.LoginLimiter)
	v1.POST("/auth/register", authHandler.Register)
	v1.POST("/auth/login", authHandler.Login)

	authed := v1.Group("")
	authed.Use(userAuthMiddleware(deps.DB, deps.JWT))
	authed.GET("/auth/me", authHandler.Me)

	bankHandler := handlers.NewBankProviderHandler(deps.Bank)
	authed.GET("/bank-provider/information", bankHandler.Info)

	creditHandler := handlers.NewCreditRequestHandler(deps.DB, deps.Validator, deps.Mail, deps.Bank)
	credits := authed.Group("/credit-requests")
	credits.Use(audit.Middleware(deps.Audit, userIDFromContext))
	credits.POST("", creditHandler.Create)
	credits.GET("", creditHandler.List)
	credits.GET("/search", creditHandler.Search)
	credits.GET("/:id", creditHandler.Get)

	admin := authed.Group("")
	admin.Use(adminMiddleware())

	adminCredits := admin.Group("/credit-requests")
	adminCredits.Use(audit.Middleware(deps.Audit, userIDFromContext))
	adminCredits.PUT("/:id/status", creditHandler.UpdateStatus)

	ruleHandler := handlers.NewCountryRuleHandler(deps.Rules)
	admin.GET("/country-rules", ruleHandler.List)
	admin.POST("/country-rules", ruleHandler.Create)
	admin.GET("/country-rules/:id", ruleHandler.Get)
	admin.PUT("/country-rules/:id", ruleHandler.Update)
	admin.DELETE("/country-rules/:id", ruleHandler.Delete)
	admin.GET("/country-rules/country/:country", ruleHandler.GetByCountry)

	auditHandler := handlers.NewAuditLogHandler(deps.Audit)
	admin.GET("/audit-logs", auditHandler.List)
	admin.GET("/audit-logs/modules", auditHandler.Modules)

	exportHandler := handlers.NewExportHandler(deps.DB, deps.Audit)
	admin.GET("/exports/credit-requests/fields", exportHandler.CreditRequestFields)
	admin.GET("/exports/credit-requests", exportHandler.CreditRequests)
	admin.GET("/exports/audit-logs/fields", exportHandler.AuditLogFields)
	admin.GET("/exports/audit-logs", exportHandler.AuditLogs)
}

// userIDFromContext extracts the authenticated user ID for audit entries.
func userIDFromContext(c *gin.Context) *uint64 {
	val, exists := c.Get("userID")
	if !exists {
		return nil
	}
	id, ok := val.(uint64)
	if !ok {
		return nil
	}
	return &id
}

// requestIDMiddleware tags each request with a UUID, echoed in the
// X-Request-ID response header.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// accessLogMiddleware logs one structured line per request.
func accessLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"request_id": c.GetString("request_id"),
		})
		if c.Writer.Status() >= 500 {
			entry.Error("request failed")
		} else {
			entry.Info("request completed")
		}
	}
}

// userAuthMiddleware validates user JWTs and loads the user into context.
func userAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var user models.User
		if errFind := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}
		if !user.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "user disabled"})
			return
		}

		c.Set("userID", user.ID)
		c.Set("isAdmin", user.IsAdmin)
		c.Next()
	}
}

// adminMiddleware rejects non-admin users. It must run after
// userAuthMiddleware.
func adminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool("isAdmin") {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

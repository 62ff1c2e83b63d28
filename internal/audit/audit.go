// Package audit records per-request audit trail entries for sensitive
// endpoints and exposes query helpers over the stored log.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/aramkechichian/fintech-credits/internal/models"
)

// maxAuditPayloadBytes caps how much of a request body is persisted.
const maxAuditPayloadBytes = 16 * 1024

// sensitiveFields are masked before a payload is stored.
var sensitiveFields = map[string]struct{}{
	"password":      {},
	"token":         {},
	"access_token":  {},
	"refresh_token": {},
	"secret":        {},
}

// modulePrefixes maps route prefixes to module names, checked in order.
var modulePrefixes = []struct {
	Prefix string
	Module string
}{
	{"/v1/auth", "auth"},
	{"/v1/credit-requests", "credit_requests"},
	{"/v1/country-rules", "country_rules"},
	{"/v1/bank-provider", "bank_provider"},
	{"/v1/exports", "exports"},
	{"/v1/audit-logs", "audit_logs"},
}

// ModuleFor maps an endpoint to its functional module name.
func ModuleFor(endpoint string) string {
	for _, entry := range modulePrefixes {
		if strings.HasPrefix(endpoint, entry.Prefix) {
			return entry.Module
		}
	}
	return "other"
}

// Store persists and queries audit log entries.
type Store struct {
	db *gorm.DB
}

// NewStore constructs a Store over an open gorm connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Record inserts one audit entry. Failures are logged, never surfaced to the
// request that triggered them.
func (s *Store) Record(ctx context.Context, entry *models.AuditLog) {
	if errCreate := s.db.WithContext(ctx).Create(entry).Error; errCreate != nil {
		log.WithError(errCreate).Warn("audit: failed to record entry")
	}
}

// ListFilter narrows an audit log listing.
type ListFilter struct {
	Module    string
	Endpoint  string
	Method    string
	UserID    *uint64
	IsSuccess *bool
	From      *time.Time
	To        *time.Time
	Offset    int
	Limit     int
}

// List returns audit entries matching the filter, newest first, with the
// total match count.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]models.AuditLog, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.AuditLog{})

	if filter.Module != "" {
		matched := false
		for _, entry := range modulePrefixes {
			if entry.Module == filter.Module {
				query = query.Where("endpoint LIKE ?", entry.Prefix+"%")
				matched = true
				break
			}
		}
		if !matched {
			query = query.Where("1 = 0")
		}
	}
	if filter.Endpoint != "" {
		query = query.Where("endpoint LIKE ?", "%"+filter.Endpoint+"%")
	}
	if filter.Method != "" {
		query = query.Where("method = ?", strings.ToUpper(filter.Method))
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.IsSuccess != nil {
		query = query.Where("is_success = ?", *filter.IsSuccess)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if errCount := query.Count(&total).Error; errCount != nil {
		return nil, 0, errCount
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var entries []models.AuditLog
	errFind := query.Order("created_at DESC").Offset(filter.Offset).Limit(limit).Find(&entries).Error
	if errFind != nil {
		return nil, 0, errFind
	}
	return entries, total, nil
}

// Endpoints returns the distinct endpoints present in the audit log.
func (s *Store) Endpoints(ctx context.Context) ([]string, error) {
	var endpoints []string
	errFind := s.db.WithContext(ctx).
		Model(&models.AuditLog{}).
		Distinct("endpoint").
		Order("endpoint ASC").
		Pluck("endpoint", &endpoints).Error
	if errFind != nil {
		return nil, errFind
	}
	return endpoints, nil
}

// Modules returns the distinct functional modules present in the audit log.
func (s *Store) Modules(ctx context.Context) ([]string, error) {
	endpoints, errList := s.Endpoints(ctx)
	if errList != nil {
		return nil, errList
	}
	seen := make(map[string]struct{}, len(endpoints))
	var modules []string
	for _, endpoint := range endpoints {
		module := ModuleFor(endpoint)
		if _, dup := seen[module]; dup {
			continue
		}
		seen[module] = struct{}{}
		modules = append(modules, module)
	}
	sort.Strings(modules)
	return modules, nil
}

// sanitizePayload masks sensitive top-level fields in a JSON request body.
// Non-JSON bodies are dropped.
func sanitizePayload(raw []byte) datatypes.JSON {
	if len(raw) == 0 {
		return nil
	}
	var payload map[string]any
	if errUnmarshal := json.Unmarshal(raw, &payload); errUnmarshal != nil {
		return nil
	}
	for field := range payload {
		if _, sensitive := sensitiveFields[strings.ToLower(field)]; sensitive {
			payload[field] = "***"
		}
	}
	masked, errMarshal := json.Marshal(payload)
	if errMarshal != nil {
		return nil
	}
	return datatypes.JSON(masked)
}

// Middleware records every request passing through it. userIDFromContext
// extracts the authenticated user, if any.
func Middleware(store *Store, userIDFromContext func(*gin.Context) *uint64) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxAuditPayloadBytes))
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		c.Next()

		status := c.Writer.Status()
		entry := &models.AuditLog{
			Endpoint:       c.FullPath(),
			Method:         c.Request.Method,
			UserID:         userIDFromContext(c),
			RequestID:      c.GetString("request_id"),
			Payload:        sanitizePayload(body),
			ResponseStatus: status,
			IsSuccess:      status < 400,
			CreatedAt:      time.Now().UTC(),
		}
		if entry.Endpoint == "" {
			entry.Endpoint = c.Request.URL.Path
		}
		if len(c.Errors) > 0 {
			entry.ErrorMessage = c.Errors.String()
		}
		store.Record(c.Request.Context(), entry)
	}
}

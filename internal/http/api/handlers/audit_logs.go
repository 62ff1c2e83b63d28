package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aramkechichian/fintech-credits/internal/audit"
	"github.com/aramkechichian/fintech-credits/internal/models"
)

// formatAuditLog renders one audit entry for API responses.
func formatAuditLog(entry *models.AuditLog) gin.H {
	return gin.H{
		"id":              entry.ID,
		"module":          audit.ModuleFor(entry.Endpoint),
		"endpoint":        entry.Endpoint,
		"method":          entry.Method,
		"user_id":         entry.UserID,
		"request_id":      entry.RequestID,
		"payload":         entry.Payload,
		"response_status": entry.ResponseStatus,
		"is_success":      entry.IsSuccess,
		"error_message":   entry.ErrorMessage,
		"created_at":      entry.CreatedAt,
	}
}

// AuditLogHandler serves the admin audit log endpoints.
type AuditLogHandler struct {
	store *audit.Store
}

// NewAuditLogHandler constructs an AuditLogHandler.
func NewAuditLogHandler(store *audit.Store) *AuditLogHandler {
	return &AuditLogHandler{store: store}
}

// auditListFilter builds an audit.ListFilter from query parameters.
func auditListFilter(c *gin.Context) (audit.ListFilter, bool) {
	offset, limit := parsePagination(c)
	filter := audit.ListFilter{
		Module:    strings.TrimSpace(c.Query("module")),
		Endpoint:  strings.TrimSpace(c.Query("endpoint")),
		Method:    strings.TrimSpace(c.Query("method")),
		IsSuccess: parseBoolQuery(c, "is_success"),
		Offset:    offset,
		Limit:     limit,
	}

	if userIDQ := strings.TrimSpace(c.Query("user_id")); userIDQ != "" {
		userID, errParse := strconv.ParseUint(userIDQ, 10, 64)
		if errParse != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return audit.ListFilter{}, false
		}
		filter.UserID = &userID
	}
	from, okFrom := parseDateQuery(c, "from")
	if !okFrom {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
		return audit.ListFilter{}, false
	}
	filter.From = from
	to, okTo := parseDateQuery(c, "to")
	if !okTo {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
		return audit.ListFilter{}, false
	}
	filter.To = to
	return filter, true
}

// List returns audit log entries filtered by query parameters.
func (h *AuditLogHandler) List(c *gin.Context) {
	filter, ok := auditListFilter(c)
	if !ok {
		return
	}

	entries, total, errList := h.store.List(c.Request.Context(), filter)
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list audit logs failed"})
		return
	}
	out := make([]gin.H, 0, len(entries))
	for i := range entries {
		out = append(out, formatAuditLog(&entries[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"audit_logs": out,
		"total":      total,
		"offset":     filter.Offset,
		"limit":      filter.Limit,
	})
}

// Modules returns the distinct functional modules present in the audit log.
func (h *AuditLogHandler) Modules(c *gin.Context) {
	modules, errList := h.store.Modules(c.Request.Context())
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list modules failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"modules": modules})
}

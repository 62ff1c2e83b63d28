package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/aramkechichian/fintech-credits/internal/audit"
	"github.com/aramkechichian/fintech-credits/internal/export"
	"github.com/aramkechichian/fintech-credits/internal/models"
)

// xlsxContentType is the MIME type for Excel workbooks.
const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// maxExportRows bounds how many rows one export may contain.
const maxExportRows = 10000

// ExportHandler serves the admin Excel export endpoints.
type ExportHandler struct {
	db    *gorm.DB
	audit *audit.Store
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(conn *gorm.DB, auditStore *audit.Store) *ExportHandler {
	return &ExportHandler{db: conn, audit: auditStore}
}

// parseFieldsQuery splits the comma-separated fields query parameter.
func parseFieldsQuery(c *gin.Context) []string {
	raw := strings.TrimSpace(c.Query("fields"))
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// serveWorkbook writes an Excel attachment response.
func serveWorkbook(c *gin.Context, baseName string, workbook []byte) {
	fileName := fmt.Sprintf("%s_%s.xlsx", baseName, time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, xlsxContentType, workbook)
}

// CreditRequestFields lists the selectable credit request export columns.
func (h *ExportHandler) CreditRequestFields(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": export.CreditRequestFieldNames()})
}

// CreditRequests exports credit requests as an Excel workbook. It accepts the
// same filters as the search endpoint plus a fields selection.
func (h *ExportHandler) CreditRequests(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.CreditRequest{})
	query, ok := applySearchFilters(c, query)
	if !ok {
		return
	}

	var rows []models.CreditRequest
	if errFind := query.Order("created_at DESC").Limit(maxExportRows).Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query credit requests failed"})
		return
	}

	workbook, errBuild := export.CreditRequests(rows, parseFieldsQuery(c))
	if errBuild != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errBuild.Error()})
		return
	}
	serveWorkbook(c, "credit_requests", workbook)
}

// AuditLogFields lists the selectable audit log export columns.
func (h *ExportHandler) AuditLogFields(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"fields": export.AuditLogFieldNames()})
}

// AuditLogs exports audit log entries as an Excel workbook.
func (h *ExportHandler) AuditLogs(c *gin.Context) {
	filter, ok := auditListFilter(c)
	if !ok {
		return
	}
	filter.Offset = 0
	filter.Limit = maxExportRows

	entries, _, errList := h.audit.List(c.Request.Context(), filter)
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query audit logs failed"})
		return
	}

	workbook, errBuild := export.AuditLogs(entries, parseFieldsQuery(c))
	if errBuild != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errBuild.Error()})
		return
	}
	serveWorkbook(c, "audit_logs", workbook)
}

// Package export renders credit requests and audit logs as Excel workbooks
// with caller-selected columns.
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/aramkechichian/fintech-credits/internal/models"
)

// headerFillColor is the background of the header row.
const headerFillColor = "366092"

// maxColumnWidth caps auto-fitted column widths.
const maxColumnWidth = 50.0

// field describes one exportable column.
type field struct {
	Header string
	Value  func(any) any
}

// creditRequestFields maps selectable field names to column definitions.
var creditRequestFields = map[string]field{
	"id":                {"ID", func(v any) any { return v.(*models.CreditRequest).ID }},
	"full_name":         {"Full Name", func(v any) any { return v.(*models.CreditRequest).FullName }},
	"email":             {"Email", func(v any) any { return v.(*models.CreditRequest).Email }},
	"country":           {"Country", func(v any) any { return string(v.(*models.CreditRequest).Country) }},
	"currency_code":     {"Currency", func(v any) any { return v.(*models.CreditRequest).CurrencyCode }},
	"identity_document": {"Identity Document", func(v any) any { return v.(*models.CreditRequest).IdentityDocument }},
	"requested_amount":  {"Requested Amount", func(v any) any { return v.(*models.CreditRequest).RequestedAmount }},
	"monthly_income":    {"Monthly Income", func(v any) any { return v.(*models.CreditRequest).MonthlyIncome }},
	"status":            {"Status", func(v any) any { return string(v.(*models.CreditRequest).Status) }},
	"request_date":      {"Request Date", func(v any) any { return v.(*models.CreditRequest).RequestDate.Format(time.RFC3339) }},
	"created_at":        {"Created At", func(v any) any { return v.(*models.CreditRequest).CreatedAt.Format(time.RFC3339) }},
}

// creditRequestFieldOrder fixes the column order for full exports.
var creditRequestFieldOrder = []string{
	"id", "full_name", "email", "country", "currency_code", "identity_document",
	"requested_amount", "monthly_income", "status", "request_date", "created_at",
}

// auditLogFields maps selectable audit log field names to columns.
var auditLogFields = map[string]field{
	"id":              {"ID", func(v any) any { return v.(*models.AuditLog).ID }},
	"endpoint":        {"Endpoint", func(v any) any { return v.(*models.AuditLog).Endpoint }},
	"method":          {"Method", func(v any) any { return v.(*models.AuditLog).Method }},
	"user_id":         {"User ID", func(v any) any { return derefUint64(v.(*models.AuditLog).UserID) }},
	"request_id":      {"Request ID", func(v any) any { return v.(*models.AuditLog).RequestID }},
	"response_status": {"Response Status", func(v any) any { return v.(*models.AuditLog).ResponseStatus }},
	"is_success":      {"Success", func(v any) any { return v.(*models.AuditLog).IsSuccess }},
	"error_message":   {"Error", func(v any) any { return v.(*models.AuditLog).ErrorMessage }},
	"created_at":      {"Created At", func(v any) any { return v.(*models.AuditLog).CreatedAt.Format(time.RFC3339) }},
}

// auditLogFieldOrder fixes the column order for full exports.
var auditLogFieldOrder = []string{
	"id", "endpoint", "method", "user_id", "request_id",
	"response_status", "is_success", "error_message", "created_at",
}

func derefUint64(v *uint64) any {
	if v == nil {
		return ""
	}
	return *v
}

// CreditRequestFieldNames lists the selectable credit request columns.
func CreditRequestFieldNames() []string {
	return append([]string(nil), creditRequestFieldOrder...)
}

// AuditLogFieldNames lists the selectable audit log columns.
func AuditLogFieldNames() []string {
	return append([]string(nil), auditLogFieldOrder...)
}

// resolveFields validates the requested field names against the catalog and
// returns them in catalog order. Empty selection means all fields.
func resolveFields(requested []string, catalog map[string]field, order []string) ([]string, error) {
	if len(requested) == 0 {
		return order, nil
	}
	selected := make(map[string]struct{}, len(requested))
	for _, name := range requested {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, known := catalog[name]; !known {
			return nil, fmt.Errorf("unknown export field %q", name)
		}
		selected[name] = struct{}{}
	}
	if len(selected) == 0 {
		return order, nil
	}
	resolved := make([]string, 0, len(selected))
	for _, name := range order {
		if _, ok := selected[name]; ok {
			resolved = append(resolved, name)
		}
	}
	return resolved, nil
}

// buildSheet writes rows into a new workbook and returns its bytes.
func buildSheet(sheetName string, fieldNames []string, catalog map[string]field, rows []any) ([]byte, error) {
	wb := excelize.NewFile()
	defer wb.Close()

	if errRename := wb.SetSheetName("Sheet1", sheetName); errRename != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", errRename)
	}

	headerStyle, errStyle := wb.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFillColor}},
	})
	if errStyle != nil {
		return nil, fmt.Errorf("export: header style: %w", errStyle)
	}

	widths := make([]float64, len(fieldNames))
	for col, name := range fieldNames {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		header := catalog[name].Header
		if errSet := wb.SetCellValue(sheetName, cell, header); errSet != nil {
			return nil, fmt.Errorf("export: write header: %w", errSet)
		}
		if errStyleSet := wb.SetCellStyle(sheetName, cell, cell, headerStyle); errStyleSet != nil {
			return nil, fmt.Errorf("export: style header: %w", errStyleSet)
		}
		widths[col] = float64(len(header)) + 4
	}

	for rowIdx, row := range rows {
		for col, name := range fieldNames {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			value := catalog[name].Value(row)
			if errSet := wb.SetCellValue(sheetName, cell, value); errSet != nil {
				return nil, fmt.Errorf("export: write cell: %w", errSet)
			}
			if width := float64(len(fmt.Sprint(value))) + 2; width > widths[col] {
				widths[col] = width
			}
		}
	}

	for col := range fieldNames {
		colName, _ := excelize.ColumnNumberToName(col + 1)
		width := widths[col]
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		if errWidth := wb.SetColWidth(sheetName, colName, colName, width); errWidth != nil {
			return nil, fmt.Errorf("export: set column width: %w", errWidth)
		}
	}

	var buf bytes.Buffer
	if errWrite := wb.Write(&buf); errWrite != nil {
		return nil, fmt.Errorf("export: write workbook: %w", errWrite)
	}
	return buf.Bytes(), nil
}

// CreditRequests renders the given requests as an Excel workbook.
func CreditRequests(requests []models.CreditRequest, fieldNames []string) ([]byte, error) {
	resolved, errResolve := resolveFields(fieldNames, creditRequestFields, creditRequestFieldOrder)
	if errResolve != nil {
		return nil, errResolve
	}
	rows := make([]any, len(requests))
	for i := range requests {
		rows[i] = &requests[i]
	}
	return buildSheet("Credit Requests", resolved, creditRequestFields, rows)
}

// AuditLogs renders the given audit entries as an Excel workbook.
func AuditLogs(entries []models.AuditLog, fieldNames []string) ([]byte, error) {
	resolved, errResolve := resolveFields(fieldNames, auditLogFields, auditLogFieldOrder)
	if errResolve != nil {
		return nil, errResolve
	}
	rows := make([]any, len(entries))
	for i := range entries {
		rows[i] = &entries[i]
	}
	return buildSheet("Audit Logs", resolved, auditLogFields, rows)
}

package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// defaultPageSize bounds listings when the caller does not set a limit.
const defaultPageSize = 20

// maxPageSize caps the caller-supplied page size.
const maxPageSize = 200

// getUserID extracts the authenticated user ID from gin context.
func getUserID(c *gin.Context) uint64 {
	val, exists := c.Get("userID")
	if !exists {
		return 0
	}
	id, ok := val.(uint64)
	if !ok {
		return 0
	}
	return id
}

// isAdmin reports whether the authenticated user is an administrator.
func isAdmin(c *gin.Context) bool {
	return c.GetBool("isAdmin")
}

// parsePagination reads offset and limit query parameters with bounds.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return offset, limit
}

// parseBoolQuery reads an optional boolean query parameter.
func parseBoolQuery(c *gin.Context, name string) *bool {
	raw := strings.TrimSpace(c.Query(name))
	switch raw {
	case "true", "1":
		v := true
		return &v
	case "false", "0":
		v := false
		return &v
	default:
		return nil
	}
}

// parseDateQuery reads an optional RFC 3339 date or datetime query parameter.
func parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	if ts, errParse := time.Parse(time.RFC3339, raw); errParse == nil {
		return &ts, true
	}
	if day, errParse := time.Parse("2006-01-02", raw); errParse == nil {
		return &day, true
	}
	return nil, false
}

package server

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const dateOnlyLayout = "2006-01-02"

// parseVersionQuery reads the ?version= guard that DELETE-shaped endpoints
// carry instead of a JSON body.
func parseVersionQuery(c *gin.Context) (int64, error) {
	raw := strings.TrimSpace(c.Query("version"))
	if raw == "" {
		return 0, newValidationError("version", "invalid_version", "version is required")
	}
	version, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || version < 0 {
		return 0, newValidationError("version", "invalid_version", "invalid version")
	}
	return version, nil
}

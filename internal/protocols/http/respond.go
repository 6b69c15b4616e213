package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"devdash/pkg/logger"
	"devdash/pkg/models"
)

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, models.APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, models.APIResponse{
		Success:   false,
		Error:     message,
		Timestamp: time.Now(),
	})
}

// respondErr maps a service error onto the envelope. Server-side failures
// are logged and hidden behind fallback.
func respondErr(c *gin.Context, err error, fallback string) {
	status := models.StatusCodeOf(err)
	if status >= http.StatusInternalServerError {
		logger.WithRequestID(c.Request.Context()).WithFields(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).WithError(err).Error(fallback)
		respondError(c, status, fallback)
		return
	}

	message := err.Error()
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	respondError(c, status, message)
}

// queryLimit parses ?limit=, keeping def for missing or out of range values
func queryLimit(c *gin.Context, def, max int) int {
	if l := c.Query("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= max {
			return v
		}
	}
	return def
}

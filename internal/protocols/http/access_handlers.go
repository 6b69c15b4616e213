package http

import (
	_ "embed"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"devdash/internal/core"
	"devdash/pkg/logger"
	"devdash/pkg/models"
)

//go:embed static/access.html
var accessPageHTML []byte

// accessPage serves the code entry form
func (s *Server) accessPage(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", accessPageHTML)
}

// verifyAccess checks the shared code and sets the session cookie
func (s *Server) verifyAccess(c *gin.Context) {
	// only an unparseable body is a bad request; a missing code falls through to Verify
	var req models.AccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Access("bad_request", c.ClientIP())
		c.JSON(http.StatusBadRequest, models.AccessResponse{Success: false, Message: "Bad request"})
		return
	}

	grant, err := s.accessSvc.Verify(req.Code)
	switch {
	case errors.Is(err, models.ErrAccessNotConfigured):
		logger.Access("not_configured", c.ClientIP())
		c.JSON(http.StatusInternalServerError, models.AccessResponse{Success: false, Message: "Server not configured"})
		return
	case errors.Is(err, models.ErrInvalidAccessCode):
		logger.Access("denied", c.ClientIP())
		c.JSON(http.StatusUnauthorized, models.AccessResponse{Success: false, Message: "Invalid code"})
		return
	case err != nil:
		logger.WithFields(map[string]interface{}{"client_ip": c.ClientIP()}).WithError(err).Error("access verification failed")
		c.JSON(http.StatusInternalServerError, models.AccessResponse{Success: false, Message: "Bad request"})
		return
	}

	s.setSessionCookie(c, grant.Token, int(grant.MaxAge.Seconds()))
	logger.Access("granted", c.ClientIP())
	c.JSON(http.StatusOK, models.AccessResponse{Success: true})
}

// logout clears the session cookie
func (s *Server) logout(c *gin.Context) {
	s.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, models.AccessResponse{Success: true})
}

func (s *Server) setSessionCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(core.SessionCookieName, value, maxAge, "/", "", s.secureCookie, true)
}

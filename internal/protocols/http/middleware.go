package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"devdash/internal/core"
	"devdash/pkg/logger"
)

var publicPrefixes = []string{"/access", "/_next", "/favicon", "/api/access"}

var publicPaths = map[string]bool{
	"/robots.txt":  true,
	"/sitemap.xml": true,
	"/health":      true,
}

// IsPublicPath reports whether path bypasses the access gate
func IsPublicPath(path string) bool {
	if publicPaths[path] {
		return true
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// AccessGate redirects requests without a valid session marker to the code
// entry page, carrying the original path in ?next=
func AccessGate(access core.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if IsPublicPath(path) {
			c.Next()
			return
		}

		token, err := c.Cookie(core.SessionCookieName)
		if err == nil && access != nil && access.ValidateSession(token) == nil {
			c.Next()
			return
		}

		c.Redirect(http.StatusFound, "/access?next="+url.QueryEscape(path))
		c.Abort()
	}
}

// RequestIDHeader carries the id that ties a request to its log lines
const RequestIDHeader = "X-Request-ID"

// requestID reuses a caller supplied id or assigns one, and stores it in the
// request context for logger.WithRequestID
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// requestLogger routes gin request logging through pkg/logger
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.HTTP(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), int(time.Since(start).Milliseconds()))
	}
}

// corsMiddleware handles CORS. An empty list allows any origin without credentials.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		switch {
		case len(set) == 0:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && (set[origin] || set["*"]):
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"devdash/internal/core"
)

// Options wires the services and settings the HTTP server needs
type Options struct {
	Access         core.AccessService
	Dashboard      core.DashboardService
	Chat           core.ChatService
	AllowedOrigins []string
	SecureCookie   bool
	// Ready reports whether backing stores are reachable, for /health
	Ready func() error
}

// Server manages the HTTP REST API server
type Server struct {
	router       *gin.Engine
	accessSvc    core.AccessService
	dashboardSvc core.DashboardService
	chatSvc      core.ChatService
	secureCookie bool
	ready        func() error
	httpServer   *http.Server
}

// NewServer creates a new HTTP server with all handlers. Every route outside
// the public set sits behind the access gate.
func NewServer(opts Options) *Server {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(requestID())
	router.Use(requestLogger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(opts.AllowedOrigins))
	router.Use(AccessGate(opts.Access))

	s := &Server{
		router:       router,
		accessSvc:    opts.Access,
		dashboardSvc: opts.Dashboard,
		chatSvc:      opts.Chat,
		secureCookie: opts.SecureCookie,
		ready:        opts.Ready,
	}

	s.setupRoutes()
	return s
}

// setupRoutes registers all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)

	s.router.GET("/access", s.accessPage)
	s.router.POST("/api/access", s.verifyAccess)
	s.router.POST("/api/access/logout", s.logout)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/dashboard", s.getDashboard)

		videos := v1.Group("/videos")
		{
			videos.GET("", s.listVideos)
			videos.GET("/summary", s.getVideoSummaries)
			videos.GET("/:id", s.getVideo)
		}

		v1.GET("/analytics", s.getAnalytics)

		users := v1.Group("/users")
		{
			users.GET("", s.listUsers)
			users.GET("/:id/analytics", s.getUserAnalytics)
		}

		v1.GET("/activity/recent", s.getRecentActivity)
		v1.GET("/notifications", s.listNotifications)

		chats := v1.Group("/chats/:user_id")
		{
			chats.GET("/messages", s.listMessages)
			chats.POST("/messages", s.sendMessage)
			chats.POST("/read", s.markRead)
		}
	}
}

// Start listens on addr until Shutdown is called
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Router returns the gin router, used to mount the websocket routes and in tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// healthCheck returns server health status
func (s *Server) healthCheck(c *gin.Context) {
	status, code := "ok", http.StatusOK
	if s.ready != nil {
		if err := s.ready(); err != nil {
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	c.JSON(code, gin.H{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}

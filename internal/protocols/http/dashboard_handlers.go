package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devdash/internal/analytics"
)

// getDashboard returns the headline counters
func (s *Server) getDashboard(c *gin.Context) {
	stats, err := s.dashboardSvc.Stats(c.Request.Context())
	if err != nil {
		respondErr(c, err, "failed to get dashboard stats")
		return
	}
	respondOK(c, http.StatusOK, stats)
}

// getVideoSummaries returns one engagement summary per video, in table order
func (s *Server) getVideoSummaries(c *gin.Context) {
	summaries, err := s.dashboardSvc.VideoSummaries(c.Request.Context())
	if err != nil {
		respondErr(c, err, "failed to get video summaries")
		return
	}
	respondOK(c, http.StatusOK, summaries)
}

// listVideos handles ?q= search and ?sort=views|approvals|engagement
func (s *Server) listVideos(c *gin.Context) {
	videos, err := s.dashboardSvc.Videos(c.Request.Context(), c.Query("q"), c.Query("sort"))
	if err != nil {
		respondErr(c, err, "failed to list videos")
		return
	}
	respondOK(c, http.StatusOK, videos)
}

func (s *Server) getVideo(c *gin.Context) {
	video, err := s.dashboardSvc.Video(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err, "failed to get video")
		return
	}
	respondOK(c, http.StatusOK, video)
}

// getAnalytics returns the analytics page overview
func (s *Server) getAnalytics(c *gin.Context) {
	limit := queryLimit(c, analytics.DefaultTopVideos, 100)
	overview, err := s.dashboardSvc.Overview(c.Request.Context(), limit)
	if err != nil {
		respondErr(c, err, "failed to get analytics")
		return
	}
	respondOK(c, http.StatusOK, overview)
}

// listUsers handles ?q= search and ?sort=name|activity|engagements
func (s *Server) listUsers(c *gin.Context) {
	users, err := s.dashboardSvc.Users(c.Request.Context(), c.Query("q"), c.Query("sort"))
	if err != nil {
		respondErr(c, err, "failed to list users")
		return
	}
	respondOK(c, http.StatusOK, users)
}

func (s *Server) getUserAnalytics(c *gin.Context) {
	ua, err := s.dashboardSvc.UserAnalytics(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err, "failed to get user analytics")
		return
	}
	respondOK(c, http.StatusOK, ua)
}

func (s *Server) getRecentActivity(c *gin.Context) {
	limit := queryLimit(c, analytics.DefaultActivityLimit, 50)
	items, err := s.dashboardSvc.RecentActivity(c.Request.Context(), limit)
	if err != nil {
		respondErr(c, err, "failed to get recent activity")
		return
	}
	respondOK(c, http.StatusOK, items)
}

func (s *Server) listNotifications(c *gin.Context) {
	list, err := s.dashboardSvc.Notifications(c.Request.Context())
	if err != nil {
		respondErr(c, err, "failed to list notifications")
		return
	}
	respondOK(c, http.StatusOK, list)
}

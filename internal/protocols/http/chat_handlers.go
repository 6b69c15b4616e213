package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"devdash/pkg/models"
)

// listMessages returns the newest messages of a parent's thread
func (s *Server) listMessages(c *gin.Context) {
	messages, err := s.chatSvc.History(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondErr(c, err, "failed to get messages")
		return
	}
	respondOK(c, http.StatusOK, messages)
}

// sendMessage stores a doctor reply
func (s *Server) sendMessage(c *gin.Context) {
	var req models.SendChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	message, err := s.chatSvc.Send(c.Request.Context(), c.Param("user_id"), req.Message)
	if err != nil {
		respondErr(c, err, "failed to send message")
		return
	}
	respondOK(c, http.StatusCreated, message)
}

// markRead flags the parent's messages as read
func (s *Server) markRead(c *gin.Context) {
	n, err := s.chatSvc.MarkRead(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondErr(c, err, "failed to mark messages read")
		return
	}
	respondOK(c, http.StatusOK, gin.H{"updated": n})
}

package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	errx "github.com/covenant-qa/server/internal/core/error"
	"github.com/covenant-qa/server/internal/qa/model"
	logx "github.com/covenant-qa/server/pkg/logger"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleAsk(c *gin.Context) {
	req, ok := s.bindAskRequest(c)
	if !ok {
		return
	}

	resp := s.processor.ProcessRequest(c.Request.Context(), req)
	c.JSON(http.StatusOK, resp)
}

// handleAskStream answers over SSE: status events while the pipeline runs,
// then a completion event carrying the full response.
func (s *Server) handleAskStream(c *gin.Context) {
	req, ok := s.bindAskRequest(c)
	if !ok {
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	sink := newSSESink(c.Writer)
	s.processor.ProcessRequestStream(c.Request.Context(), req, sink)
}

func (s *Server) handleClearSession(c *gin.Context) {
	sessionID := c.Param("id")
	if strings.TrimSpace(sessionID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session id is required"})
		return
	}

	if err := s.history.ClearHistory(c.Request.Context(), sessionID); err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("Clearing session failed")
		status, message := http.StatusInternalServerError, errx.SystemErrorMessage
		var appErr *errx.AppError
		if errors.As(err, &appErr) {
			status, message = appErr.Status, appErr.Message
		}
		c.JSON(status, gin.H{"error": message})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) bindAskRequest(c *gin.Context) (model.QueryRequest, bool) {
	var req model.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return model.QueryRequest{}, false
	}
	if strings.TrimSpace(req.Prompt) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return model.QueryRequest{}, false
	}
	return req, true
}

// Package server exposes the question answering pipeline over HTTP: a JSON
// ask endpoint, an SSE streaming variant, session management, and a health
// probe.
package server

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/covenant-qa/server/internal/core"
	"github.com/covenant-qa/server/internal/qa/model"
)

// RequestProcessor is the pipeline entry point the handlers depend on.
type RequestProcessor interface {
	ProcessRequest(ctx context.Context, req model.QueryRequest) *model.QueryResponse
	ProcessRequestStream(ctx context.Context, req model.QueryRequest, sink model.EventSink) *model.QueryResponse
}

type Server struct {
	router    *gin.Engine
	processor RequestProcessor
	history   model.ConversationRepository
}

func New(env core.Environment, processor RequestProcessor, history model.ConversationRepository) *Server {
	if env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:    gin.New(),
		processor: processor,
		history:   history,
	}
	s.router.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/v1")
	v1.POST("/ask", s.handleAsk)
	v1.POST("/ask/stream", s.handleAskStream)
	v1.DELETE("/sessions/:id", s.handleClearSession)
}

// Handler returns the underlying HTTP handler, for tests and embedding.
func (s *Server) Handler() *gin.Engine {
	return s.router
}

// Run blocks serving HTTP on the given address.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

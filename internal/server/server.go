// Package server exposes the analysis pipeline over a small REST API.
package server

import (
	"net/http"

	"github.com/bobmcallan/sectorlens/internal/app"
	"github.com/bobmcallan/sectorlens/internal/common"
)

// Server is the HTTP REST API server.
type Server struct {
	app    *app.App
	logger *common.Logger
}

// NewServer creates a new HTTP REST API server.
func NewServer(a *app.App) *Server {
	return &Server{
		app:    a,
		logger: a.Logger,
	}
}

// Handler returns the fully wired HTTP handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	var handler http.Handler = mux
	handler = loggingMiddleware(s.logger)(handler)
	handler = correlationIDMiddleware(handler)
	handler = corsMiddleware(handler)
	handler = recoveryMiddleware(s.logger)(handler)
	return handler
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/sectors", s.handleSectors)
}

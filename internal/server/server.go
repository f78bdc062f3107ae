// Package server wires the HTTP API together.
package server

import (
	"context"
	"net/http"

	"github.com/fintrackr/backend/internal/config"
	"github.com/fintrackr/backend/internal/extract"
	"github.com/fintrackr/backend/internal/firestore"
	"github.com/fintrackr/backend/internal/handlers"
	"github.com/fintrackr/backend/internal/middleware"
	"github.com/fintrackr/backend/internal/pipeline"
	"github.com/fintrackr/backend/internal/streaming"
)

// Server represents the fintrackr API server
type Server struct {
	cfg      *config.Config
	fsClient *firestore.Client
	mux      *http.ServeMux
}

// New creates a new server instance
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	fsClient, err := firestore.NewClient(ctx, cfg.ProjectID, cfg.Collections)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		fsClient: fsClient,
		mux:      http.NewServeMux(),
	}

	s.setupRoutes()

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health check (no auth required)
	s.mux.HandleFunc("/health", handlers.HealthCheck)

	apiHandler := handlers.NewAPIHandler(s.fsClient)
	authMiddleware := middleware.NewAuthMiddleware(s.fsClient.Auth)

	hub := streaming.NewStreamHub()
	pipe := pipeline.NewPipeline(extract.NewPDFExtractor(), s.fsClient, s.cfg.SpendingGoal, hub)
	ingestHandler := handlers.NewIngestHandlers(s.fsClient, pipe, hub)

	// Protected API routes
	s.mux.Handle("GET /api/transactions", authMiddleware.RequireAuth(http.HandlerFunc(apiHandler.GetTransactions)))
	s.mux.Handle("DELETE /api/delete-transactions", authMiddleware.RequireAuth(http.HandlerFunc(apiHandler.DeleteTransactions)))
	s.mux.Handle("POST /api/set-budget", authMiddleware.RequireAuth(http.HandlerFunc(apiHandler.SetBudget)))
	s.mux.Handle("GET /api/get-budget", authMiddleware.RequireAuth(http.HandlerFunc(apiHandler.GetBudget)))
	s.mux.Handle("GET /api/budget-status", authMiddleware.RequireAuth(http.HandlerFunc(apiHandler.BudgetStatus)))

	// Ingest endpoints
	s.mux.Handle("POST /api/upload-pdf", authMiddleware.RequireAuth(http.HandlerFunc(ingestHandler.UploadPDF)))
	s.mux.Handle("POST /api/reprocess-pdf", authMiddleware.RequireAuth(http.HandlerFunc(ingestHandler.ReprocessPDF)))
	s.mux.Handle("GET /api/ingest/{id}/events", authMiddleware.RequireAuth(http.HandlerFunc(ingestHandler.Events)))
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return middleware.CORS(s.cfg.AllowedOrigin)(s.mux)
}

// Close closes the server resources
func (s *Server) Close() error {
	return s.fsClient.Close()
}

package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/api/handlers"
	appMiddleware "github.com/sonalmogra28/benefitsaichatbot-sub001/internal/api/middlewares"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/config"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/core"
	"github.com/sonalmogra28/benefitsaichatbot-sub001/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        *slog.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, db core.DbClient, docs *services.DocumentService, retrieval *services.RetrievalService, log *slog.Logger) *Server {
	authHandler := handlers.NewAuthHandler(db)
	docHandler := handlers.NewDocumentHandler(docs, log)
	searchHandler := handlers.NewSearchHandler(retrieval, cfg.SearchTopK)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(api chi.Router) {
		// public endpoints
		api.Post("/signup", authHandler.Signup)
		api.Post("/login", authHandler.Login)

		// protected endpoints
		api.Group(func(protected chi.Router) {
			protected.Use(appMiddleware.JWTMiddleware)
			protected.Post("/documents/upload", docHandler.UploadDocument)
			protected.Get("/documents", docHandler.GetDocuments)
			protected.Get("/documents/{documentID}", docHandler.GetDocument)
			protected.Delete("/documents/{documentID}", docHandler.DeleteDocument)
			protected.Post("/documents/{documentID}/retry", docHandler.RetryDocument)
			protected.Post("/search", searchHandler.Search)
		})
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, log: log}
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

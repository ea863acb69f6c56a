// Package server exposes the assistant over HTTP: ingestion triggers, the
// chat endpoint with per-session state, and a WebSocket variant of chat.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/grimaldi89/martechito/internal/catalog"
	"github.com/grimaldi89/martechito/internal/chat"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)

	// Default descriptor filters for batch ingestion, overridable per request.
	Include []string
	Exclude []string
}

// Ingestor runs the ingestion pipeline. Satisfied by ingest.Pipeline.
type Ingestor interface {
	IngestDescriptors(ctx context.Context, descriptors []catalog.Descriptor) (int, error)
	IngestObject(ctx context.Context, bucket, object string) (int, error)
}

// DescriptorSource lists the registered document descriptors. Satisfied by
// catalog.Catalog.
type DescriptorSource interface {
	List(ctx context.Context) ([]catalog.Descriptor, error)
}

// Responder runs one conversational turn. Satisfied by chat.Engine.
type Responder interface {
	Respond(ctx context.Context, sess *chat.Session, utterance string) (chat.Reply, error)
}

// Server is the assistant's HTTP boundary.
type Server struct {
	cfg        Config
	catalog    DescriptorSource
	ingestor   Ingestor
	responder  Responder
	sessions   *sessionRegistry
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies.
func New(cfg Config, cat DescriptorSource, ingestor Ingestor, responder Responder) *Server {
	s := &Server{
		cfg:       cfg,
		catalog:   cat,
		ingestor:  ingestor,
		responder: responder,
		sessions:  newSessionRegistry(),
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/ingest", s.handleIngest)
		r.Post("/objects/ingest", s.handleIngestObject)
		r.Post("/chat", s.handleChat)
		r.Post("/chat/strategy", s.handleChatStrategy)
	})
	r.Get("/ws", s.handleWebSocket)

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      180 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("martechito server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

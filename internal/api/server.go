// Package api exposes the HTTP surface: the streaming chat endpoint, the
// voice credential endpoint, and the CRUD routes backing the client's
// persisted state.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/finpal/finpal-go/internal/lesson"
	"github.com/finpal/finpal-go/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Server struct {
	orchestrator TurnRunner
	voice        SecretMinter
	store        store.Store
	materializer *lesson.Materializer
	circuit      CircuitAdmin
	cache        CachePinger
	logger       *zap.Logger
	httpServer   *http.Server
}

type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// Deps carries the services the HTTP surface fronts.
type Deps struct {
	Orchestrator TurnRunner
	Voice        SecretMinter
	Store        store.Store
	Materializer *lesson.Materializer
	Circuit      CircuitAdmin
	// Cache may be nil when Redis is disabled.
	Cache CachePinger
}

func NewServer(cfg ServerConfig, deps Deps, logger *zap.Logger) *Server {
	s := &Server{
		orchestrator: deps.Orchestrator,
		voice:        deps.Voice,
		store:        deps.Store,
		materializer: deps.Materializer,
		circuit:      deps.Circuit,
		cache:        deps.Cache,
		logger:       logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	r.Use(corsHandler.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", s.handleChat)
		r.Get("/voicechat", s.handleVoiceChat)
		r.Get("/state", s.handleGetState)

		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handlePutProfile)
		r.Delete("/profile", s.handleDeleteProfile)

		r.Get("/lessons", s.handleGetLessons)
		r.Post("/lessons", s.handleMaterializeLessons)
		r.Delete("/lessons/{id}", s.handleDeleteLesson)

		r.Get("/history", s.handleGetHistory)
		r.Post("/history", s.handleSaveHistory)
		r.Delete("/history", s.handleClearHistory)

		r.Get("/admin/status", s.handleAdminStatus)
		r.Post("/admin/circuit/reset", s.handleCircuitReset)
	})

	s.httpServer = &http.Server{
		Addr:        cfg.Addr,
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// WriteTimeout stays zero: /api/chat holds the response open for the
		// duration of the model stream.
		WriteTimeout: 0,
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: New builds the whole dependency graph
//
//	config → sqlite.DB → services → handlers → chi routes
//
// so main.go only loads config, picks a Generator and calls Start.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/sakif/study-cards/internal/auth"
	"github.com/sakif/study-cards/internal/config"
	"github.com/sakif/study-cards/internal/extractor"
	"github.com/sakif/study-cards/internal/handler"
	"github.com/sakif/study-cards/internal/middleware"
	sqliteRepo "github.com/sakif/study-cards/internal/repository/sqlite"
	"github.com/sakif/study-cards/internal/service"
	"github.com/sakif/study-cards/internal/upload"
)

const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server and all its dependencies.
// It owns the database connection and closes it on shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New wires every layer. gen is the model backend; main passes the Gemini
// generator, tests pass a fake.
//
// IMPORT ALIAS: repository/sqlite is imported as sqliteRepo so it is not
// confused with the modernc.org/sqlite driver.
func New(cfg *config.Config, logger *slog.Logger, gen extractor.Generator) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(gen); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTES:
//
//	GET    /api                  → welcome message
//	GET    /healthz              → liveness
//	POST   /auth/register        → create account, returns token
//	POST   /auth/login           → returns token
//	GET    /auth/me              → current user            [auth]
//	DELETE /auth/delete          → delete account and sets [auth]
//	POST   /flashcards/upload    → PDF → new set           [auth]
//	GET    /flashcards           → caller's sets           [auth]
//	GET    /flashcards/{id}      → one set                 [auth]
//	DELETE /flashcards/{id}      → delete one set          [auth]
//	*                            → static client (STATIC_DIR) or JSON 404
//
// MIDDLEWARE ORDER: RequestID, RealIP, Logger, Recoverer, then CORS, so a
// recovered panic is still logged with its request ID.
func (s *Server) setupRoutes(gen extractor.Generator) error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return err
	}

	gate, err := upload.NewGate(s.config.UploadDir, upload.MaxFileSize)
	if err != nil {
		return err
	}

	// === Services ===
	ex := extractor.NewExtractor(gen, s.config.ExtractionTimeout, s.logger)
	authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(), s.logger)
	flashcardService := service.NewFlashcardService(s.db, gate, ex, s.logger)

	// === Handlers ===
	resp := handler.NewResponder(s.config.IsDevelopment(), s.logger)
	authHandler := handler.NewAuthHandler(authService, resp, s.logger)
	flashcardHandler := handler.NewFlashcardHandler(flashcardService, gate.MaxBytes(), resp, s.logger)

	requireAuth := auth.RequireAuth(tokens, s.db, s.logger)

	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.New(cors.Options{
		AllowedOrigins:   s.config.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)

	s.router.Get("/api", resp.HandleWelcome)
	s.router.Get("/healthz", resp.HandleHealth)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandler.HandleMe)
			r.Delete("/delete", authHandler.HandleDeleteAccount)
		})
	})

	s.router.Route("/flashcards", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/upload", flashcardHandler.HandleUpload)
		r.Get("/", flashcardHandler.HandleList)
		r.Get("/{id}", flashcardHandler.HandleGet)
		r.Delete("/{id}", flashcardHandler.HandleDelete)
	})

	if s.config.StaticDir != "" {
		s.router.NotFound(spaHandler(s.config.StaticDir, resp.HandleNotFound))
	} else {
		s.router.NotFound(resp.HandleNotFound)
	}

	return nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second, // a 15 MiB upload on a slow link
		// The upload response is written only after extraction finishes.
		WriteTimeout: s.config.ExtractionTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("env", s.config.AppEnv),
			slog.String("database", s.config.DBPath),
			slog.String("uploads", s.config.UploadDir),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

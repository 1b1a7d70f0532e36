// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: the dependency chain
//
//	sqlite.DB → services → handlers → routes
//
// is assembled in one place (New/setupRoutes) rather than scattered across
// the codebase. Handlers never touch the database; services never touch
// HTTP.
package server

import (
	"context"
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

	"github.com/sakif/goal-tracker/internal/auth"
	"github.com/sakif/goal-tracker/internal/config"
	"github.com/sakif/goal-tracker/internal/handler"
	"github.com/sakif/goal-tracker/internal/middleware"
	sqliteRepo "github.com/sakif/goal-tracker/internal/repository/sqlite"
	"github.com/sakif/goal-tracker/internal/service"
)

// Server owns the router and the database connection. The DB is closed
// during graceful shutdown so pending WAL writes are flushed.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates a Server: opens the database, wires services and handlers, and
// registers all routes.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
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

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware, pages, and the JSON API.
//
// ROUTE MAP:
//
//	GET    /                        → entry/login page   (redirects to /dashboard when authenticated)
//	GET    /signup                  → signup page        (same redirect)
//	GET    /dashboard               → dashboard page     (redirects to / when anonymous)
//	GET    /mygoals                 → goal list page     (same guard)
//	*                               → redirect by session state
//	GET    /health                  → liveness probe
//	GET    /static/*                → css/js assets
//	POST   /api/signup              → create account
//	POST   /api/login               → issue session cookie
//	POST   /api/logout              → clear session cookie
//	GET    /api/me                  → current user            (auth)
//	GET    /api/goals?filter=       → filtered list           (auth)
//	GET    /api/goals/dashboard     → incomplete-first list   (auth)
//	POST   /api/goals               → add goal                (auth)
//	POST   /api/goals/{id}/toggle   → flip completed          (auth)
//	PUT    /api/goals/{id}          → edit text               (auth)
//	DELETE /api/goals/{id}?confirm= → delete, confirmed only  (auth)
//	GET    /auth/github/login       → OAuth redirect     (only when configured)
//	GET    /auth/github/callback    → OAuth completion   (only when configured)
func (s *Server) setupRoutes() error {
	// === Global middleware — runs on every request, in order ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// === Shared services ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.SessionTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	var github *auth.GitHubProvider
	if s.config.GitHubEnabled() {
		github = auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
	}

	authService := service.NewAuthService(s.db.Users(), tokens, passwords, s.logger)
	goalService := service.NewGoalService(s.db, s.logger)

	authHandler := handler.NewAuthHandler(authService, tokens, github, s.logger)
	goalHandler := handler.NewGoalHandler(goalService, s.logger)

	pages, err := handler.NewPageHandler(s.config.TemplateDir, authService, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}

	// === Health and static assets ===
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	// === Pages with route guards ===
	// Entry/signup bounce authenticated visitors to the dashboard; the
	// dashboard and goal list bounce anonymous visitors to the entry page.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RedirectAuthenticated(tokens))
		r.Get("/", pages.HandleLogin)
		r.Get("/signup", pages.HandleSignup)
	})

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequirePage(tokens))
		r.Get("/dashboard", pages.HandleDashboard)
		r.Get("/mygoals", pages.HandleGoals)
	})

	// Unknown paths redirect based on session presence.
	notFound := auth.OptionalAuth(tokens)(http.HandlerFunc(pages.HandleNotFound))
	s.router.NotFound(notFound.ServeHTTP)

	// === GitHub OAuth (optional) ===
	if github != nil {
		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	} else {
		s.logger.Info("GitHub OAuth not configured — sign-in routes disabled")
	}

	// === JSON API ===
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(corsHandler.Handler)

		r.Post("/signup", authHandler.HandleSignup)
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/me", authHandler.HandleMe)

			r.Get("/goals", goalHandler.HandleList)
			r.Get("/goals/dashboard", goalHandler.HandleDashboard)
			r.Post("/goals", goalHandler.HandleCreate)
			r.Post("/goals/{id}/toggle", goalHandler.HandleToggle)
			r.Put("/goals/{id}", goalHandler.HandleUpdate)
			r.Delete("/goals/{id}", goalHandler.HandleDelete)
		})
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30s to
// drain, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Package server wires the dependency graph and the router.
//
// This is the composition root: every concrete type is created here and
// handed down as an interface or a service pointer.
//
//	sqlite.DB + storage.Disk → services → handlers → chi routes
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/photo-share/internal/auth"
	"github.com/sakif/photo-share/internal/config"
	"github.com/sakif/photo-share/internal/handler"
	"github.com/sakif/photo-share/internal/middleware"
	sqliteRepo "github.com/sakif/photo-share/internal/repository/sqlite"
	"github.com/sakif/photo-share/internal/service"
	"github.com/sakif/photo-share/internal/storage"
)

// shutdownTimeout is how long in-flight requests get to finish after
// SIGINT or SIGTERM.
const shutdownTimeout = 30 * time.Second

// Server owns the router and the database connection. The database is
// closed when Start returns, or by Close when Start is never called.
type Server struct {
	router *chi.Mux
	config config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	images *storage.Disk
	tokens *auth.TokenService
}

// Option customizes a Server. Tests use it to swap the password cost.
type Option func(*options)

type options struct {
	passwords *auth.PasswordService
}

// WithPasswordService replaces the default bcrypt cost.
func WithPasswordService(p *auth.PasswordService) Option {
	return func(o *options) { o.passwords = p }
}

// New opens the database and upload directory and builds the router.
func New(cfg config.Config, logger *slog.Logger, opts ...Option) (*Server, error) {
	o := options{passwords: auth.NewPasswordService()}
	for _, opt := range opts {
		opt(&o)
	}

	tokens, err := auth.NewTokenService(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	images, err := storage.NewDisk(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	if err := ensureDBDir(cfg.DBPath); err != nil {
		return nil, err
	}
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("server: opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		images: images,
		tokens: tokens,
	}

	if err := s.setupRoutes(o.passwords); err != nil {
		db.Close()
		return nil, fmt.Errorf("server: setting up routes: %w", err)
	}

	return s, nil
}

// ensureDBDir creates the parent directory of a file database, like
// `mkdir -p`. In-memory databases need nothing.
func ensureDBDir(dbPath string) error {
	if dbPath == ":memory:" || filepath.Dir(dbPath) == "." {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("server: creating database directory: %w", err)
	}
	return nil
}

// setupRoutes registers middleware and routes.
//
//	GET    /                         → redirect to /feed or /login
//	GET    /healthz                  → {"status":"ok"}
//	GET    /static/uploads/{file}    → uploaded images
//	GET    /login, /signup           → forms
//	POST   /login, /signup           → JSON results
//	GET    /logout                   → clear cookie
//	GET    /feed, /upload            → pages (redirect to /login)
//	POST   /upload                   → multipart upload (401)
//	GET    /api/feed                 → JSON feed (401)
//	POST   /api/like/{post_id}       → like (401)
//	DELETE /api/like/{post_id}       → unlike (401)
//	POST   /api/comment/{post_id}    → comment (401)
//	DELETE /api/post/{post_id}       → delete own post (401, 403)
//
// Middleware order: RequestID must precede Logger so every log line
// carries the id; Recoverer sits inside Logger so a panic is logged as 500.
func (s *Server) setupRoutes(passwords *auth.PasswordService) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	pages, err := handler.NewPages(s.logger)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(s.db, passwords, s.tokens, s.logger)
	postService := service.NewPostService(s.db, s.images, s.logger)
	engagementService := service.NewEngagementService(s.db, s.logger)
	feedService := service.NewFeedService(postService, engagementService)

	authHandler := handler.NewAuthHandler(authService, s.tokens, pages, s.logger)
	postHandler := handler.NewPostHandler(postService, pages, s.config.MaxUploadBytes, s.logger)
	engagementHandler := handler.NewEngagementHandler(engagementService, s.logger)
	feedHandler := handler.NewFeedHandler(feedService, pages, s.logger)

	requirePage := auth.RequireSession(s.tokens, http.HandlerFunc(handler.RedirectToLogin))
	requireAPI := auth.RequireSession(s.tokens, http.HandlerFunc(handler.RejectUnauthorized))

	// === Public ===
	s.router.Get("/healthz", handler.HealthHandler(s.db))
	s.router.With(auth.OptionalSession(s.tokens)).Get("/", authHandler.HandleIndex)

	uploads := http.StripPrefix("/static/uploads/", http.FileServer(http.Dir(s.images.Dir())))
	s.router.Get("/static/uploads/*", func(w http.ResponseWriter, r *http.Request) {
		// No directory listings.
		if chi.URLParam(r, "*") == "" {
			http.NotFound(w, r)
			return
		}
		uploads.ServeHTTP(w, r)
	})

	s.router.Get("/login", authHandler.HandleLoginPage)
	s.router.Post("/login", authHandler.HandleLogin)
	s.router.Get("/signup", authHandler.HandleSignupPage)
	s.router.Post("/signup", authHandler.HandleSignup)
	s.router.Get("/logout", authHandler.HandleLogout)

	// === Pages ===
	s.router.Group(func(r chi.Router) {
		r.Use(requirePage)
		r.Get("/feed", feedHandler.HandleFeedPage)
		r.Get("/upload", postHandler.HandleUploadPage)
	})

	// === JSON endpoints ===
	s.router.With(requireAPI).Post("/upload", postHandler.HandleUpload)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(requireAPI)
		r.Get("/feed", feedHandler.HandleFeedAPI)
		r.Post("/like/{post_id}", engagementHandler.HandleLike)
		r.Delete("/like/{post_id}", engagementHandler.HandleUnlike)
		r.Post("/comment/{post_id}", engagementHandler.HandleComment)
		r.Delete("/post/{post_id}", postHandler.HandleDelete)
	})

	return nil
}

// Handler returns the root handler. Tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Only needed when Start was never called.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves until SIGINT or SIGTERM, then drains in-flight requests
// for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// Sized for 16 MiB uploads.
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.String("uploads", s.images.Dir()),
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

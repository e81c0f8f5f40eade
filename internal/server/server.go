package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/astlens/pkg/cache"
	"github.com/matzehuels/astlens/pkg/observability"
	"github.com/matzehuels/astlens/pkg/pipeline"
	"github.com/matzehuels/astlens/pkg/tree"
)

// Defaults for Config.
const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 256

	// maxBodyBytes bounds uploaded analysis documents.
	maxBodyBytes = 8 << 20

	cleanupInterval = time.Minute
	shutdownTimeout = 5 * time.Second
)

// Config configures a Server.
type Config struct {
	// Options hold the layout, style and viewport settings of new sessions.
	// Width and Height, when set, are the initial viewer size.
	Options pipeline.Options

	// Cache stores exported artifacts. Nil disables caching.
	Cache cache.Cache

	Logger *log.Logger

	SessionTTL  time.Duration
	MaxSessions int

	// Preload, when set, is offered to the viewer page at GET /api/analysis
	// and opened automatically.
	Preload *tree.Analysis
}

// Server is the HTTP viewer host.
type Server struct {
	opts    pipeline.Options
	cache   cache.Cache
	logger  *log.Logger
	ttl     time.Duration
	preload *tree.Analysis

	sessions *store
	router   chi.Router
}

// New validates cfg and builds the router.
func New(cfg Config) (*Server, error) {
	opts := cfg.Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewNullCache()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}

	s := &Server{
		opts:     opts,
		cache:    cfg.Cache,
		logger:   cfg.Logger,
		ttl:      cfg.SessionTTL,
		preload:  cfg.Preload,
		sessions: newStore(cfg.SessionTTL, cfg.MaxSessions),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/api/analysis", s.handlePreload)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleSessionInfo)
			r.Delete("/", s.handleDeleteSession)
			r.Get("/frame.svg", s.handleFrame)
			r.Post("/events", s.handleEvent)
			r.Post("/commands/{command}", s.handleCommand)
			r.Post("/resize", s.handleResize)
			r.Get("/export/{format}", s.handleExport)
		})
	})
	return r
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int { return s.sessions.len() }

// Cleanup removes expired sessions.
func (s *Server) Cleanup() int { return s.sessions.cleanup(time.Now()) }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. Expired sessions are swept every minute.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go s.sweep(ctx)

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("viewer listening", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "sessions", s.Sessions())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return ctx.Err()
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Cleanup(); n > 0 {
				s.logger.Debug("expired sessions removed", "count", n, "live", s.Sessions())
			}
		}
	}
}

// observe reports every request to the HTTP hooks and logs it at debug
// level.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, d)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", d.Round(time.Microsecond),
			"id", middleware.GetReqID(r.Context()))
	})
}

package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JaceDashS/gpt-3d-visualizer/pkg/cache"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/errors"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/source"
	"github.com/JaceDashS/gpt-3d-visualizer/pkg/store"
)

// Defaults for Config fields left empty.
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultService         = "GPT Visualizer"
	DefaultCORSOrigin      = "http://localhost:3000"
	DefaultCacheTTL        = 24 * time.Hour
	DefaultShutdownTimeout = 5 * time.Second
	maxBodyBytes           = 1 << 20
)

// Config holds listener and response settings.
type Config struct {
	Host            string
	Port            int
	CORSOrigins     []string
	Service         string
	Version         string
	CacheTTL        time.Duration
	ShutdownTimeout time.Duration
}

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.CORSOrigins == nil {
		c.CORSOrigins = []string{DefaultCORSOrigin}
	}
	if c.Service == "" {
		c.Service = DefaultService
	}
	if c.Version == "" {
		c.Version = "dev"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// Addr returns host:port.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Server serves the visualize API.
type Server struct {
	cfg    Config
	src    source.Source
	cache  cache.Cache
	store  store.Store
	logger *log.Logger
	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithCache caches visualize responses. The default is no caching.
func WithCache(c cache.Cache) Option { return func(s *Server) { s.cache = c } }

// WithStore archives visualize responses. Without a store the trajectory
// routes answer 404.
func WithStore(st store.Store) Option { return func(s *Server) { s.store = st } }

// WithLogger sets the access and error logger.
func WithLogger(l *log.Logger) Option { return func(s *Server) { s.logger = l } }

// New builds a server generating tokens with src.
func New(cfg Config, src source.Source, opts ...Option) *Server {
	cfg.SetDefaults()
	s := &Server{cfg: cfg, src: src}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewNullCache()
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsHandler(s.cfg.CORSOrigins))
	r.Use(accessLog(s.logger))

	r.Get(source.HealthPath, s.handleHealth)
	r.Get(source.PrewarmPath, s.handleHealth)
	r.Post(source.VisualizePath, s.handleVisualize)
	r.Get("/api/trajectories/{id}", s.handleTrajectory)
	r.Get("/api/trajectories/{id}/render", s.handleRender)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, s.logger, notFound("no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: errorDetail{
			Code:    errors.ErrCodeInvalidInput,
			Message: r.Method + " not allowed on " + r.URL.Path,
		}})
	})
	return r
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Config returns the effective configuration.
func (s *Server) Config() Config { return s.cfg }

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	s.logger.Info("listening", "addr", ln.Addr().String(), "service", s.cfg.Service, "version", s.cfg.Version)

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

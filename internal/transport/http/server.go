package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/joshdurbin/hashlink/internal/service"
)

// ServerConfig holds the listener settings
type ServerConfig struct {
	Port         string
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	Verbose      bool
}

// Server represents the HTTP server
type Server struct {
	handler *Handler
	server  *http.Server
	port    string
	logger  *zap.Logger
}

// NewServer creates a new HTTP server. metricsHandler is mounted at /metrics
// and observer records request metrics; either may be nil.
func NewServer(shortener service.Shortener, cfg ServerConfig, logger *zap.Logger, observer RequestObserver, metricsHandler http.Handler) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := NewHandler(shortener, cfg.BaseURL, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", handler.Ping)
	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("POST /shorten", handler.Shorten)
	mux.HandleFunc("GET /api/urls/{code}", handler.Info)
	mux.HandleFunc("GET /{code}", handler.Redirect)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	middlewares := []Middleware{
		Recovery(logger),
		RequestID,
		NewLoggingMiddleware(logger, cfg.Verbose).Middleware,
	}
	// Metrics must sit directly on the mux to see the matched pattern
	if observer != nil {
		middlewares = append(middlewares, Metrics(observer))
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      Chain(mux, middlewares...),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorLog:     zap.NewStdLog(logger),
	}

	return &Server{
		handler: handler,
		server:  server,
		port:    cfg.Port,
		logger:  logger,
	}
}

// Start starts the HTTP server. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("server starting", zap.String("port", s.port))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve accepts connections on l until shutdown
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("server starting", zap.String("addr", l.Addr().String()))
	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// Port returns the server port
func (s *Server) Port() string {
	return s.port
}

// Routes returns the fully wrapped handler (useful for testing)
func (s *Server) Routes() http.Handler {
	return s.server.Handler
}

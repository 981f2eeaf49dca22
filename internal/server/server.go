// Package server exposes an object store over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/input-output-hk/catalyst-forge-libs/objectstore/internal/metrics"
	"github.com/input-output-hk/catalyst-forge-libs/objectstore/storetypes"
)

// Store is the object store the gateway serves. *objectstore.Client implements it.
type Store interface {
	Add(ctx context.Context, bucket, key string, body io.Reader, opts ...storetypes.UploadOption) (string, error)
	AddBatch(
		ctx context.Context,
		bucket string,
		items []storetypes.UploadItem,
		opts ...storetypes.UploadOption,
	) storetypes.BatchOutcome
	Get(ctx context.Context, bucket, key string) (io.ReadCloser, error)
	GetObject(ctx context.Context, bucket, key string) (*storetypes.Object, error)
	Delete(ctx context.Context, bucket, key string) error
	DeleteMany(ctx context.Context, bucket string, keys []string) error
	URL(bucket, key string) string
}

// Options configures the gateway.
type Options struct {
	AllowedOrigins  []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64

	// Gatherer backs GET /metrics. The route is absent when nil.
	Gatherer prometheus.Gatherer
}

// Server is the HTTP gateway.
type Server struct {
	store  Store
	opts   Options
	logger *zap.Logger
}

// New creates a gateway over store. A nil logger disables request logging.
func New(store Store, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 64 << 20
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}
	return &Server{store: store, opts: opts, logger: logger}
}

// Handler returns the gateway routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		OK(w, map[string]string{"status": "ok"})
	})
	if s.opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(s.opts.Gatherer))
	}

	r.Route("/v1/buckets/{bucket}", func(r chi.Router) {
		r.Put("/objects/*", s.putObject)
		r.Get("/objects/*", s.getObject)
		r.Delete("/objects/*", s.deleteObject)
		r.Post("/batch", s.putBatch)
		r.Post("/delete", s.deleteObjects)
		r.Get("/url/*", s.objectURL)
	})

	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) allowedOrigins() []string {
	if len(s.opts.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return s.opts.AllowedOrigins
}

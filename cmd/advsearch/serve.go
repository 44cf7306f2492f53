package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/advsearch/internal/backend"
	"github.com/kailas-cloud/advsearch/internal/backend/bleve"
	"github.com/kailas-cloud/advsearch/internal/backend/cache"
	"github.com/kailas-cloud/advsearch/internal/backend/postgres"
	"github.com/kailas-cloud/advsearch/internal/backend/redisearch"
	"github.com/kailas-cloud/advsearch/internal/backend/solr"
	"github.com/kailas-cloud/advsearch/internal/config"
	dbRedis "github.com/kailas-cloud/advsearch/internal/db/redis"
	"github.com/kailas-cloud/advsearch/internal/domain"
	"github.com/kailas-cloud/advsearch/internal/indexer"
	logpkg "github.com/kailas-cloud/advsearch/internal/logger"
	"github.com/kailas-cloud/advsearch/internal/metrics"
	"github.com/kailas-cloud/advsearch/internal/quickjump"
	chiTransport "github.com/kailas-cloud/advsearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/advsearch/internal/usecase/health"
	listeneruc "github.com/kailas-cloud/advsearch/internal/usecase/listener"
	searchuc "github.com/kailas-cloud/advsearch/internal/usecase/search"
	"github.com/kailas-cloud/advsearch/internal/version"
)

// readinessTimeout bounds the wait for a networked backend at startup.
const readinessTimeout = 30 * time.Second

func serve(ctx context.Context, env string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting advsearch server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Int("backends", len(cfg.Backends)),
	)

	backends := openBackends(ctx, cfg.Backends, logger)
	defer closeBackends(backends, logger)

	handler := newRouter(cfg, backends, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
	return nil
}

// newRouter wires the use case services over the registered backends.
func newRouter(cfg config.Config, backends []backend.Backend, logger *zap.Logger) http.Handler {
	searchBackends := make([]searchuc.Backend, 0, len(backends))
	listenerBackends := make([]listeneruc.Backend, 0, len(backends))
	healthBackends := make([]healthuc.Backend, 0, len(backends))
	for _, b := range backends {
		searchBackends = append(searchBackends, b)
		listenerBackends = append(listenerBackends, b)
		healthBackends = append(healthBackends, b)
	}

	links := quickjump.New(cfg.Search.BaseURL)
	searchSvc := searchuc.New(searchBackends, links, searchuc.Config{
		DefaultPerPage:  cfg.Search.DefaultPerPage,
		BackendTimeout:  time.Duration(cfg.Search.BackendTimeoutSec) * time.Second,
		TicketStatuses:  cfg.Search.TicketStatuses,
		EnabledStatuses: cfg.Search.EnabledStatuses,
		BaseURL:         cfg.Search.BaseURL,
	}, logger)
	listenerSvc := listeneruc.New(listenerBackends, logger)
	healthSvc := healthuc.New(healthBackends, healthuc.DefaultTimeout)

	server := chiTransport.NewServer(searchSvc, listenerSvc, healthSvc, links, cfg.Search.MenuLabel, logger)

	keys := make(map[string][]string, len(cfg.Auth.Keys))
	for _, k := range cfg.Auth.Keys {
		keys[k.Key] = k.Permissions
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(keys))
	r.Use(metrics.Middleware())
	server.Register(r)
	return r
}

// openBackends builds every configured backend in registration order.
// A backend that cannot be opened is logged and left out.
func openBackends(ctx context.Context, cfgs []config.BackendConfig, logger *zap.Logger) []backend.Backend {
	backends := make([]backend.Backend, 0, len(cfgs))
	for _, bc := range cfgs {
		l := logpkg.WithBackend(logger, bc.Name)
		b, err := openBackend(ctx, bc, l)
		if err != nil {
			if errors.Is(err, domain.ErrConfiguration) {
				l.Error("Backend misconfigured, skipping", zap.String("type", bc.Type), zap.Error(err))
			} else {
				l.Error("Backend unavailable, skipping", zap.String("type", bc.Type), zap.Error(err))
			}
			continue
		}
		l.Info("Registered backend",
			zap.String("type", bc.Type),
			zap.Bool("async_indexing", bc.Indexing.Async),
			zap.Int("cache_size", bc.Cache.Size),
		)
		backends = append(backends, b)
	}
	if len(backends) == 0 {
		logger.Warn("No search backends registered")
	}
	return backends
}

// engine is an engine client as the composition root sees it.
type engine interface {
	backend.Searcher
	indexer.Writer
}

func openBackend(ctx context.Context, bc config.BackendConfig, logger *zap.Logger) (backend.Backend, error) {
	if err := bc.Validate(); err != nil {
		return nil, err //nolint:wrapcheck // carries ErrConfiguration
	}
	client, err := openEngine(ctx, bc, logger)
	if err != nil {
		return nil, err
	}

	icfg := bc.Indexing.Indexer()
	var cached *cache.Backend
	if bc.Cache.Size > 0 {
		// The worker only writes after openBackend returned, so cached is set by then.
		icfg.OnApplied = func() { cached.Invalidate() }
	}

	idx := indexer.New(bc.Name, client, icfg, logger)
	b := backend.New(bc.Name, client, idx)
	if bc.Cache.Size <= 0 {
		return b, nil
	}
	cached = cache.New(b, bc.Cache.Size, time.Duration(bc.Cache.TTLSec)*time.Second)
	return cached, nil
}

func openEngine(ctx context.Context, bc config.BackendConfig, logger *zap.Logger) (engine, error) {
	switch bc.Type {
	case config.BackendSolr:
		client, err := solr.New(bc.URL, bc.Timeout(), logger)
		if err != nil {
			return nil, err //nolint:wrapcheck // carries ErrConfiguration
		}
		return client, nil

	case config.BackendRediSearch:
		store, err := dbRedis.NewStore(dbRedis.Config{Addrs: bc.Addrs, Password: bc.Password})
		if err != nil {
			return nil, fmt.Errorf("redis store: %w", err)
		}
		if err := store.WaitForReady(ctx, readinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("redis not ready: %w", err)
		}
		client := redisearch.New(store, logger)
		if err := client.EnsureIndex(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("ensure index: %w", err)
		}
		return client, nil

	case config.BackendBleve:
		client, err := bleve.Open(bc.Path, logger)
		if err != nil {
			return nil, err //nolint:wrapcheck // carries ErrConfiguration
		}
		return client, nil

	case config.BackendPostgres:
		client, err := postgres.Open(bc.DSN, logger)
		if err != nil {
			return nil, err //nolint:wrapcheck // carries ErrConfiguration
		}
		if err := client.WaitForReady(ctx, readinessTimeout); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("postgres not ready: %w", err)
		}
		if err := client.EnsureSchema(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return client, nil
	}
	return nil, fmt.Errorf("unknown backend type %q: %w", bc.Type, domain.ErrConfiguration)
}

func closeBackends(backends []backend.Backend, logger *zap.Logger) {
	for _, b := range backends {
		if err := b.Close(); err != nil {
			logpkg.WithBackend(logger, b.Name()).Error("Failed to close backend", zap.Error(err))
		}
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.Query().Get("q")),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}

package api

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RouterOption configures the behaviour of NewRouter.
type RouterOption func(*routerConfig)

// WithLogging controls whether access logs are emitted.
func WithLogging(enabled bool) RouterOption {
	return func(cfg *routerConfig) {
		cfg.enableLogging = enabled
	}
}

// WithRateLimit configures the token bucket limiter. A zero rate or burst disables limiting.
func WithRateLimit(ratePerSecond float64, burst int) RouterOption {
	return func(cfg *routerConfig) {
		if ratePerSecond <= 0 || burst <= 0 {
			cfg.rateLimiter = nil
			return
		}
		cfg.rateLimiter = newTokenBucketLimiter(ratePerSecond, burst)
	}
}

// WithRateLimiter replaces the limiter outright; tests use it to force decisions.
func WithRateLimiter(limiter rateLimiter) RouterOption {
	return func(cfg *routerConfig) {
		cfg.rateLimiter = limiter
	}
}

type routerConfig struct {
	enableLogging bool
	logger        *zap.Logger
	rateLimiter   rateLimiter
}

type middleware func(http.Handler) http.Handler

// route is one API endpoint; the method list feeds the CORS preflight answer.
type route struct {
	method  string
	path    string
	handler http.HandlerFunc
}

func (h *Handler) routes() []route {
	return []route{
		{http.MethodGet, "/api/health", h.handleHealth},
		{http.MethodGet, "/api/limit", h.handleGetLimit},
		{http.MethodPut, "/api/limit", h.handlePutLimit},
		{http.MethodPost, "/api/platforms", h.handlePlatforms},
	}
}

// NewRouter serves the allocator API. Requests pass, outermost first, through
// request ID assignment, rate limiting, access logging, panic recovery and CORS.
func NewRouter(handler *Handler, logger *zap.Logger, opts ...RouterOption) http.Handler {
	cfg := routerConfig{
		enableLogging: true,
		logger:        logger,
		rateLimiter:   newTokenBucketLimiter(25, 50),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	mux := http.NewServeMux()
	methods := make([]string, 0, 4)
	for _, rt := range handler.routes() {
		mux.Handle(rt.method+" "+rt.path, rt.handler)
		if !slices.Contains(methods, rt.method) {
			methods = append(methods, rt.method)
		}
	}
	methods = append(methods, http.MethodOptions)

	chain := []middleware{
		requestIDMiddleware,
		func(next http.Handler) http.Handler { return rateLimitMiddleware(cfg.rateLimiter, next) },
	}
	if cfg.enableLogging {
		chain = append(chain, func(next http.Handler) http.Handler { return loggingMiddleware(cfg.logger, next) })
	}
	chain = append(chain,
		func(next http.Handler) http.Handler { return recoveryMiddleware(cfg.logger, next) },
		func(next http.Handler) http.Handler { return corsMiddleware(strings.Join(methods, ","), next) },
	)

	var root http.Handler = mux
	for i := len(chain) - 1; i >= 0; i-- {
		root = chain[i](root)
	}
	return root
}

func corsMiddleware(allowedMethods string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("Access-Control-Allow-Origin", "*")
		header.Set("Access-Control-Allow-Methods", allowedMethods)
		header.Set("Access-Control-Allow-Headers", "Content-Type,X-Request-ID")
		header.Set("Access-Control-Expose-Headers", "X-Request-ID,Retry-After")
		header.Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware emits one entry per request, at error level for 5xx.
func loggingMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		entry := logger.Info
		msg := "request completed"
		if rec.status >= http.StatusInternalServerError {
			entry, msg = logger.Error, "request failed"
		}
		entry(msg,
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int64("bytes_in", r.ContentLength),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", requestIDFromContext(r.Context())),
		)
	})
}

func recoveryMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				logger.Error("panic recovered",
					zap.Any("error", v),
					zap.String("path", r.URL.Path),
					zap.String("request_id", requestIDFromContext(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, "Internal error", "unexpected server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requestIDMiddleware keeps a caller supplied X-Request-ID or assigns a UUID.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(contextWithRequestID(r.Context(), id)))
	})
}

func contextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

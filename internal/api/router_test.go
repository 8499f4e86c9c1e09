package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/platform-allocator/internal/allocator"
	"github.com/eugenenazirov/platform-allocator/internal/storage"
)

func TestLoggingMiddleware(t *testing.T) {
	logger := zaptest.NewLogger(t)
	var called bool
	handler := loggingMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to be called")
	}
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected status 202, got %d", rec.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := zaptest.NewLogger(t)
	handler := recoveryMiddleware(logger, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}
}

func TestResponseRecorderWriteHeader(t *testing.T) {
	underlying := httptest.NewRecorder()
	rec := &responseRecorder{ResponseWriter: underlying}
	rec.WriteHeader(http.StatusTeapot)

	if rec.status != http.StatusTeapot {
		t.Fatalf("expected status to be recorded")
	}
	if underlying.Code != http.StatusTeapot {
		t.Fatalf("expected status to propagate to ResponseWriter")
	}
}

func TestLoggingMiddlewareServerError(t *testing.T) {
	logger := zaptest.NewLogger(t)
	handler := loggingMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rec.Code)
	}
}

func TestGeneratedRequestIDIsUUID(t *testing.T) {
	router := newTestRouter(t, WithLogging(false))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	id := rec.Header().Get("X-Request-ID")
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected generated request id to be a UUID, got %q: %v", id, err)
	}
}

func TestCorsAllowsRegisteredMethods(t *testing.T) {
	router := newTestRouter(t, WithLogging(false))

	req := httptest.NewRequest(http.MethodOptions, "/api/limit", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET,PUT,POST,OPTIONS" {
		t.Fatalf("unexpected allowed methods %q", got)
	}
	if got := rec.Header().Get("Access-Control-Expose-Headers"); got != "X-Request-ID,Retry-After" {
		t.Fatalf("unexpected exposed headers %q", got)
	}
}

func TestRateLimitedResponseCarriesRetryAfter(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimit(0.5, 1))

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if got := second.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After 2 at 0.5 rps, got %q", got)
	}
	if second.Header().Get("X-Request-ID") == "" {
		t.Fatalf("rejected requests still carry a request id")
	}
}

func TestUnknownRouteReturnsNotFound(t *testing.T) {
	router := newTestRouter(t, WithLogging(false))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/calculate", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestWithRateLimiterOptionAppliesLimiter(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimiter(&staticLimiter{allow: false}))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected rate limiter to block request, got %d", rec.Code)
	}
}

func TestWithRateLimitDisablesLimiterWhenZero(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimiter(&staticLimiter{allow: false}), WithRateLimit(0, 0))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected limiter to be disabled, got %d", rec.Code)
	}
}

func TestWithRateLimitEnforcesLimit(t *testing.T) {
	router := newTestRouter(t, WithLogging(false), WithRateLimit(1, 1))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec.Code)
	}

	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req.Clone(req.Context()))
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected rate limiter to block second request, got %d", rec2.Code)
	}
}

func newTestRouter(t *testing.T, opts ...RouterOption) http.Handler {
	t.Helper()

	store := storage.NewMemoryStorage()
	alloc := allocator.New()
	handler := NewHandler(alloc, store)
	logger := zaptest.NewLogger(t)
	return NewRouter(handler, logger, opts...)
}

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type staticLimiter struct {
	allow bool
	wait  time.Duration
}

func (s *staticLimiter) Admit() (bool, time.Duration) {
	if s.allow {
		return true, 0
	}
	return false, s.wait
}

func TestRateLimitMiddlewareBlocksWhenLimiterDenies(t *testing.T) {
	middleware := rateLimitMiddleware(&staticLimiter{wait: 2500 * time.Millisecond}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler should not execute when rate limited")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/platforms", nil)
	middleware.ServeHTTP(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "3" {
		t.Fatalf("expected Retry-After rounded up to 3, got %q", got)
	}
}

func TestRateLimitMiddlewarePassesWhenLimiterAllows(t *testing.T) {
	var called bool
	middleware := rateLimitMiddleware(&staticLimiter{allow: true}, http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/platforms", nil)
	middleware.ServeHTTP(rec, req)

	if !called {
		t.Fatalf("expected handler to execute when limiter allows")
	}
	if rec.Header().Get("Retry-After") != "" {
		t.Fatalf("Retry-After must only be set on rejected requests")
	}
}

func TestNewTokenBucketLimiterUsesDefaults(t *testing.T) {
	limiter := newTokenBucketLimiter(0, 0)
	if limiter == nil {
		t.Fatalf("expected limiter instance")
	}
	if ok, _ := limiter.Admit(); !ok {
		t.Fatalf("expected first request to be allowed")
	}
}

func TestTokenBucketReportsWaitUntilNextToken(t *testing.T) {
	start := time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)
	now := start
	limiter := newTokenBucketLimiter(0.5, 1)
	limiter.now = func() time.Time { return now }

	if ok, _ := limiter.Admit(); !ok {
		t.Fatalf("expected burst token to be available")
	}

	ok, wait := limiter.Admit()
	if ok {
		t.Fatalf("expected second request to be rejected")
	}
	if wait != 2*time.Second {
		t.Fatalf("expected 2s wait at 0.5 rps, got %s", wait)
	}

	// The rejected reservation is returned, so the wait does not grow.
	now = start.Add(time.Second)
	if ok, wait := limiter.Admit(); ok || wait != time.Second {
		t.Fatalf("expected 1s remaining, got ok=%v wait=%s", ok, wait)
	}

	now = start.Add(2 * time.Second)
	if ok, _ := limiter.Admit(); !ok {
		t.Fatalf("expected token to be refilled after 2s")
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	cases := map[time.Duration]int{
		0:                       1,
		time.Millisecond:        1,
		time.Second:             1,
		1001 * time.Millisecond: 2,
		40 * time.Second:        40,
	}
	for d, want := range cases {
		if got := retryAfterSeconds(d); got != want {
			t.Fatalf("retryAfterSeconds(%s) = %d, want %d", d, got, want)
		}
	}
}

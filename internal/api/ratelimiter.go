package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// rateLimiter admits a request now or reports how long the caller should wait.
type rateLimiter interface {
	Admit() (ok bool, retryAfter time.Duration)
}

// tokenBucket reserves a token per request and hands it back when the
// reservation would have to wait, so rejected requests cost nothing.
type tokenBucket struct {
	limiter *rate.Limiter
	now     func() time.Time
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) *tokenBucket {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}

	return &tokenBucket{
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		now:     time.Now,
	}
}

func (b *tokenBucket) Admit() (bool, time.Duration) {
	if b == nil || b.limiter == nil {
		return true, 0
	}

	now := b.now()
	reservation := b.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, time.Second
	}
	delay := reservation.DelayFrom(now)
	if delay == 0 {
		return true, 0
	}
	reservation.CancelAt(now)
	return false, delay
}

func rateLimitMiddleware(limiter rateLimiter, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := limiter.Admit()
		if ok {
			next.ServeHTTP(w, r)
			return
		}
		seconds := retryAfterSeconds(wait)
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
		writeError(w, http.StatusTooManyRequests, "Too many requests",
			fmt.Sprintf("rate limit exceeded, retry in %ds", seconds))
	})
}

// retryAfterSeconds rounds up to whole seconds, the unit Retry-After carries.
func retryAfterSeconds(d time.Duration) int {
	seconds := int(math.Ceil(d.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}

package ratelimit

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/siliconsage/build-engine/internal/metrics"
)

// Middleware refuses requests over the limit with 429. Limiter failures admit the request.
func Middleware(limiter Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	if limiter == nil {
		limiter = NoopLimiter{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result, err := limiter.Allow(r.Context(), clientKey(r))
			if err != nil {
				logger.Warn("rate limiter unavailable, admitting request", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}
			if result.Limit >= 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			}
			if !result.Allowed {
				metrics.ObserveRateLimited()
				retry := int(math.Ceil(result.ResetIn.Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, map[string]string{"error": "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller by address; chi's RealIP runs first and rewrites RemoteAddr.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

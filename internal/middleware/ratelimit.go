// File: internal/middleware/ratelimit.go
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/iyunix/asha-chat/internal/logging"
	"github.com/iyunix/asha-chat/internal/ratelimit"
)

// Throttle counts attempts per client IP against limiter and answers 429 with
// a {"detail"} body once the budget is spent. A 2xx response forgives the
// client's earlier attempts, so only failed logins accumulate.
func Throttle(limiter *ratelimit.MemoryRateLimiter, endpoint string, logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ratelimit.GetClientIP(r)
			allowed, info := limiter.Allow(ip)

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))

			if !allowed {
				logger.Warn("[Throttle] request refused", "endpoint", endpoint, "ip", ip, "banned", info.Banned)
				if secs := int(math.Ceil(info.RetryAfter.Seconds())); secs > 0 {
					h.Set("Retry-After", strconv.Itoa(secs))
				}
				if info.Banned {
					writeDetail(w, http.StatusTooManyRequests, banDetail(info.RetryAfter))
					return
				}
				writeDetail(w, http.StatusTooManyRequests, "Too many attempts. Please try again later.")
				return
			}

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			if rec.status >= 200 && rec.status < 300 {
				limiter.RecordSuccess(ip)
			}
		})
	}
}

// banDetail names the wait in whole minutes, rounded up so a ban with
// seconds left never reads as zero.
func banDetail(wait time.Duration) string {
	minutes := int(math.Ceil(wait.Minutes()))
	if minutes <= 1 {
		return "Too many failed attempts. Try again in 1 minute."
	}
	return "Too many failed attempts. Try again in " + strconv.Itoa(minutes) + " minutes."
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

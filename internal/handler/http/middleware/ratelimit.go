package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/ratelimit"
)

// KeyFunc derives the bucket a request is counted in.
type KeyFunc func(r *http.Request) string

// KeyByIP buckets by client address. Put chi's RealIP in front of it when
// running behind a proxy.
func KeyByIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return "ip:" + r.RemoteAddr
	}
	return "ip:" + host
}

// KeyByUser buckets by authenticated user and falls back to the client address.
func KeyByUser(r *http.Request) string {
	if identity, ok := GetIdentity(r.Context()); ok {
		return "user:" + identity.UserID
	}
	return KeyByIP(r)
}

// RateLimit rejects requests over rule with 429. A limiter failure lets the
// request through so Redis being down never takes the API with it.
func RateLimit(limiter ratelimit.Limiter, name string, rule ratelimit.Rule, key KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || rule.Limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			res, err := limiter.Allow(r.Context(), name+":"+key(r), rule)
			if err != nil {
				slog.Warn("rate limiter unavailable, allowing request", "limiter", name, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				retryAfter := int(time.Until(res.ResetAt).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				response.TooManyRequests(w, retryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package ratelimit

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Movrr-Official/movrr-sub001/internal/web"
)

// KeyFunc extracts the caller identity a request is limited by.
type KeyFunc func(r *http.Request) string

// ClientKey identifies the caller by the first hop of X-Forwarded-For when
// present (the site runs behind a proxy in production), falling back to the
// RemoteAddr host.
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first := strings.TrimSpace(strings.SplitN(xff, ",", 2)[0]); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr)); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// Middleware guards next with the limiter. Blocked requests get a 429 with
// Retry-After; every response carries the X-RateLimit-* headers.
func Middleware(l *Limiter, keyFn KeyFunc) func(next http.Handler) http.Handler {
	if keyFn == nil {
		keyFn = ClientKey
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dec := l.Check(r.Context(), keyFn(r))

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(dec.ResetAt.Unix(), 10))

			if !dec.Allowed {
				// Round up so "retry after 0s" never appears while blocked.
				secs := int64((dec.RetryAfter + time.Second - 1) / time.Second)
				if secs < 1 {
					secs = 1
				}
				h.Set("Retry-After", strconv.FormatInt(secs, 10))
				web.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

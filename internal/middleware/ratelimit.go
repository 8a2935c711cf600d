package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dimitrije/folio-api/internal/ratelimit"
	"github.com/m1z23r/drift/pkg/drift"
)

const RateLimitMessage = "too many requests, please try again later"

// RateLimit rejects requests with 429 once the client key has used up its
// window on limiter.
func RateLimit(limiter *ratelimit.Limiter) drift.HandlerFunc {
	return func(c *drift.Context) {
		ok, reset := limiter.Allow(ClientKey(c.Request))
		if !ok {
			retry := int(time.Until(reset).Seconds()) + 1
			c.Response.Header().Set("Retry-After", strconv.Itoa(retry))
			_ = c.JSON(http.StatusTooManyRequests, map[string]string{"error": RateLimitMessage})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ClientKey identifies the caller: the first X-Forwarded-For entry, else
// the remote IP, else "anonymous".
func ClientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first := strings.TrimSpace(strings.Split(fwd, ",")[0]); first != "" {
			return first
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "anonymous"
}

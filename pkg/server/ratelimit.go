package server

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
)

// UserIDHeader carries the authenticated user id set by the upstream auth layer.
const UserIDHeader = "X-User-ID"

// rateLimit rejects callers over their quota with 429 and reports the
// quota in X-RateLimit-* headers on every response.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := callerID(r)
		decision := s.opts.Limiter.Check(id)

		resetSeconds := int64(math.Ceil(decision.ResetAfter.Seconds()))
		h := w.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(s.opts.Limiter.Limit()))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(s.now().Add(decision.ResetAfter).Unix(), 10))

		if !decision.Allowed {
			h.Set("Retry-After", strconv.FormatInt(resetSeconds, 10))
			s.logger.Warn("rate limit exceeded", "caller", id, "path", r.URL.Path)
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":   "Too many requests",
				"message": fmt.Sprintf("You have exceeded the rate limit. Please try again in %d seconds.", resetSeconds),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// callerID prefers the authenticated user and falls back to the client
// address, which middleware.RealIP has already resolved into RemoteAddr.
func callerID(r *http.Request) string {
	if id := r.Header.Get(UserIDHeader); id != "" {
		return "user:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "anonymous"
	}
	return "ip:" + host
}

package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"trade-journal-go/internal/auth"

	"go.uber.org/zap"
)

type contextKey int

const authContextKey contextKey = iota

// authFrom returns the authenticated caller stored by withAuth.
func authFrom(ctx context.Context) *auth.Context {
	ac, _ := ctx.Value(authContextKey).(*auth.Context)
	return ac
}

// withAuth resolves the bearer token and stores the caller's context on the
// request. Requests without a valid token are rejected with 401.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.respond(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}

		ac, err := s.auth.Verify(r.Context(), token)
		if err != nil {
			s.respondError(w, r, err)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), authContextKey, ac)))
	}
}

// withRateLimit rejects requests beyond the configured rate with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.respond(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// logRequests logs one line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.Info("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

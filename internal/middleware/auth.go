package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/bryanwahyu/analysis-gateway/internal/domain/analysis"
)

type contextKey string

const SessionKey contextKey = "session"

// APIKeyAuth resolves the Authorization header to a configured session.
func APIKeyAuth(validKeys map[string]analysis.Session) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				http.Error(w, "missing Authorization header", http.StatusUnauthorized)
				return
			}

			// Support both "Bearer <key>" and "<key>" formats
			apiKey := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if apiKey == "" {
				http.Error(w, "invalid Authorization header format", http.StatusUnauthorized)
				return
			}

			// constant-time compare against every key
			var (
				session analysis.Session
				valid   bool
			)
			for key, s := range validKeys {
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1 {
					session, valid = s, true
				}
			}
			if !valid {
				http.Error(w, "invalid API key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s analysis.Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

// SessionFromContext extracts the session set by APIKeyAuth.
func SessionFromContext(ctx context.Context) (analysis.Session, bool) {
	s, ok := ctx.Value(SessionKey).(analysis.Session)
	return s, ok
}

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// authUserKey is a context key for the authenticated caller.
type authUserKey struct{}

// ClaimsFromContext returns the authenticated claims from the request
// context. Returns nil if the request is not authenticated.
func ClaimsFromContext(ctx context.Context) *Claims {
	if c, ok := ctx.Value(authUserKey{}).(*Claims); ok {
		return c
	}
	return nil
}

// Public paths that don't require a bearer token.
var publicPaths = map[string]bool{
	"/api/v1/auth/token": true,
}

// Middleware validates JWT access tokens on API routes. Non-API paths
// (healthz, readyz, metrics), the ingest intake (API-key authenticated),
// and WebSocket paths (token in query) are skipped.
func Middleware(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				next.ServeHTTP(w, r)
				return
			}

			// Collector intake authenticates with X-API-Key inside the
			// ingest plugin.
			if strings.HasPrefix(r.URL.Path, "/api/v1/ingest/") {
				next.ServeHTTP(w, r)
				return
			}

			// WebSocket auth is handled by the WS handler via query param.
			if strings.HasPrefix(r.URL.Path, "/api/v1/ws/") {
				next.ServeHTTP(w, r)
				return
			}

			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				writeAuthError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := tokens.ValidateAccessToken(tokenString)
			if err != nil {
				writeAuthError(w, http.StatusUnauthorized, "invalid or expired access token")
				return
			}

			ctx := context.WithValue(r.Context(), authUserKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeAuthError writes an RFC 7807 problem response.
func writeAuthError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://vitalscope.dev/problems/" + http.StatusText(status),
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}

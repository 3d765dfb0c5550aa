package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey string

const keyInfoContextKey contextKey = "auth.keyinfo"

// KeyInfoFromContext returns the authenticated key info stored by the
// middleware, or nil if the request was not authenticated.
func KeyInfoFromContext(ctx context.Context) *KeyInfo {
	info, _ := ctx.Value(keyInfoContextKey).(*KeyInfo)
	return info
}

// Middleware is HTTP middleware for API key authentication. Keys are
// accepted from the Authorization header ("Bearer <key>") or the
// X-API-Key header.
type Middleware struct {
	validator *APIKeyValidator
	logger    *slog.Logger
}

// NewMiddleware creates the authentication middleware.
func NewMiddleware(validator *APIKeyValidator, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{validator: validator, logger: logger}
}

// Handle wraps an HTTP handler with API key authentication.
func (m *Middleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey, err := extractAPIKey(r)
		if err != nil {
			m.logger.Warn("missing API key",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
			)
			http.Error(w, "Missing or invalid API key", http.StatusUnauthorized)
			return
		}

		info, err := m.validator.Validate(apiKey)
		if err != nil {
			m.logger.Warn("invalid API key",
				"error", err,
				"remote_addr", r.RemoteAddr,
				"path", r.URL.Path,
			)
			http.Error(w, "Invalid API key", http.StatusUnauthorized)
			return
		}

		m.logger.Debug("API key authenticated",
			"owner", info.Owner,
			"path", r.URL.Path,
		)

		ctx := context.WithValue(r.Context(), keyInfoContextKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractAPIKey pulls the API key from the request headers.
func extractAPIKey(r *http.Request) (string, error) {
	if value := r.Header.Get("Authorization"); value != "" {
		if after, ok := strings.CutPrefix(value, "Bearer "); ok && after != "" {
			return after, nil
		}
		return "", fmt.Errorf("malformed Authorization header")
	}

	if value := r.Header.Get("X-API-Key"); value != "" {
		return value, nil
	}

	return "", fmt.Errorf("no API key in request")
}

package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"example.com/timeflow/internal/logger"
)

// Skipper allows callers to bypass authentication for specific requests.
type Skipper func(r *http.Request) bool

// Middleware rejects unauthenticated requests and stores the Principal on the context.
type Middleware struct {
	Authenticator Authenticator
	Skipper       Skipper
	Logger        *logger.Logger
}

// NewMiddleware constructs a middleware with optional skipper.
func NewMiddleware(authenticator Authenticator, skipper Skipper, log *logger.Logger) Middleware {
	if log == nil {
		log = logger.Nop()
	}
	return Middleware{Authenticator: authenticator, Skipper: skipper, Logger: log}
}

// Wrap wraps an http.Handler with authentication.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Skipper != nil && m.Skipper(r) {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := m.Authenticator.Authenticate(r)
		if errors.Is(err, ErrProviderUnavailable) {
			m.Logger.Warn("identity provider unavailable", "path", r.URL.Path, "error", err)
			writeAuthError(w, http.StatusServiceUnavailable, "identity_unavailable", "Identity provider is unavailable")
			return
		}
		if err != nil {
			if !errors.Is(err, ErrMissingCredentials) {
				m.Logger.Debug("authentication failed", "path", r.URL.Path, "error", err)
			}
			writeAuthError(w, http.StatusUnauthorized, "unauthorized", unauthorizedDetail(err))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

func unauthorizedDetail(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredentials):
		return "Authentication required"
	case errors.Is(err, ErrInvalidSession):
		return "Session is invalid or expired"
	default:
		return "Invalid credentials"
	}
}

func writeAuthError(w http.ResponseWriter, status int, code, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"type": code, "detail": detail})
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"example.com/timeflow/internal/auth"
	"example.com/timeflow/internal/logger"
)

// SessionHandler exposes the identity provider's session exchange to browsers.
type SessionHandler struct {
	provider      auth.SessionProvider
	sessions      *auth.SessionAuthenticator
	secureCookies bool
	log           *logger.Logger
}

// NewSessionHandler builds a SessionHandler.
func NewSessionHandler(provider auth.SessionProvider, sessions *auth.SessionAuthenticator, secureCookies bool, log *logger.Logger) *SessionHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionHandler{
		provider:      provider,
		sessions:      sessions,
		secureCookies: secureCookies,
		log:           log.With("component", "sessions"),
	}
}

// RegisterRoutes wires endpoints to the mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/oauth/", h.redirectURL)
	mux.HandleFunc("/api/sessions", h.createSession)
	mux.HandleFunc("/api/users/me", currentUser)
	mux.HandleFunc("/api/logout", h.logout)
}

// PublicRoute reports whether a request may proceed without credentials.
func PublicRoute(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/metrics", "/api/categories", "/api/sessions", "/api/logout":
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/oauth/")
}

func (h *SessionHandler) redirectURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/oauth/")
	provider, suffix, found := strings.Cut(rest, "/")
	if !found || suffix != "redirect_url" || provider == "" {
		writeError(w, http.StatusNotFound, "not_found", "unknown route")
		return
	}

	url, err := h.provider.RedirectURL(r.Context(), provider)
	if err != nil {
		h.log.Error("redirect url lookup failed", "provider", provider, "error", err)
		writeError(w, http.StatusBadGateway, "identity_unavailable", "identity provider unavailable")
		return
	}
	writeJSON(w, http.StatusOK, RedirectURLResponse{RedirectURL: url})
}

func (h *SessionHandler) createSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	var req CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "No authorization code provided")
		return
	}

	token, err := h.provider.ExchangeCode(r.Context(), req.Code)
	if err != nil {
		h.log.Warn("session exchange failed", "error", err)
		writeError(w, http.StatusBadGateway, "identity_unavailable", "unable to create session")
		return
	}

	http.SetCookie(w, auth.SessionCookie(token, auth.SessionMaxAge, h.secureCookies))
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func currentUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	principal, ok := auth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, UserView{
		ID:         principal.UserID,
		Email:      principal.Email,
		Name:       principal.Name,
		AuthMethod: principal.Method,
	})
}

func (h *SessionHandler) logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
		return
	}

	if token := auth.SessionToken(r); token != "" {
		if err := h.sessions.Forget(r.Context(), token); err != nil && !errors.Is(err, auth.ErrInvalidSession) {
			h.log.Warn("upstream logout failed", "error", err)
		}
	}

	http.SetCookie(w, auth.SessionCookie("", 0, h.secureCookies))
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// RedirectURLResponse is the body of GET /api/oauth/{provider}/redirect_url.
type RedirectURLResponse struct {
	RedirectURL string `json:"redirectUrl"`
}

// CreateSessionRequest is the payload for POST /api/sessions.
type CreateSessionRequest struct {
	Code string `json:"code"`
}

// UserView describes the authenticated caller.
type UserView struct {
	ID         string `json:"id"`
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	AuthMethod string `json:"auth_method"`
}

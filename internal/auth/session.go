package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"example.com/timeflow/internal/logger"
)

// SessionCookieName is the cookie carrying the identity provider's session token.
const SessionCookieName = "timeflow_session_token"

// SessionMaxAge is how long the browser keeps the session cookie.
const SessionMaxAge = 60 * 24 * time.Hour

// User is the identity provider's view of a signed-in user.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// SessionProvider is the black-box contract of the external identity provider.
type SessionProvider interface {
	RedirectURL(ctx context.Context, provider string) (string, error)
	ExchangeCode(ctx context.Context, code string) (string, error)
	ResolveSession(ctx context.Context, token string) (*User, error)
	DeleteSession(ctx context.Context, token string) error
}

// SessionAuthenticator resolves the session cookie through a SessionProvider, caching
// resolved users for a short TTL.
type SessionAuthenticator struct {
	provider SessionProvider
	cache    SessionCache
	ttl      time.Duration
	log      *logger.Logger
}

// NewSessionAuthenticator constructs a SessionAuthenticator. A nil cache disables caching.
func NewSessionAuthenticator(provider SessionProvider, cache SessionCache, ttl time.Duration, log *logger.Logger) *SessionAuthenticator {
	if cache == nil {
		cache = NoopSessionCache{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SessionAuthenticator{provider: provider, cache: cache, ttl: ttl, log: log.With("component", "session_auth")}
}

// Authenticate implements Authenticator.
func (a *SessionAuthenticator) Authenticate(r *http.Request) (*Principal, error) {
	token := SessionToken(r)
	if token == "" {
		return nil, ErrMissingCredentials
	}

	user, err := a.Resolve(r.Context(), token)
	if err != nil {
		return nil, err
	}
	return &Principal{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Method: MethodSession,
		Scopes: allScopes(),
	}, nil
}

// Resolve returns the user behind token, consulting the cache first.
func (a *SessionAuthenticator) Resolve(ctx context.Context, token string) (*User, error) {
	if user, ok, err := a.cache.Get(ctx, token); err != nil {
		a.log.Warn("session cache read failed", "error", err)
	} else if ok {
		return user, nil
	}

	user, err := a.provider.ResolveSession(ctx, token)
	if err != nil {
		return nil, err
	}
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return nil, ErrInvalidSession
	}

	if err := a.cache.Set(ctx, token, user, a.ttl); err != nil {
		a.log.Warn("session cache write failed", "error", err)
	}
	return user, nil
}

// Forget drops the token from the cache and ends the session upstream.
func (a *SessionAuthenticator) Forget(ctx context.Context, token string) error {
	cacheErr := a.cache.Delete(ctx, token)
	if cacheErr != nil {
		a.log.Warn("session cache delete failed", "error", cacheErr)
	}
	return a.provider.DeleteSession(ctx, token)
}

// SessionToken extracts the session token from the request cookie.
func SessionToken(r *http.Request) string {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

// SessionCookie builds the cookie storing token. An empty token with maxAge 0 expires it.
func SessionCookie(token string, maxAge time.Duration, secure bool) *http.Cookie {
	cookie := &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   int(maxAge.Seconds()),
	}
	if maxAge <= 0 {
		cookie.MaxAge = -1
	}
	if !secure {
		cookie.SameSite = http.SameSiteLaxMode
	}
	return cookie
}

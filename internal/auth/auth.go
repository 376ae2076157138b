// Package auth resolves incoming requests to an authenticated user.
package auth

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingCredentials is returned when a request carries neither a bearer token nor a session cookie.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrInvalidToken wraps parsing/validation errors.
	ErrInvalidToken = errors.New("invalid bearer token")
	// ErrInvalidSession is returned when the identity provider does not recognise a session token.
	ErrInvalidSession = errors.New("invalid session")
	// ErrProviderUnavailable is returned when the identity provider cannot be reached or fails.
	ErrProviderUnavailable = errors.New("identity provider unavailable")
)

// Authentication methods recorded on a Principal.
const (
	MethodJWT     = "jwt"
	MethodSession = "session"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID string
	Email  string
	Name   string
	Method string
	Scopes map[string]struct{}
}

// HasScope reports whether the principal was granted scope.
func (p *Principal) HasScope(scope string) bool {
	if p == nil {
		return false
	}
	_, ok := p.Scopes[scope]
	return ok
}

// Authenticator resolves a request to a Principal. Implementations return
// ErrMissingCredentials when the request carries nothing they understand.
type Authenticator interface {
	Authenticate(r *http.Request) (*Principal, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(r *http.Request) (*Principal, error)

// Authenticate calls f(r).
func (f AuthenticatorFunc) Authenticate(r *http.Request) (*Principal, error) {
	return f(r)
}

// Chain tries each authenticator in order. The first one that finds credentials decides
// the outcome; a request no authenticator recognises fails with ErrMissingCredentials.
func Chain(authenticators ...Authenticator) Authenticator {
	return AuthenticatorFunc(func(r *http.Request) (*Principal, error) {
		for _, a := range authenticators {
			if a == nil {
				continue
			}
			principal, err := a.Authenticate(r)
			if errors.Is(err, ErrMissingCredentials) {
				continue
			}
			return principal, err
		}
		return nil, ErrMissingCredentials
	})
}

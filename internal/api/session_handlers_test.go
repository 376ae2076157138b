package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/timeflow/internal/auth"
)

type fakeProvider struct {
	sessions map[string]auth.User
	deleted  []string
}

func (p *fakeProvider) RedirectURL(_ context.Context, provider string) (string, error) {
	if provider != "google" {
		return "", errors.New("unknown provider")
	}
	return "https://accounts.example.com/o/oauth2", nil
}

func (p *fakeProvider) ExchangeCode(_ context.Context, code string) (string, error) {
	if code != "good-code" {
		return "", errors.New("bad code")
	}
	p.sessions["tok-1"] = auth.User{ID: "user-1", Email: "user@example.com", Name: "Ada"}
	return "tok-1", nil
}

func (p *fakeProvider) ResolveSession(_ context.Context, token string) (*auth.User, error) {
	user, ok := p.sessions[token]
	if !ok {
		return nil, auth.ErrInvalidSession
	}
	return &user, nil
}

func (p *fakeProvider) DeleteSession(_ context.Context, token string) error {
	p.deleted = append(p.deleted, token)
	delete(p.sessions, token)
	return nil
}

func newSessionServer(t *testing.T) (http.Handler, *fakeProvider) {
	t.Helper()
	provider := &fakeProvider{sessions: map[string]auth.User{}}
	sessions := auth.NewSessionAuthenticator(provider, nil, time.Minute, nil)

	mux := http.NewServeMux()
	NewSessionHandler(provider, sessions, true, nil).RegisterRoutes(mux)
	return auth.NewMiddleware(sessions, PublicRoute, nil).Wrap(mux), provider
}

func TestSessionExchangeAndLogout(t *testing.T) {
	handler, provider := newSessionServer(t)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/oauth/google/redirect_url", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"redirectUrl":"https://accounts.example.com/o/oauth2"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{}`)))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Equal(t, "No authorization code provided", decode[ErrorResponse](t, rr).Detail)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader(`{"code":"good-code"}`)))
	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Equal(t, auth.SessionCookieName, cookies[0].Name)
	require.Equal(t, "tok-1", cookies[0].Value)
	require.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode[UserView](t, rr)
	require.Equal(t, "user-1", me.ID)
	require.Equal(t, auth.MethodSession, me.AuthMethod)

	req = httptest.NewRequest(http.MethodGet, "/api/logout", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, []string{"tok-1"}, provider.deleted)
	cleared := rr.Result().Cookies()
	require.Len(t, cleared, 1)
	require.Equal(t, "", cleared[0].Value)
	require.Less(t, cleared[0].MaxAge, 0)

	req = httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRedirectURLRejectsUnknownRoutes(t *testing.T) {
	handler, _ := newSessionServer(t)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/oauth/google", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/oauth/myspace/redirect_url", nil))
	require.Equal(t, http.StatusBadGateway, rr.Code)
}

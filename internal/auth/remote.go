package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RemoteProvider talks to the identity provider's HTTP API.
type RemoteProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewRemoteProvider constructs a RemoteProvider with a bounded request timeout.
func NewRemoteProvider(baseURL, apiKey string) *RemoteProvider {
	return &RemoteProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

// RedirectURL returns the URL that starts the OAuth flow for provider.
func (p *RemoteProvider) RedirectURL(ctx context.Context, provider string) (string, error) {
	var payload struct {
		RedirectURL string `json:"redirect_url"`
	}
	path := "/oauth/" + url.PathEscape(provider) + "/redirect_url"
	if err := p.do(ctx, http.MethodGet, path, "", nil, &payload); err != nil {
		return "", err
	}
	if payload.RedirectURL == "" {
		return "", fmt.Errorf("identity provider returned no redirect url")
	}
	return payload.RedirectURL, nil
}

// ExchangeCode trades an OAuth authorization code for a session token.
func (p *RemoteProvider) ExchangeCode(ctx context.Context, code string) (string, error) {
	var payload struct {
		SessionToken string `json:"session_token"`
	}
	if err := p.do(ctx, http.MethodPost, "/sessions", "", map[string]string{"code": code}, &payload); err != nil {
		return "", err
	}
	if payload.SessionToken == "" {
		return "", fmt.Errorf("identity provider returned no session token")
	}
	return payload.SessionToken, nil
}

// ResolveSession returns the user owning token.
func (p *RemoteProvider) ResolveSession(ctx context.Context, token string) (*User, error) {
	var user User
	if err := p.do(ctx, http.MethodGet, "/users/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteSession ends the session upstream.
func (p *RemoteProvider) DeleteSession(ctx context.Context, token string) error {
	return p.do(ctx, http.MethodDelete, "/sessions/current", token, nil, nil)
}

func (p *RemoteProvider) do(ctx context.Context, method, path, sessionToken string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", p.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionToken != "" {
		req.Header.Set("Authorization", "Bearer "+sessionToken)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrProviderUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
		if sessionToken != "" {
			return ErrInvalidSession
		}
	}
	if resp.StatusCode >= 500 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrProviderUnavailable, method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("identity provider %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

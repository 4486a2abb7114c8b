package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"
)

// HTTPGateway talks to the dashboard backend. The bearer token is fed
// in by the session store's token notification.
type HTTPGateway struct {
	baseURL string
	client  *http.Client

	mu     sync.Mutex
	bearer string
}

func NewHTTPGateway(baseURL string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// SetBearer updates the Authorization header used for authenticated
// calls. Empty clears it.
func (g *HTTPGateway) SetBearer(token string) {
	g.mu.Lock()
	g.bearer = token
	g.mu.Unlock()
}

func (g *HTTPGateway) post(ctx context.Context, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	g.mu.Lock()
	if g.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+g.bearer)
	}
	g.mu.Unlock()
	return g.client.Do(req)
}

func backendMessage(resp *http.Response, fallback string) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return fallback
}

func (g *HTTPGateway) Login(ctx context.Context, identity, secret string) CredentialResult {
	identity = strings.TrimSpace(identity)
	if identity == "" || secret == "" {
		return loginFailure(msgInvalidCredentials)
	}
	resp, err := g.post(ctx, "/api/auth/login", map[string]string{"identity": identity, "secret": secret})
	if err != nil {
		return loginFailure("service unavailable")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return loginFailure(backendMessage(resp, msgInvalidCredentials))
	}
	var body struct {
		Token string `json:"token"`
		User  struct {
			Identity   string `json:"identity"`
			FirstLogin bool   `json:"first_login"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Token == "" {
		return loginFailure("malformed response")
	}
	return CredentialResult{
		OK:         true,
		Token:      body.Token,
		Identity:   body.User.Identity,
		FirstLogin: body.User.FirstLogin,
	}
}

// Logout signals the backend to revoke the session. Failures are
// ignored; the local session is already gone by the time this runs.
func (g *HTTPGateway) Logout(ctx context.Context) {
	resp, err := g.post(ctx, "/api/auth/logout", struct{}{})
	if err != nil {
		return
	}
	resp.Body.Close()
}

func (g *HTTPGateway) ForgotPassword(ctx context.Context, identity string) OpResult {
	resp, err := g.post(ctx, "/api/auth/forgot", map[string]string{"identity": strings.TrimSpace(identity)})
	if err == nil {
		resp.Body.Close()
	}
	// Success-shaped regardless, so the endpoint cannot be probed.
	return OpResult{OK: true, Message: "if this account exists, instructions were sent"}
}

func (g *HTTPGateway) ChangeFirstPassword(ctx context.Context, identity, newSecret string) OpResult {
	if strings.TrimSpace(identity) == "" || newSecret == "" {
		return OpResult{Message: "password required"}
	}
	resp, err := g.post(ctx, "/api/auth/change-first-password", map[string]string{"secret": newSecret, "confirm": newSecret})
	if err != nil {
		return OpResult{Message: "service unavailable"}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return OpResult{Message: backendMessage(resp, "password change rejected")}
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return OpResult{OK: true}
	}
	// The reissued token flows back through the result; the store's
	// token notification updates the bearer once the session is saved.
	return OpResult{OK: true, Token: body.Token}
}

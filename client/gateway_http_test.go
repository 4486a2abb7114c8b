package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeBackend issues token-a on login and token-b on the forced
// password change, rejecting the change unless the login token is
// presented as the bearer.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "token-a",
			"user":  map[string]any{"identity": "nuevo@movura.mx", "first_login": true},
		})
	})
	mux.HandleFunc("/api/auth/change-first-password", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-a" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid session"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": "token-b",
			"user":  map[string]any{"identity": "nuevo@movura.mx", "first_login": false},
		})
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTPGatewayReturnsReissuedToken(t *testing.T) {
	ts := fakeBackend(t)
	g := NewHTTPGateway(ts.URL)

	res := g.Login(context.Background(), "nuevo@movura.mx", "temp-pass")
	if !res.OK || res.Token != "token-a" || !res.FirstLogin {
		t.Fatalf("login: %+v", res)
	}
	g.SetBearer(res.Token)

	op := g.ChangeFirstPassword(context.Background(), "nuevo@movura.mx", "fresh-secret-1")
	if !op.OK {
		t.Fatalf("change: %+v", op)
	}
	if op.Token != "token-b" {
		t.Fatalf("reissued token lost, got %q", op.Token)
	}
}

func TestHTTPGatewayTokenRotationSurvivesRestart(t *testing.T) {
	ts := fakeBackend(t)
	dir := t.TempDir()

	g := NewHTTPGateway(ts.URL)
	fs, err := NewFileStore(dir, g.SetBearer)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	p := NewProvider(fs, g)
	p.Init()
	if res := p.Login(context.Background(), "nuevo@movura.mx", "temp-pass"); !res.OK {
		t.Fatalf("login: %+v", res)
	}
	if op := p.ChangeFirstPassword(context.Background(), "fresh-secret-1"); !op.OK {
		t.Fatalf("change: %+v", op)
	}

	// fresh process: new gateway, new store over the same state dir
	g2 := NewHTTPGateway(ts.URL)
	fs2, err := NewFileStore(dir, g2.SetBearer)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if restored := fs2.Load(); restored.Token != "token-b" {
		t.Fatalf("restart restored token %q", restored.Token)
	}
}

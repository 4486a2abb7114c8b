package client

import (
	"context"
	"errors"
	"testing"
	"time"
)

type blockingGateway struct {
	release chan struct{}
	result  CredentialResult
}

func (g *blockingGateway) Login(ctx context.Context, identity, secret string) CredentialResult {
	<-g.release
	return g.result
}

func (g *blockingGateway) Logout(ctx context.Context) {}

func (g *blockingGateway) ForgotPassword(ctx context.Context, identity string) OpResult {
	return OpResult{OK: true}
}

func (g *blockingGateway) ChangeFirstPassword(ctx context.Context, identity, newSecret string) OpResult {
	return OpResult{OK: true}
}

func TestLoginEmptyInputsFailWithoutGateway(t *testing.T) {
	fs, _ := newTestStore(t)
	p := NewProvider(fs, NewSimGateway())
	p.Init()
	for _, pair := range [][2]string{{"", "secret"}, {"ops@movura.mx", ""}, {"", ""}} {
		res := p.Login(context.Background(), pair[0], pair[1])
		if res.OK || res.Message != msgInvalidCredentials {
			t.Fatalf("identity=%q secret=%q: got %+v", pair[0], pair[1], res)
		}
		if p.Session().Authenticated() {
			t.Fatal("session authenticated after failed login")
		}
	}
}

func TestLoadingResetAfterLoginSettles(t *testing.T) {
	fs, _ := newTestStore(t)
	p := NewProvider(fs, NewSimGateway())
	if !p.Loading() {
		t.Fatal("provider must report loading before Init")
	}
	p.Init()
	if p.Loading() {
		t.Fatal("loading stuck after Init")
	}
	p.Login(context.Background(), "jane@test.com", "pw")
	if p.Loading() {
		t.Fatal("loading stuck after successful login")
	}
	p.Login(context.Background(), "", "")
	if p.Loading() {
		t.Fatal("loading stuck after failed login")
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	fs, _ := newTestStore(t)
	p := NewProvider(fs, NewSimGateway())
	p.Init()
	p.Login(context.Background(), "jane@test.com", "pw")
	p.Logout(context.Background())
	first := p.Session()
	p.Logout(context.Background())
	if second := p.Session(); second != first || second.Authenticated() {
		t.Fatalf("double logout diverged: %+v vs %+v", first, second)
	}
	if fs.Load().Authenticated() {
		t.Fatal("persisted keys survived logout")
	}
}

func TestCompleteFirstLoginWithoutSessionIsNoop(t *testing.T) {
	fs, _ := newTestStore(t)
	p := NewProvider(fs, NewSimGateway())
	p.Init()
	before := p.Session()
	p.CompleteFirstLogin()
	if p.Session() != before {
		t.Fatal("session changed without an active login")
	}
}

func TestLoginNeverFlipsFirstLoginItself(t *testing.T) {
	fs, _ := newTestStore(t)
	p := NewProvider(fs, NewSimGateway())
	p.Init()
	res := p.Login(context.Background(), "first@test.com", "pw")
	if !res.OK {
		t.Fatalf("login: %+v", res)
	}
	if !p.Session().FirstLogin {
		t.Fatal("firstLogin flipped by login itself")
	}
	p.CompleteFirstLogin()
	if p.Session().FirstLogin {
		t.Fatal("CompleteFirstLogin did not flip the flag")
	}
}

func TestStaleLoginDiscardedAfterLogout(t *testing.T) {
	fs, _ := newTestStore(t)
	gw := &blockingGateway{
		release: make(chan struct{}),
		result:  CredentialResult{OK: true, Token: "late-token", Identity: "slow@movura.mx"},
	}
	p := NewProvider(fs, gw)
	p.Init()

	done := make(chan CredentialResult, 1)
	go func() {
		done <- p.Login(context.Background(), "slow@movura.mx", "pw")
	}()

	// wait until the login is inside the gateway, then log out before
	// letting it resolve
	for !p.Loading() {
		time.Sleep(time.Millisecond)
	}
	p.Logout(context.Background())
	close(gw.release)
	res := <-done
	if res.OK {
		t.Fatal("stale login applied after logout")
	}
	if p.Session().Authenticated() {
		t.Fatalf("session resurrected by stale login: %+v", p.Session())
	}
	if fs.Load().Authenticated() {
		t.Fatal("stale login reached the store")
	}
}

func TestSecondLoginRefusedWhileBusy(t *testing.T) {
	fs, _ := newTestStore(t)
	gw := &blockingGateway{
		release: make(chan struct{}),
		result:  CredentialResult{OK: true, Token: "tok", Identity: "a@movura.mx"},
	}
	p := NewProvider(fs, gw)
	p.Init()

	done := make(chan CredentialResult, 1)
	go func() {
		done <- p.Login(context.Background(), "a@movura.mx", "pw")
	}()

	// wait until the first call is inside the gateway
	for !p.Loading() {
		time.Sleep(time.Millisecond)
	}
	if res := p.Login(context.Background(), "b@movura.mx", "pw"); res.OK {
		t.Fatal("concurrent login accepted")
	}
	close(gw.release)
	if res := <-done; !res.OK {
		t.Fatalf("first login failed: %+v", res)
	}
}

// reissuingGateway mimics the backend's change-first-password contract:
// the login token is dead after the change and a fresh one comes back.
type reissuingGateway struct{}

func (reissuingGateway) Login(ctx context.Context, identity, secret string) CredentialResult {
	return CredentialResult{OK: true, Token: "token-a", Identity: identity, FirstLogin: true}
}

func (reissuingGateway) Logout(ctx context.Context) {}

func (reissuingGateway) ForgotPassword(ctx context.Context, identity string) OpResult {
	return OpResult{OK: true}
}

func (reissuingGateway) ChangeFirstPassword(ctx context.Context, identity, newSecret string) OpResult {
	return OpResult{OK: true, Token: "token-b"}
}

func TestChangeFirstPasswordAdoptsReissuedToken(t *testing.T) {
	fs, lastToken := newTestStore(t)
	p := NewProvider(fs, reissuingGateway{})
	p.Init()
	if res := p.Login(context.Background(), "nuevo@movura.mx", "temp-pass"); !res.OK {
		t.Fatalf("login: %+v", res)
	}
	if op := p.ChangeFirstPassword(context.Background(), "fresh-secret-1"); !op.OK {
		t.Fatalf("change: %+v", op)
	}
	if got := p.Session().Token; got != "token-b" {
		t.Fatalf("session kept revoked token %q", got)
	}
	if *lastToken != "token-b" {
		t.Fatalf("transport bearer not rotated, got %q", *lastToken)
	}
	// simulated restart: the persisted session must carry the new token
	restored := fs.Load()
	if restored.Token != "token-b" {
		t.Fatalf("restart restored token %q", restored.Token)
	}
	if !restored.FirstLogin {
		t.Fatal("password change flipped firstLogin; only CompleteFirstLogin may")
	}
}

// failingSaveStore accepts nothing durably.
type failingSaveStore struct{}

func (failingSaveStore) Load() Session        { return Session{} }
func (failingSaveStore) Save(s Session) error { return errors.New("disk full") }
func (failingSaveStore) Clear()               {}

func TestLoginSurfacesPersistenceFailure(t *testing.T) {
	p := NewProvider(failingSaveStore{}, NewSimGateway())
	p.Init()
	res := p.Login(context.Background(), "jane@test.com", "pw")
	if !res.OK {
		t.Fatalf("login: %+v", res)
	}
	if res.Message == "" {
		t.Fatal("persistence failure not surfaced")
	}
	if !p.Session().Authenticated() {
		t.Fatal("in-memory session dropped on persistence failure")
	}
}

func TestForgotPasswordAlwaysSuccessShaped(t *testing.T) {
	fs, _ := newTestStore(t)
	p := NewProvider(fs, NewSimGateway())
	p.Init()
	for _, identity := range []string{"jane@test.com", "nobody@nowhere", ""} {
		if op := p.ForgotPassword(context.Background(), identity); !op.OK {
			t.Fatalf("forgot %q: %+v", identity, op)
		}
	}
	if p.Session().Authenticated() {
		t.Fatal("forgot password changed the session")
	}
}

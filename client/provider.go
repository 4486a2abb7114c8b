package client

import (
	"context"
	"strings"
	"sync"
)

// Provider owns the mutable session. It is the only component that
// writes to the session store; guards and screens read through it.
type Provider struct {
	store   SessionStore
	gateway Gateway

	mu         sync.Mutex
	session    Session
	loading    bool
	loaded     bool
	busy       bool
	generation uint64
	listeners  []func(Session)
}

func NewProvider(store SessionStore, gateway Gateway) *Provider {
	return &Provider{store: store, gateway: gateway, loading: true}
}

// Init restores the persisted session. Until it runs, the session is
// "unknown": Loading reports true and no phase should render.
func (p *Provider) Init() {
	p.mu.Lock()
	if p.loaded {
		p.mu.Unlock()
		return
	}
	p.session = p.store.Load()
	p.loading = false
	p.loaded = true
	s := p.session
	p.mu.Unlock()
	p.notify(s)
}

func (p *Provider) Session() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

func (p *Provider) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Subscribe registers a listener invoked on every session change. Used
// by the phase controller; listeners run synchronously.
func (p *Provider) Subscribe(fn func(Session)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}

func (p *Provider) notify(s Session) {
	p.mu.Lock()
	listeners := make([]func(Session), len(p.listeners))
	copy(listeners, p.listeners)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}

// beginOp marks an auth operation in flight. A second mutating call
// while one is pending is refused rather than interleaved.
func (p *Provider) beginOp() (uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded || p.busy {
		return 0, false
	}
	p.busy = true
	p.loading = true
	return p.generation, true
}

func (p *Provider) endOp() {
	p.mu.Lock()
	p.busy = false
	p.loading = false
	p.mu.Unlock()
}

// Login authenticates and applies the result atomically. A result that
// resolves after a logout (generation moved on) is discarded.
func (p *Provider) Login(ctx context.Context, identity, secret string) CredentialResult {
	identity = strings.TrimSpace(identity)
	if identity == "" || secret == "" {
		return loginFailure(msgInvalidCredentials)
	}
	gen, ok := p.beginOp()
	if !ok {
		return loginFailure("another operation is in progress")
	}
	defer p.endOp()

	res := p.gateway.Login(ctx, identity, secret)

	p.mu.Lock()
	if p.generation != gen {
		p.mu.Unlock()
		return loginFailure("operation superseded")
	}
	if !res.OK {
		p.session = Session{}
		p.mu.Unlock()
		p.store.Clear()
		p.notify(Session{})
		return res
	}
	p.session = Session{Identity: res.Identity, FirstLogin: res.FirstLogin, Token: res.Token}
	s := p.session
	p.mu.Unlock()
	if err := p.store.Save(s); err != nil {
		// The in-memory session stands; only persistence failed.
		res.Message = "session not persisted; login will not survive a restart"
	}
	p.notify(s)
	return res
}

// Logout clears the session immediately and tells the backend in the
// background. Idempotent.
func (p *Provider) Logout(ctx context.Context) {
	p.mu.Lock()
	wasAuthenticated := p.session.Authenticated()
	p.session = Session{}
	p.generation++
	p.mu.Unlock()
	p.store.Clear()
	if wasAuthenticated {
		go p.gateway.Logout(context.WithoutCancel(ctx))
	}
	p.notify(Session{})
}

// CompleteFirstLogin flips the first-login flag off. This is the only
// place the flag transitions to false; a no-op without a session.
func (p *Provider) CompleteFirstLogin() {
	p.mu.Lock()
	if !p.session.Authenticated() || !p.session.FirstLogin {
		p.mu.Unlock()
		return
	}
	p.session.FirstLogin = false
	s := p.session
	p.mu.Unlock()
	_ = p.store.Save(s)
	p.notify(s)
}

func (p *Provider) ForgotPassword(ctx context.Context, identity string) OpResult {
	if _, ok := p.beginOp(); !ok {
		return OpResult{Message: "another operation is in progress"}
	}
	defer p.endOp()
	return p.gateway.ForgotPassword(ctx, identity)
}

// ChangeFirstPassword delegates to the gateway and, on success, adopts
// the reissued token: the backend revoked the old one, so keeping it in
// the session or on disk would strand the user on the next restart.
func (p *Provider) ChangeFirstPassword(ctx context.Context, newSecret string) OpResult {
	p.mu.Lock()
	identity := p.session.Identity
	authenticated := p.session.Authenticated()
	p.mu.Unlock()
	if !authenticated {
		return OpResult{Message: "not authenticated"}
	}
	gen, ok := p.beginOp()
	if !ok {
		return OpResult{Message: "another operation is in progress"}
	}
	defer p.endOp()

	res := p.gateway.ChangeFirstPassword(ctx, identity, newSecret)
	if !res.OK || res.Token == "" {
		return res
	}
	p.mu.Lock()
	if p.generation != gen || !p.session.Authenticated() {
		p.mu.Unlock()
		return res
	}
	p.session.Token = res.Token
	s := p.session
	p.mu.Unlock()
	_ = p.store.Save(s)
	p.notify(s)
	return res
}

package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"movura-admin/core/store"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionManager mints and validates opaque bearer tokens backed by a
// store.SessionStore.
type SessionManager struct {
	sessions store.SessionStore
	ttl      time.Duration
}

func NewSessionManager(sessions store.SessionStore, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &SessionManager{sessions: sessions, ttl: ttl}
}

func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (m *SessionManager) Create(ctx context.Context, u *store.User, roles []string, ip, userAgent string) (*store.SessionRecord, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	rec := &store.SessionRecord{
		Token:      token,
		UserID:     u.ID,
		Identity:   u.Identity,
		Roles:      roles,
		IP:         ip,
		UserAgent:  userAgent,
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  now.Add(m.ttl),
	}
	if err := m.sessions.Put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Validate resolves a bearer token to a live session, refreshing its
// last-seen timestamp. Expired and revoked sessions are rejected.
func (m *SessionManager) Validate(ctx context.Context, token string) (*store.SessionRecord, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}
	rec, err := m.sessions.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.Revoked || time.Now().UTC().After(rec.ExpiresAt) {
		return nil, ErrSessionNotFound
	}
	if err := m.sessions.Touch(ctx, token, time.Now().UTC()); err != nil {
		return nil, err
	}
	return rec, nil
}

func (m *SessionManager) Revoke(ctx context.Context, token, by string) error {
	return m.sessions.Revoke(ctx, token, by)
}

func (m *SessionManager) RevokeAllForUser(ctx context.Context, userID, by string) (int64, error) {
	return m.sessions.RevokeAllForUser(ctx, userID, by)
}

// FromContext returns the session placed on the context by the auth
// middleware, or nil.
func FromContext(ctx context.Context) *store.SessionRecord {
	rec, _ := ctx.Value(SessionContextKey).(*store.SessionRecord)
	return rec
}

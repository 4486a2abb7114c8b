package client

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// firstLoginMarker makes the forced password change reachable in the
// simulation without a user database: any identity containing it logs
// in with firstLogin set.
const firstLoginMarker = "first@"

// SimGateway is a local stand-in for the backend, used in development
// and tests. Any non-empty credential pair logs in.
type SimGateway struct{}

func NewSimGateway() *SimGateway {
	return &SimGateway{}
}

func simToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "sim-token"
	}
	return "sim-" + hex.EncodeToString(buf)
}

func (g *SimGateway) Login(ctx context.Context, identity, secret string) CredentialResult {
	identity = strings.TrimSpace(identity)
	if identity == "" || secret == "" {
		return loginFailure(msgInvalidCredentials)
	}
	return CredentialResult{
		OK:         true,
		Token:      simToken(),
		Identity:   identity,
		FirstLogin: strings.Contains(strings.ToLower(identity), firstLoginMarker),
	}
}

func (g *SimGateway) Logout(ctx context.Context) {}

func (g *SimGateway) ForgotPassword(ctx context.Context, identity string) OpResult {
	return OpResult{OK: true, Message: "if this account exists, instructions were sent"}
}

func (g *SimGateway) ChangeFirstPassword(ctx context.Context, identity, newSecret string) OpResult {
	if strings.TrimSpace(identity) == "" || newSecret == "" {
		return OpResult{Message: "password required"}
	}
	return OpResult{OK: true, Token: simToken()}
}

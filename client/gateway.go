package client

import "context"

const msgInvalidCredentials = "invalid credentials"

// CredentialResult is the uniform outcome of a login attempt. Failures
// carry only a message; a success carries the payload and may carry an
// advisory message (for example when persistence failed).
type CredentialResult struct {
	OK         bool
	Token      string
	Identity   string
	FirstLogin bool
	Message    string
}

func loginFailure(message string) CredentialResult {
	if message == "" {
		message = "login failed"
	}
	return CredentialResult{Message: message}
}

// OpResult is the outcome of the non-login gateway operations. Token is
// set only by changeFirstPassword: the backend revokes every prior
// session on that call and reissues a fresh token.
type OpResult struct {
	OK      bool
	Token   string
	Message string
}

// Gateway performs the four authentication operations against the
// backend boundary. Implementations never panic or leak transport
// errors; every outcome is a result value.
type Gateway interface {
	Login(ctx context.Context, identity, secret string) CredentialResult
	Logout(ctx context.Context)
	ForgotPassword(ctx context.Context, identity string) OpResult
	ChangeFirstPassword(ctx context.Context, identity, newSecret string) OpResult
}

// Package client implements the operator-side session lifecycle used by
// the dashboard: durable session storage, the credential gateway, the
// session provider, and the phase controller that decides which view an
// operator may see.
package client

// Session is the client's view of who is logged in. Token present
// means authenticated; FirstLogin is only meaningful while a token is
// held.
type Session struct {
	Identity   string `json:"identity"`
	FirstLogin bool   `json:"firstLogin"`
	Token      string `json:"-"`
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

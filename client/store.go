package client

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

const (
	tokenFile    = "session.token"
	identityFile = "session.json"
)

// SessionStore persists the session across process restarts.
type SessionStore interface {
	Load() Session
	Save(s Session) error
	Clear()
}

type identityRecord struct {
	Identity   string `json:"identity"`
	FirstLogin bool   `json:"firstLogin"`
}

// FileStore keeps the session in two files under dir: the opaque token
// and a JSON record of identity plus the first-login flag. The two are
// written and cleared together; on load, one without the other means no
// session.
type FileStore struct {
	dir     string
	onToken func(token string)
}

// NewFileStore creates the state directory if needed. onToken is called
// whenever the persisted token changes so the transport can update its
// bearer header; it may be nil.
func NewFileStore(dir string, onToken func(token string)) (*FileStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".movura-admin")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, onToken: onToken}, nil
}

func (f *FileStore) tokenPath() string    { return filepath.Join(f.dir, tokenFile) }
func (f *FileStore) identityPath() string { return filepath.Join(f.dir, identityFile) }

// Load restores the persisted session. Any read or parse problem, or a
// missing counterpart file, yields an empty session and wipes whatever
// was on disk so the next load starts clean.
func (f *FileStore) Load() Session {
	tokenRaw, tokenErr := os.ReadFile(f.tokenPath())
	identRaw, identErr := os.ReadFile(f.identityPath())
	if tokenErr != nil || identErr != nil {
		f.Clear()
		return Session{}
	}
	token := strings.TrimSpace(string(tokenRaw))
	var rec identityRecord
	if token == "" || json.Unmarshal(identRaw, &rec) != nil || strings.TrimSpace(rec.Identity) == "" {
		f.Clear()
		return Session{}
	}
	if f.onToken != nil {
		f.onToken(token)
	}
	return Session{Identity: rec.Identity, FirstLogin: rec.FirstLogin, Token: token}
}

// Save writes both keys, or removes them when the session is empty.
func (f *FileStore) Save(s Session) error {
	if !s.Authenticated() {
		f.Clear()
		return nil
	}
	data, err := json.Marshal(identityRecord{Identity: s.Identity, FirstLogin: s.FirstLogin})
	if err != nil {
		return err
	}
	if err := os.WriteFile(f.tokenPath(), []byte(s.Token), 0o600); err != nil {
		return err
	}
	if err := os.WriteFile(f.identityPath(), data, 0o600); err != nil {
		os.Remove(f.tokenPath())
		return err
	}
	if f.onToken != nil {
		f.onToken(s.Token)
	}
	return nil
}

// Clear removes both persisted keys and drops the transport bearer.
func (f *FileStore) Clear() {
	os.Remove(f.tokenPath())
	os.Remove(f.identityPath())
	if f.onToken != nil {
		f.onToken("")
	}
}

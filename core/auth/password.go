package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters. Changing them invalidates stored hashes, so any
// future tuning needs a rehash-on-login migration first.
const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 4
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

var b64 = base64.RawStdEncoding

// PasswordHash is the stored form of a peppered argon2id hash. Both
// fields are raw-std base64.
type PasswordHash struct {
	Hash string
	Salt string
}

// deriveKey peppers the password before key derivation. The pepper lives
// in config, never in the database.
func deriveKey(password, pepper string, salt []byte) []byte {
	peppered := make([]byte, 0, len(password)+len(pepper))
	peppered = append(peppered, password...)
	peppered = append(peppered, pepper...)
	return argon2.IDKey(peppered, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

func HashPassword(password, pepper string) (*PasswordHash, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	key := deriveKey(password, pepper, salt)
	return &PasswordHash{
		Hash: b64.EncodeToString(key),
		Salt: b64.EncodeToString(salt),
	}, nil
}

func VerifyPassword(password, pepper string, stored *PasswordHash) (bool, error) {
	if stored == nil {
		return false, errors.New("no stored hash")
	}
	salt, err := b64.DecodeString(stored.Salt)
	if err != nil {
		return false, err
	}
	expected, err := b64.DecodeString(stored.Hash)
	if err != nil {
		return false, err
	}
	key := deriveKey(password, pepper, salt)
	return subtle.ConstantTimeCompare(key, expected) == 1, nil
}

// MustHashPassword is for seeding and CLI paths where the only failure
// mode is a broken entropy source.
func MustHashPassword(password, pepper string) *PasswordHash {
	p, err := HashPassword(password, pepper)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePasswordHash rebuilds the stored form from database columns.
func ParsePasswordHash(hash, salt string) (*PasswordHash, error) {
	if hash == "" || salt == "" {
		return nil, errors.New("empty hash or salt")
	}
	if _, err := b64.DecodeString(hash); err != nil {
		return nil, errors.New("malformed hash")
	}
	if _, err := b64.DecodeString(salt); err != nil {
		return nil, errors.New("malformed salt")
	}
	return &PasswordHash{Hash: hash, Salt: salt}, nil
}

package requests

import (
	"errors"
)

// ErrNoCredentials is returned when no API key was configured.
var ErrNoCredentials = errors.New("no API key configured")

// Credential is a single API key, passed explicitly to every authenticated request.
type Credential struct {
	key string
}

// NewCredential wraps a raw API key.
func NewCredential(key string) Credential {
	return Credential{key: key}
}

// Key returns the raw value sent on the X-Riot-Token header.
func (c Credential) Key() string {
	return c.key
}

// IsZero reports if the credential is empty.
func (c Credential) IsZero() bool {
	return c.key == ""
}

// Masked returns the key with only the last characters visible, safe for logs.
func (c Credential) Masked() string {
	if len(c.key) <= 4 {
		return "****"
	}
	return "****" + c.key[len(c.key)-4:]
}

// CredentialRing is a immutable list of keys with a current position.
// Rotating returns a new ring, the receiver is never changed.
type CredentialRing struct {
	keys    []Credential
	current int
}

// NewCredentialRing creates a ring positioned on the first key.
func NewCredentialRing(keys []string) (CredentialRing, error) {
	credentials := make([]Credential, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		credentials = append(credentials, NewCredential(key))
	}

	if len(credentials) == 0 {
		return CredentialRing{}, ErrNoCredentials
	}

	return CredentialRing{keys: credentials}, nil
}

// Current returns the credential that should be used on the next request.
func (r CredentialRing) Current() Credential {
	if len(r.keys) == 0 {
		return Credential{}
	}
	return r.keys[r.current]
}

// Rotate returns a ring positioned on the next key, wrapping around.
func (r CredentialRing) Rotate() CredentialRing {
	if len(r.keys) == 0 {
		return r
	}
	return CredentialRing{
		keys:    r.keys,
		current: (r.current + 1) % len(r.keys),
	}
}

// Len returns how many keys the ring holds.
func (r CredentialRing) Len() int {
	return len(r.keys)
}

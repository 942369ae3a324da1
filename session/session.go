// Package session holds the immutable identity shared by every message the
// kernel signs: the session id, the signing key, and the username that appear
// in message headers. A Session is created once at startup and passed around
// read-only.
package session

import (
	"fmt"

	"github.com/google/uuid"
)

// SchemeHMACSHA256 is the only signature scheme the kernel implements. The
// scheme name matches the value consumers advertise in their connection
// descriptors.
const SchemeHMACSHA256 = "hmac-sha256"

// Session identifies one kernel session. Fields are fixed at construction;
// treat a Session as read-only after New returns.
type Session struct {
	ID       string
	Key      string
	Username string
	Scheme   string
}

// New creates a Session from configuration. A missing id is replaced with a
// fresh UUIDv7 and a missing username with the default. When the key is
// non-empty the signature scheme is validated here, so an unsignable session
// aborts startup instead of sending traffic the consumer will reject.
func New(cfg *Config) (*Session, error) {
	merged := DefaultConfig()
	merged.Merge(cfg)

	if merged.Key != "" && merged.SignatureScheme != SchemeHMACSHA256 {
		return nil, fmt.Errorf("%w: scheme %q with non-empty key", ErrSigningUnavailable, merged.SignatureScheme)
	}

	id := merged.ID
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
	}

	return &Session{
		ID:       id,
		Key:      merged.Key,
		Username: merged.Username,
		Scheme:   merged.SignatureScheme,
	}, nil
}

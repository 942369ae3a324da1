package wire

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/repl-bridge/kernel/session"
)

// Signer computes the message signature part. The signing capability is
// resolved once at construction: an empty key disables signing, a non-empty
// key with an unsupported scheme is a configuration error.
type Signer struct {
	key []byte
}

// NewSigner creates a Signer for the session's key and scheme.
func NewSigner(sess *session.Session) (*Signer, error) {
	if sess.Key == "" {
		return &Signer{}, nil
	}
	if sess.Scheme != session.SchemeHMACSHA256 {
		return nil, fmt.Errorf("%w: scheme %q", session.ErrSigningUnavailable, sess.Scheme)
	}
	return &Signer{key: []byte(sess.Key)}, nil
}

// Sign returns the hex-encoded HMAC-SHA256 over the concatenation of the
// four signed parts, or the empty string when signing is disabled.
func (s *Signer) Sign(header, parent, metadata, content []byte) string {
	if len(s.key) == 0 {
		return ""
	}

	mac := hmac.New(sha256.New, s.key)
	mac.Write(header)
	mac.Write(parent)
	mac.Write(metadata)
	mac.Write(content)
	return hex.EncodeToString(mac.Sum(nil))
}

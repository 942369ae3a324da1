package wire_test

import (
	"errors"
	"testing"

	"github.com/repl-bridge/kernel/core/wire"
	"github.com/repl-bridge/kernel/session"
)

func newSigner(t *testing.T, key string) *wire.Signer {
	t.Helper()
	signer, err := wire.NewSigner(&session.Session{
		ID:       "test-session",
		Key:      key,
		Username: "kernel",
		Scheme:   session.SchemeHMACSHA256,
	})
	if err != nil {
		t.Fatalf("NewSigner failed: %v", err)
	}
	return signer
}

func TestSign_KnownVector(t *testing.T) {
	signer := newSigner(t, "secret")

	got := signer.Sign([]byte("h"), []byte("p"), []byte("m"), []byte("c"))
	want := "f35deee5a323b3f2043e15437be0ca14ab3a46e029c06948c33a5545f01cc772"
	if got != want {
		t.Errorf("Sign = %q, want %q", got, want)
	}
}

func TestSign_Deterministic(t *testing.T) {
	signer := newSigner(t, "secret")

	first := signer.Sign([]byte(`{"a":1}`), []byte("{}"), []byte("{}"), []byte(`{"data":{}}`))
	second := signer.Sign([]byte(`{"a":1}`), []byte("{}"), []byte("{}"), []byte(`{"data":{}}`))
	if first != second {
		t.Errorf("identical inputs produced different signatures: %q vs %q", first, second)
	}

	want := "bbf46b16259f3cbe4e2b9d4c97ad0329d82039d9e7de809d7c5475acec928562"
	if first != want {
		t.Errorf("Sign = %q, want %q", first, want)
	}
}

func TestSign_SingleByteChange(t *testing.T) {
	signer := newSigner(t, "secret")
	base := signer.Sign([]byte("h"), []byte("p"), []byte("m"), []byte("c"))

	tests := []struct {
		name                        string
		header, parent, meta, content string
	}{
		{name: "header byte", header: "H", parent: "p", meta: "m", content: "c"},
		{name: "parent byte", header: "h", parent: "P", meta: "m", content: "c"},
		{name: "metadata byte", header: "h", parent: "p", meta: "M", content: "c"},
		{name: "content byte", header: "h", parent: "p", meta: "m", content: "C"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := signer.Sign([]byte(tt.header), []byte(tt.parent), []byte(tt.meta), []byte(tt.content))
			if got == base {
				t.Errorf("changing one input byte did not change the signature")
			}
		})
	}
}

func TestSign_EmptyKey(t *testing.T) {
	signer := newSigner(t, "")

	if got := signer.Sign([]byte("h"), []byte("p"), []byte("m"), []byte("c")); got != "" {
		t.Errorf("empty key produced signature %q, want empty", got)
	}
}

func TestNewSigner_UnsupportedScheme(t *testing.T) {
	_, err := wire.NewSigner(&session.Session{
		ID:     "test-session",
		Key:    "secret",
		Scheme: "hmac-md5",
	})
	if !errors.Is(err, session.ErrSigningUnavailable) {
		t.Fatalf("got error %v, want ErrSigningUnavailable", err)
	}
}

func TestNewSigner_EmptyKeyIgnoresScheme(t *testing.T) {
	signer, err := wire.NewSigner(&session.Session{ID: "test-session", Scheme: "hmac-md5"})
	if err != nil {
		t.Fatalf("NewSigner failed for empty key: %v", err)
	}
	if got := signer.Sign(nil, nil, nil, nil); got != "" {
		t.Errorf("got signature %q, want empty", got)
	}
}

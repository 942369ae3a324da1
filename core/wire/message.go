// Package wire builds the multipart messages the kernel publishes on the
// out-of-band display channel. A Message is seven ordered byte parts in the
// bus wire format: message type, delimiter, signature, header JSON,
// parent-header JSON, metadata JSON, and content JSON.
//
// Serialization is deterministic (struct field order for headers, sorted map
// keys for content) because the signature is computed over the exact bytes
// that go on the wire. A Message is immutable once built.
package wire

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/repl-bridge/kernel/session"
)

const (
	// ProtocolVersion is the bus protocol version stamped into every header.
	ProtocolVersion = "5.2"

	// MsgTypeDisplayData is the message type for rich display output.
	MsgTypeDisplayData = "display_data"

	// Delimiter separates routing identities from the signed payload on the
	// bus. It is carried verbatim as the second part of every message.
	Delimiter = "<IDS|MSG>"
)

// emptyObject is the serialized form of an absent JSON section. The parent
// header and metadata parts fall back to it so the signature input is always
// well defined.
var emptyObject = []byte("{}")

// Header is the signed message header. Field order matches the wire layout;
// do not reorder.
type Header struct {
	MsgID    string `json:"msg_id"`
	Username string `json:"username"`
	Session  string `json:"session"`
	Date     string `json:"date"`
	MsgType  string `json:"msg_type"`
	Version  string `json:"version"`
}

// NewHeader creates a Header for the given message type, stamped with a fresh
// UUIDv7 id and the current UTC time.
func NewHeader(sess *session.Session, msgType string) Header {
	return Header{
		MsgID:    uuid.Must(uuid.NewV7()).String(),
		Username: sess.Username,
		Session:  sess.ID,
		Date:     Timestamp(time.Now()),
		MsgType:  msgType,
		Version:  ProtocolVersion,
	}
}

// Timestamp formats t as the UTC millisecond-precision ISO-8601 form the
// header's date field uses.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// DisplayContent is the content body of a display_data message.
type DisplayContent struct {
	Data      map[string]string `json:"data"`
	Metadata  map[string]any    `json:"metadata"`
	Transient map[string]any    `json:"transient"`
}

// NewPNGDisplay creates display content carrying one base64-encoded PNG.
func NewPNGDisplay(base64PNG string) DisplayContent {
	return DisplayContent{
		Data:      map[string]string{"image/png": base64PNG},
		Metadata:  map[string]any{},
		Transient: map[string]any{},
	}
}

// Message is one fully framed display message. Parts are in wire order and
// must not be modified after construction.
type Message struct {
	parts [][]byte
}

// NewMessage serializes header, parent header, and content, signs them, and
// assembles the seven wire parts. A nil parentHeader is sent as an empty
// object. The returned Message owns its parts.
func NewMessage(signer *Signer, header Header, parentHeader []byte, content any) (*Message, error) {
	headerBytes, err := json.Marshal(header)
	if err != nil {
		return nil, fmt.Errorf("marshal header: %w", err)
	}

	contentBytes, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("marshal content: %w", err)
	}

	parentBytes := parentHeader
	if len(parentBytes) == 0 {
		parentBytes = emptyObject
	}

	signature := signer.Sign(headerBytes, parentBytes, emptyObject, contentBytes)

	return &Message{parts: [][]byte{
		[]byte(header.MsgType),
		[]byte(Delimiter),
		[]byte(signature),
		headerBytes,
		slices.Clone(parentBytes),
		slices.Clone(emptyObject),
		contentBytes,
	}}, nil
}

// Parts returns the seven wire parts in order. The outer slice is a copy; the
// byte slices are shared and must be treated as read-only.
func (m *Message) Parts() [][]byte {
	return slices.Clone(m.parts)
}

// Type returns the message type carried in the first wire part.
func (m *Message) Type() string {
	return string(m.parts[0])
}

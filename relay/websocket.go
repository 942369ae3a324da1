package relay

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
)

// Websocket publishes frames over a websocket connection. Each frame is one
// binary message: every part is prefixed with its length as a 4-byte
// big-endian integer, preserving multipart boundaries across a transport
// that only knows whole messages.
type Websocket struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWebsocket creates a publisher over an established connection. The
// publisher serializes writes; the caller retains ownership of the
// connection and is responsible for closing it.
func NewWebsocket(conn *websocket.Conn) *Websocket {
	return &Websocket{conn: conn}
}

func (w *Websocket) Publish(ctx context.Context, frame Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		if err := w.conn.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}

	if err := w.conn.WriteMessage(websocket.BinaryMessage, EncodeFrame(frame)); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// EncodeFrame packs a frame into the length-prefixed binary layout.
func EncodeFrame(frame Frame) []byte {
	size := 0
	for _, part := range frame {
		size += 4 + len(part)
	}

	buf := make([]byte, 0, size)
	for _, part := range frame {
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(part)))
		buf = append(buf, part...)
	}
	return buf
}

// DecodeFrame unpacks the length-prefixed binary layout back into parts.
func DecodeFrame(data []byte) (Frame, error) {
	var frame Frame
	for len(data) > 0 {
		if len(data) < 4 {
			return nil, fmt.Errorf("truncated part header: %d trailing bytes", len(data))
		}
		n := int(binary.BigEndian.Uint32(data))
		data = data[4:]
		if n > len(data) {
			return nil, fmt.Errorf("truncated part: want %d bytes, have %d", n, len(data))
		}
		part := make([]byte, n)
		copy(part, data[:n])
		frame = append(frame, part)
		data = data[n:]
	}
	return frame, nil
}

// Package relay hands fully framed display messages to the transport that
// carries them to the front end. The transport itself is out of scope here;
// the package provides the handoff interface, an in-memory channel publisher
// for embedding and tests, and a websocket publisher for streaming frames to
// an external consumer.
package relay

import "context"

// Frame is one display message ready for the bus: the ordered multipart
// bytes exactly as flushed from target memory.
type Frame [][]byte

// Publisher delivers frames to the relay transport. Delivery is best-effort
// and bounded by the session's lifetime; a Publisher must not reorder the
// frames of a single flush.
type Publisher interface {
	Publish(ctx context.Context, frame Frame) error
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(ctx context.Context, frame Frame) error

func (f PublisherFunc) Publish(ctx context.Context, frame Frame) error {
	return f(ctx, frame)
}

// Config holds relay initialization parameters.
type Config struct {
	// BufferSize is the channel publisher's capacity.
	BufferSize int `json:"buffer_size,omitempty"`
}

// DefaultConfig returns the default relay configuration.
func DefaultConfig() Config {
	return Config{BufferSize: 64}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source == nil {
		return
	}
	if source.BufferSize > 0 {
		c.BufferSize = source.BufferSize
	}
}

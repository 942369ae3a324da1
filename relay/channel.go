package relay

import "context"

// Channel is a Publisher backed by a buffered channel. The embedding process
// consumes frames from Frames; Publish blocks when the buffer is full rather
// than dropping, so backpressure reaches the controller.
type Channel struct {
	frames chan Frame
}

// NewChannel creates a channel publisher with the configured capacity.
func NewChannel(cfg Config) *Channel {
	merged := DefaultConfig()
	merged.Merge(&cfg)
	return &Channel{frames: make(chan Frame, merged.BufferSize)}
}

func (c *Channel) Publish(ctx context.Context, frame Frame) error {
	select {
	case c.frames <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Frames returns the consumption side of the publisher.
func (c *Channel) Frames() <-chan Frame {
	return c.frames
}

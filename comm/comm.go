// Package comm is the producer side of the out-of-band display channel: the
// state that lives inside the target process and accumulates display
// messages while the normal async transport is suspended. Code running in
// the target enqueues messages; the controller later calls Flush through the
// debugger facility and copies the reported regions straight out of memory.
//
// A Communicator is single-threaded by construction: the target executes
// submitted code synchronously on one thread, and Flush never runs while
// that thread is executing user code. It therefore carries no locking.
package comm

import (
	"log/slog"

	"github.com/repl-bridge/kernel/arena"
	"github.com/repl-bridge/kernel/core/wire"
	"github.com/repl-bridge/kernel/session"
)

// Communicator owns the pending message queue, the active parent context,
// and the byte-buffer arena for one target process.
type Communicator struct {
	session *session.Session
	signer  *wire.Signer
	arena   *arena.Arena
	logger  *slog.Logger

	parentHeader []byte
	pending      []*wire.Message
}

// Option configures a Communicator.
type Option func(*Communicator)

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Communicator) { c.logger = logger }
}

// New creates a Communicator for the session. Signing capability is resolved
// here, once: a session whose key cannot be honored fails construction.
func New(sess *session.Session, opts ...Option) (*Communicator, error) {
	signer, err := wire.NewSigner(sess)
	if err != nil {
		return nil, err
	}

	c := &Communicator{
		session: sess,
		signer:  signer,
		arena:   arena.New(),
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// EnqueueDisplay appends a display_data message carrying one base64-encoded
// PNG. The message is built immediately, against the session identity and
// the parent context active right now, and is immutable from then on.
func (c *Communicator) EnqueueDisplay(base64PNG string) error {
	header := wire.NewHeader(c.session, wire.MsgTypeDisplayData)
	msg, err := wire.NewMessage(c.signer, header, c.parentHeader, wire.NewPNGDisplay(base64PNG))
	if err != nil {
		return err
	}

	c.pending = append(c.pending, msg)
	return nil
}

// Pending returns the number of queued messages.
func (c *Communicator) Pending() int {
	return len(c.pending)
}

// Flush drains the queue into the arena. Every part of every queued message
// is copied into a freshly owned buffer, and the resulting regions are
// returned grouped per message, in enqueue order. Advancing the arena
// releases the generation before last; the regions of the previous flush
// stay readable until the flush after this one.
func (c *Communicator) Flush() [][]arena.Region {
	generation := c.arena.Advance()

	messages := make([][]arena.Region, 0, len(c.pending))
	for _, msg := range c.pending {
		parts := msg.Parts()
		regions := make([]arena.Region, 0, len(parts))
		for _, part := range parts {
			regions = append(regions, c.arena.Alloc(part))
		}
		messages = append(messages, regions)
	}

	c.pending = nil

	c.logger.Debug("flushed display queue",
		slog.Uint64("generation", generation),
		slog.Int("messages", len(messages)),
	)

	return messages
}

// Discard drops all queued messages without advancing the arena, so the
// regions of the last successful flush remain valid. Called after a failed
// or interrupted execution attempt.
func (c *Communicator) Discard() {
	if len(c.pending) == 0 {
		return
	}
	c.logger.Debug("discarded pending display messages", slog.Int("messages", len(c.pending)))
	c.pending = nil
}

// ReadMemory resolves an address reported by Flush. It is the memory-read
// surface the in-process debugger facility exposes to the controller.
func (c *Communicator) ReadMemory(address uint64, length int) ([]byte, error) {
	return c.arena.ReadMemory(address, length)
}

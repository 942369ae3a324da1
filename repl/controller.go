// Package repl drives turn-by-turn execution of code fragments in a
// debugger-attached target and classifies each attempt as Succeeded, Failed,
// or Crashed. After a successful attempt the controller flushes the target's
// display queue, copies every reported memory region into its own buffers,
// and hands the framed messages to the relay.
//
//	ctrl, err := repl.New(cfg, repl.WithTarget(tgt))
//	result, err := ctrl.Submit(ctx, code, requestJSON)
package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/repl-bridge/kernel/observability"
	"github.com/repl-bridge/kernel/relay"
	"github.com/repl-bridge/kernel/target"
)

// ResultState classifies one submission.
type ResultState int

const (
	// StateSucceeded: the fragment completed cleanly; displays were relayed.
	StateSucceeded ResultState = iota
	// StateFailed: compile/runtime diagnostic or successful interruption.
	// The session remains usable.
	StateFailed
	// StateCrashed: the target trapped, terminated, or could not be
	// interrupted. The session is unusable; the caller must restart.
	StateCrashed
)

func (s ResultState) String() string {
	switch s {
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	case StateCrashed:
		return "crashed"
	default:
		return fmt.Sprintf("ResultState(%d)", int(s))
	}
}

// ExecutionResult is the outcome of one submitted code fragment.
type ExecutionResult struct {
	State      ResultState
	Value      string             // captured value text, for StateSucceeded
	Diagnostic *target.Diagnostic // set for StateFailed and StateCrashed
	Displays   int                // display messages relayed, for StateSucceeded
}

// Option configures a Controller after config-driven initialization.
type Option func(*Controller)

// WithTarget sets the target the controller drives. Required.
func WithTarget(t target.Target) Option {
	return func(c *Controller) { c.target = t }
}

// WithPublisher overrides the config-created channel publisher.
func WithPublisher(p relay.Publisher) Option {
	return func(c *Controller) { c.publisher = p }
}

// WithObserver overrides the default slog observer.
func WithObserver(o observability.Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// WithLogger overrides the default logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
		c.observer = observability.NewSlog(logger)
	}
}

// Controller serializes submissions against one target. At most one fragment
// is in flight at a time; once a submission crashes the session every later
// Submit fails with ErrSessionCrashed.
type Controller struct {
	target      target.Target
	publisher   relay.Publisher
	observer    observability.Observer
	logger      *slog.Logger
	evalTimeout time.Duration

	mu      sync.Mutex
	crashed atomic.Bool
	count   atomic.Int64
}

// New creates a Controller from configuration. The target must be supplied
// with WithTarget; the publisher defaults to a channel publisher sized from
// the relay config, consumable through Frames.
func New(cfg *Config, opts ...Option) (*Controller, error) {
	merged := DefaultConfig()
	merged.Merge(cfg)

	c := &Controller{
		publisher:   relay.NewChannel(merged.Relay),
		logger:      slog.Default(),
		observer:    observability.NewSlog(slog.Default()),
		evalTimeout: merged.Eval.Timeout.Std(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.target == nil {
		return nil, errors.New("no target configured")
	}

	return c, nil
}

// Frames returns the consumption side of the default channel publisher, or
// nil when WithPublisher replaced it.
func (c *Controller) Frames() <-chan relay.Frame {
	if ch, ok := c.publisher.(*relay.Channel); ok {
		return ch.Frames()
	}
	return nil
}

// Submit runs one code fragment through the target and classifies the
// outcome. The requestJSON identifies the causing request; its header is
// pushed into the target first so display messages produced during this
// fragment are attributed to it. A malformed request header is logged and
// does not fail the submission.
//
// Crashed is reported as a result state, not an error; the returned error is
// reserved for infrastructure faults (and for submissions after a crash).
func (c *Controller) Submit(ctx context.Context, code, requestJSON string) (*ExecutionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crashed.Load() {
		return nil, ErrSessionCrashed
	}

	seq := c.count.Add(1)
	c.emit(ctx, EventSubmit, slog.LevelInfo, map[string]any{
		"sequence":    seq,
		"code_length": len(code),
	})

	if requestJSON != "" {
		if err := c.target.SetParentHeader(ctx, requestJSON); err != nil {
			if errors.Is(err, target.ErrTargetDead) {
				return c.crash(ctx, err)
			}
			// Parse failures keep the previous context; not fatal.
			c.logger.Warn("parent context not updated", slog.String("error", err.Error()))
		}
	}

	evalCtx := ctx
	if c.evalTimeout > 0 {
		var cancel context.CancelFunc
		evalCtx, cancel = context.WithTimeout(ctx, c.evalTimeout)
		defer cancel()
	}

	outcome, err := c.target.Evaluate(evalCtx, code)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.interrupted(ctx, err)
	case errors.Is(err, target.ErrTargetDead):
		return c.crash(ctx, err)
	default:
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	if outcome.Kind == target.KindDiagnostic {
		return c.failed(ctx, outcome.Diagnostic)
	}

	displays, err := c.relayDisplays(ctx)
	if err != nil {
		return nil, err
	}

	c.emit(ctx, EventSucceeded, slog.LevelInfo, map[string]any{
		"sequence": seq,
		"displays": displays,
	})

	return &ExecutionResult{
		State:    StateSucceeded,
		Value:    outcome.Value,
		Displays: displays,
	}, nil
}

// Interrupt requests interruption of an in-flight evaluation. On success the
// running Submit returns a Failed result and the session stays usable. A
// failed interrupt leaves the target wedged, so the session is declared
// crashed.
func (c *Controller) Interrupt(ctx context.Context) error {
	c.emit(ctx, EventInterrupt, slog.LevelInfo, nil)

	if err := c.target.Interrupt(ctx); err != nil {
		c.crashed.Store(true)
		c.emit(ctx, EventCrashed, slog.LevelWarn, map[string]any{"error": err.Error()})
		return fmt.Errorf("interrupt: %w", err)
	}
	return nil
}

// Crashed reports whether the session has been declared crashed.
func (c *Controller) Crashed() bool {
	return c.crashed.Load()
}

// relayDisplays flushes the target's display queue and relays every message:
// flush reports (address, length) per part, the controller reads those exact
// bytes out of target memory into its own buffers, and each message goes to
// the publisher as one frame, in enqueue order.
func (c *Controller) relayDisplays(ctx context.Context) (int, error) {
	groups, err := c.target.Flush(ctx)
	if err != nil {
		return 0, fmt.Errorf("flush: %w", err)
	}

	relayed := 0
	for _, regions := range groups {
		frame := make(relay.Frame, 0, len(regions))
		for _, region := range regions {
			part, err := c.target.ReadMemory(region.Address, region.Length)
			if err != nil {
				return relayed, fmt.Errorf("read message part at %#x: %w", region.Address, err)
			}
			frame = append(frame, part)
		}

		if err := c.publisher.Publish(ctx, frame); err != nil {
			return relayed, fmt.Errorf("publish display message: %w", err)
		}
		relayed++
	}

	if relayed > 0 {
		c.emit(ctx, EventFlush, slog.LevelDebug, map[string]any{"messages": relayed})
	}

	return relayed, nil
}

// interrupted handles an evaluation that ended by cancellation or timeout.
// A successful interrupt behaves like a diagnostic failure: pending messages
// are dropped and the session stays usable. If the target cannot be
// interrupted the only recovery is a restart.
func (c *Controller) interrupted(ctx context.Context, cause error) (*ExecutionResult, error) {
	cleanup := context.WithoutCancel(ctx)

	if err := c.target.Interrupt(cleanup); err != nil || !c.target.Alive() {
		if err == nil {
			err = cause
		}
		return c.crash(ctx, err)
	}

	return c.failed(ctx, &target.Diagnostic{
		Text: fmt.Sprintf("execution interrupted: %v", cause),
	})
}

func (c *Controller) failed(ctx context.Context, diag *target.Diagnostic) (*ExecutionResult, error) {
	// Nothing queued during a failed attempt may leak into the next one.
	if err := c.target.DiscardPending(context.WithoutCancel(ctx)); err != nil {
		if errors.Is(err, target.ErrTargetDead) {
			return c.crash(ctx, err)
		}
		return nil, fmt.Errorf("discard pending: %w", err)
	}

	c.emit(ctx, EventFailed, slog.LevelInfo, map[string]any{"diagnostic": diag.String()})

	return &ExecutionResult{State: StateFailed, Diagnostic: diag}, nil
}

func (c *Controller) crash(ctx context.Context, cause error) (*ExecutionResult, error) {
	c.crashed.Store(true)

	diag := &target.Diagnostic{Text: "target process is no longer usable; restart the session"}
	data := map[string]any{}
	if cause != nil {
		data["error"] = cause.Error()
	}
	c.emit(ctx, EventCrashed, slog.LevelWarn, data)

	return &ExecutionResult{State: StateCrashed, Diagnostic: diag}, nil
}

func (c *Controller) emit(ctx context.Context, typ observability.EventType, level slog.Level, data map[string]any) {
	c.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    "repl.Controller",
		Data:      data,
	})
}

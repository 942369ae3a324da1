package repl

import "github.com/repl-bridge/kernel/observability"

// Controller event types emitted during the submission lifecycle.
const (
	EventSubmit    observability.EventType = "repl.submit"
	EventSucceeded observability.EventType = "repl.succeeded"
	EventFailed    observability.EventType = "repl.failed"
	EventCrashed   observability.EventType = "repl.crashed"
	EventFlush     observability.EventType = "repl.flush"
	EventInterrupt observability.EventType = "repl.interrupt"
)

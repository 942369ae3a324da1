package observability

import (
	"context"
	"log/slog"
)

// Slog emits events to a slog.Logger. The event type becomes the log message
// and Data keys are flattened as top-level attributes.
type Slog struct {
	logger *slog.Logger
}

// NewSlog creates an observer that emits to the given logger.
func NewSlog(logger *slog.Logger) *Slog {
	return &Slog{logger: logger}
}

func (o *Slog) OnEvent(ctx context.Context, event Event) {
	attrs := make([]slog.Attr, 0, len(event.Data)+1)
	attrs = append(attrs, slog.String("source", event.Source))
	for k, v := range event.Data {
		attrs = append(attrs, slog.Any(k, v))
	}

	o.logger.LogAttrs(ctx, event.Level, string(event.Type), attrs...)
}

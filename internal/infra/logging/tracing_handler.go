package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	context_ "github.com/mkrupp/storefront/internal/infra/context"
)

// TracingHandler wraps another slog.Handler to add request-scoped identifiers from the
// context to all log records: the request id, the OpenTelemetry span if one is recording
// and, once authenticated, the id of the calling user.
type TracingHandler struct {
	h slog.Handler
}

var _ slog.Handler = (*TracingHandler)(nil)

// NewTracingHandler creates a new TracingHandler wrapping the given handler.
func NewTracingHandler(h slog.Handler) *TracingHandler {
	return &TracingHandler{h: h}
}

// Handle implements slog.Handler.
func (h *TracingHandler) Handle(ctx context.Context, r slog.Record) error {
	if traceID, ok := context_.TraceIDFromContext(ctx); ok {
		r.AddAttrs(slog.Group("trace",
			slog.String("id", traceID),
		))
	}

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		r.AddAttrs(slog.Group("span",
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		))
	}

	if userID, ok := context_.UserIDFromContext(ctx); ok {
		r.AddAttrs(slog.Group("auth",
			slog.Int64("user_id", userID),
		))
	}

	//nolint:wrapcheck
	return h.h.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *TracingHandler) WithAttrs(attrs []slog.Attr) Handler {
	return NewTracingHandler(h.h.WithAttrs(attrs))
}

// WithGroup implements slog.Handler.WithGroup.
func (h *TracingHandler) WithGroup(name string) Handler {
	return NewTracingHandler(h.h.WithGroup(name))
}

// Enabled implements slog.Handler.Enabled.
func (h *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}

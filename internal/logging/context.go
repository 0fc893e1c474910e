package logging

import (
	"context"
	"os"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

type traceIDKey struct{}

//nolint:gochecknoglobals // Fallback logger for contexts without one attached.
var (
	defaultOnce   sync.Once
	defaultLogger zerolog.Logger
)

func fallbackLogger() *zerolog.Logger {
	defaultOnce.Do(func() {
		defaultLogger = NewLogger(Config{Level: "info", Format: FormatConsole}, os.Stderr)
	})
	return &defaultLogger
}

// FromContext returns the logger attached to ctx, or a console logger at info level
// when none was attached.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return fallbackLogger()
	}
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return fallbackLogger()
}

// ContextWithTraceID stores a trace id in ctx.
func ContextWithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext returns the trace id in ctx or "".
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(traceIDKey{}).(string)
	return id
}

// GetOrGenerateTraceID returns the trace id already in ctx, or a fresh ULID.
func GetOrGenerateTraceID(ctx context.Context) string {
	if id := TraceIDFromContext(ctx); id != "" {
		return id
	}
	return ulid.Make().String()
}

// traceHook copies the trace id from the event context onto the log line.
type traceHook struct{}

func (traceHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	if id := TraceIDFromContext(e.GetCtx()); id != "" {
		e.Str("trace_id", id)
	}
}

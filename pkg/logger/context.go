package logger

import (
	"context"
	"log/slog"
)

type ctxKey string

const attrsKey ctxKey = "log_attrs"

// With returns a context carrying fields. Every record logged through a
// ContextHandler with that context gets them.
func With(ctx context.Context, fields ...any) context.Context {
	prev := Attrs(ctx)
	attrs := make([]slog.Attr, 0, len(prev)+len(fields)/2)
	attrs = append(attrs, prev...)
	attrs = append(attrs, argsToAttrs(fields)...)
	return context.WithValue(ctx, attrsKey, attrs)
}

// Attrs returns the fields stored on ctx by With.
func Attrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	attrs, _ := ctx.Value(attrsKey).([]slog.Attr)
	return attrs
}

// From returns the process logger bound to the context's fields, for code
// that logs without passing a context.
func From(ctx context.Context) *slog.Logger {
	l := LoggerWrapper()
	attrs := Attrs(ctx)
	if len(attrs) == 0 {
		return l
	}
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	return l.With(args...)
}

// ContextHandler adds the fields stored by With to every record.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := Attrs(ctx); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{Handler: h.Handler.WithGroup(name)}
}

func argsToAttrs(args []any) []slog.Attr {
	var attrs []slog.Attr
	for len(args) > 0 {
		switch key := args[0].(type) {
		case slog.Attr:
			attrs = append(attrs, key)
			args = args[1:]
		case string:
			if len(args) == 1 {
				attrs = append(attrs, slog.String("!BADKEY", key))
				return attrs
			}
			attrs = append(attrs, slog.Any(key, args[1]))
			args = args[2:]
		default:
			attrs = append(attrs, slog.Any("!BADKEY", key))
			args = args[1:]
		}
	}
	return attrs
}

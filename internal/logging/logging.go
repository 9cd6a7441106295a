// Package logging builds the structured slog.Logger used by the dicomflow
// CLI; the dicom package itself does no logging. It is adapted from the
// call sites in jpfielding-dicos.go/cmd/ctl/main.go and
// cmd/ctl/cmd/root.go, which reference a logging.Logger(w, json, level)
// constructor whose defining file was not present in the retrieval pack.
package logging

import (
	"context"
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ctxKey is the context key under which AppendCtx stores extra slog
// attributes, mirroring the teacher's logging.AppendCtx call site.
type ctxKey struct{}

// Logger builds an *slog.Logger writing to w as either JSON or human-
// readable text, at the given minimum level.
func Logger(w io.Writer, json bool, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(&contextHandler{handler})
}

// RotatingLogger builds an *slog.Logger writing JSON lines to a
// size-rotated file, for long-running dicomflow invocations that process
// many files in one process.
func RotatingLogger(path string, maxSizeMB, maxBackups int, level slog.Level) *slog.Logger {
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		Compress:   true,
	}
	return Logger(w, true, level)
}

// AppendCtx returns a copy of ctx carrying extra slog attributes that
// contextHandler appends to every record logged through it.
func AppendCtx(ctx context.Context, attrs ...slog.Attr) context.Context {
	existing, _ := ctx.Value(ctxKey{}).([]slog.Attr)
	return context.WithValue(ctx, ctxKey{}, append(append([]slog.Attr{}, existing...), attrs...))
}

// contextHandler wraps an slog.Handler, injecting attributes stashed in the
// record's context via AppendCtx.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs, ok := ctx.Value(ctxKey{}).([]slog.Attr); ok {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{h.Handler.WithGroup(name)}
}

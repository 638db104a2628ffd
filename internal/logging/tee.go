package logging

import (
	"context"
	"errors"
	"log/slog"
)

// teeHandler fans every record out to the terminal and the log file.
type teeHandler struct {
	terminal slog.Handler
	file     slog.Handler
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return t.terminal.Enabled(ctx, level) || t.file.Enabled(ctx, level)
}

func (t teeHandler) Handle(ctx context.Context, rec slog.Record) error {
	var err error
	if t.terminal.Enabled(ctx, rec.Level) {
		err = t.terminal.Handle(ctx, rec.Clone())
	}
	if t.file.Enabled(ctx, rec.Level) {
		err = errors.Join(err, t.file.Handle(ctx, rec.Clone()))
	}
	return err
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return teeHandler{terminal: t.terminal.WithAttrs(attrs), file: t.file.WithAttrs(attrs)}
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return teeHandler{terminal: t.terminal.WithGroup(name), file: t.file.WithGroup(name)}
}

// Package logging builds the slog logger the harness runs with: a tinted
// terminal handler on stderr, optionally teed into a plain-text log file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// ParseLevel maps a level name to its slog level. Names are
// case-insensitive.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", name)
}

// Options configure New.
type Options struct {
	Level slog.Level

	// File, when non-empty, receives a plain-text copy of every record
	// in addition to the terminal output.
	File string

	// Terminal is the interactive destination; defaults to os.Stderr.
	Terminal io.Writer
}

// New builds the logger. The returned closer flushes and closes the log
// file, if any; call it when the run finishes.
func New(opts Options) (*slog.Logger, func() error, error) {
	terminal := opts.Terminal
	if terminal == nil {
		terminal = os.Stderr
	}
	handler := tint.NewHandler(terminal, &tint.Options{
		Level:      opts.Level,
		TimeFormat: time.TimeOnly,
	})

	closer := func() error { return nil }
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		closer = f.Close
		handler = teeHandler{
			terminal: handler,
			file:     slog.NewTextHandler(f, &slog.HandlerOptions{Level: opts.Level}),
		}
	}
	return slog.New(handler), closer, nil
}

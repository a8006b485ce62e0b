// Package logging builds the session logger: everything down to debug goes
// to the session's .log file, and warnings (or info with verbose) go to
// stderr for the operator.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// New opens path for writing and returns a logger writing to it and to
// stderr. The returned close func must be called when the session ends.
func New(path string, verbose bool) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create log file: %w", err)
	}
	console := slog.LevelWarn
	if verbose {
		console = slog.LevelInfo
	}
	return NewWithWriters(f, os.Stderr, console), f.Close, nil
}

// NewWithWriters logs debug and up to file and console level and up to
// console.
func NewWithWriters(file, console io.Writer, level slog.Level) *slog.Logger {
	return slog.New(fanout{
		slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(console, &slog.HandlerOptions{Level: level}),
	})
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

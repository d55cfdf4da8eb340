package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// Output formats accepted by New.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// ParseFormat validates a format name; "" means FormatJSON.
func ParseFormat(s string) (string, error) {
	switch s {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown log format %q", s)
}

type Options struct {
	Format string
	Level  slog.Level
	// Static attributes attached to every record, e.g. "service", "gridserver".
	Attrs []any
}

type SlogLogger struct {
	l *slog.Logger
}

func NewSlogLogger(l *slog.Logger) *SlogLogger {
	return &SlogLogger{l: l}
}

// New builds a logger writing to w. Unknown formats fall back to JSON.
func New(w io.Writer, opts Options) *SlogLogger {
	ho := &slog.HandlerOptions{Level: opts.Level}

	var h slog.Handler
	if opts.Format == FormatText {
		h = slog.NewTextHandler(w, ho)
	} else {
		h = slog.NewJSONHandler(w, ho)
	}

	l := slog.New(h)
	if len(opts.Attrs) > 0 {
		l = l.With(opts.Attrs...)
	}
	return NewSlogLogger(l)
}

// NewTextLogger is New with FormatText and no static attributes.
func NewTextLogger(w io.Writer, level slog.Level) *SlogLogger {
	return New(w, Options{Format: FormatText, Level: level})
}

func NewNopLogger() *SlogLogger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1})))
}

func (s *SlogLogger) Debug(ctx context.Context, msg string, args ...any) {
	s.l.DebugContext(ctx, msg, args...)
}

func (s *SlogLogger) Info(ctx context.Context, msg string, args ...any) {
	s.l.InfoContext(ctx, msg, args...)
}

func (s *SlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	s.l.WarnContext(ctx, msg, args...)
}

func (s *SlogLogger) Error(ctx context.Context, msg string, args ...any) {
	s.l.ErrorContext(ctx, msg, args...)
}

func (s *SlogLogger) With(args ...any) Logger {
	return &SlogLogger{l: s.l.With(args...)}
}

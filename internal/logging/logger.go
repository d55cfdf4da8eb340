// Package logging defines the structured-logging interface used across
// gridplanner. The only implementation wraps log/slog.
package logging

import "context"

// Logger takes key/value pairs after the message:
//
//	log.Info(ctx, "swap confirmed", "container_id", id, "writes", 3)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that adds args to every record.
	With(args ...any) Logger
}

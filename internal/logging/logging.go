// Package logging provides a narrow Logger capability carried via
// context.Context instead of an ambient package-level global, so every
// call site can see which logger it writes through. The sink and wire
// format are the operator's choice (stdout, a file, a remote
// collector); this package only fixes the shape of the calls.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// Logger is a zerolog.Logger scoped to one component, e.g. "worker",
// "engine", "store".
type Logger struct {
	zl zerolog.Logger
}

// New returns a Logger that writes JSON lines to w, tagged with
// component.
func New(w io.Writer, component string) Logger {
	zl := zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	return Logger{zl: zl}
}

// Discard returns a Logger whose output is dropped, used as the
// zero-value fallback when no Logger was ever attached to a context.
func Discard() Logger {
	return New(io.Discard, "unset")
}

// WithContext attaches l to ctx so downstream calls can retrieve it
// via FromContext without threading it through every function signature.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext retrieves the Logger attached to ctx, or a discarding
// Logger if none was attached.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return Discard()
}

// With returns a child Logger carrying an additional worker_id field,
// the common case of scoping a component logger to one worker.
func (l Logger) With(workerID string) Logger {
	return Logger{zl: l.zl.With().Str("worker_id", workerID).Logger()}
}

func (l Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l Logger) Error() *zerolog.Event { return l.zl.Error() }

// Stdout is the default Logger used by cmd/stressharness before a
// config-selected sink is wired up.
func Stdout(component string) Logger {
	return New(os.Stdout, component)
}

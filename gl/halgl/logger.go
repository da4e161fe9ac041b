package halgl

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger for the hal backend. It is independent of
// gfx.SetLogger. Pass nil to restore the silent default.
//
// Log levels used by halgl:
//   - [slog.LevelDebug]: hal object creation, pipeline cache misses
//   - [slog.LevelInfo]: backend open and close
//   - [slog.LevelWarn]: state the backend cannot express and drops
//   - [slog.LevelError]: failed hal calls, also returned by Context.Err
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current halgl logger.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

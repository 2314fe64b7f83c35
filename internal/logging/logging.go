// Package logging holds the process-wide logger shared by the toolpath
// packages. By default nothing is logged; the command line front end
// installs a real handler when asked to be verbose.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards every record. Enabled returns false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger installs l as the shared logger. Passing nil restores the
// silent default.
//
// Levels in use:
//   - [slog.LevelDebug]: intersection misses and trimming fallbacks
//   - [slog.LevelInfo]: per-layer progress
//   - [slog.LevelWarn]: dropped or skipped input geometry
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
}

// Logger returns the current shared logger. It never returns nil.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

package feedback

import (
	"log/slog"
	"sync/atomic"
)

var pkgLogger atomic.Pointer[slog.Logger]

func init() {
	SetLogger(nil)
}

// SetLogger routes the package's log output to l. The engine is silent
// until this is called; nil makes it silent again.
//
// Frame timings and commands log at debug, start, stop, clear and export at
// info, dropped frames and rejected commands at warn.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	pkgLogger.Store(l)
}

// Logger returns the logger set by SetLogger.
func Logger() *slog.Logger {
	return pkgLogger.Load()
}

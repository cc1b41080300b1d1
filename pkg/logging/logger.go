// Package logging holds the *slog.Logger that the segtopo packages report
// progress through: volume loading and cropping at Info, complex sizes and
// reduction statistics at Debug. Library users get silence until they install
// a logger; the CLI installs one built by New.
package logging

import (
	"io"
	"log/slog"
	"sync/atomic"
)

var current atomic.Pointer[slog.Logger]

var discard = slog.New(slog.DiscardHandler)

// New returns a text logger writing to w. Verbose enables the Debug records
// emitted while building and reducing the complex; otherwise only warnings
// such as a skipped crop or rank cross-check get through.
func New(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})).With("app", "segtopo")
}

// SetLogger installs sl for every segtopo package. A nil sl restores the
// silent default. Safe for concurrent use.
func SetLogger(sl *slog.Logger) {
	if sl == nil {
		sl = discard
	}
	current.Store(sl)
}

// Logger returns the installed logger, or one that drops every record.
func Logger() *slog.Logger {
	if l := current.Load(); l != nil {
		return l
	}
	return discard
}

// Package syncer mirrors local store mutations to the remote store and
// runs the one-time-per-session initial sync. All remote traffic is
// best-effort: the local store is authoritative and its callers never
// wait on, or hear about, the mirror.
package syncer

import (
	"io"
	"log"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Session identifies the signed-in account a propagation or sync run
// acts for. It is always passed explicitly; nothing in this package
// reads ambient auth state.
type Session struct {
	AccountID string
	Email     string
}

// Active reports whether an account is signed in.
func (s Session) Active() bool {
	return s.AccountID != ""
}

// NewLogger builds the sync log. With a path it writes to a
// size-rotated file; otherwise to stderr.
func NewLogger(path string) *log.Logger {
	var w io.Writer = os.Stderr
	if path != "" {
		w = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
		}
	}
	return log.New(w, "[sync] ", log.LstdFlags)
}

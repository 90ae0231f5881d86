package pst

import (
	"io"
	"log/slog"
	"sync/atomic"
)

// discardLogger is the default logger: pstkit stays silent unless a caller
// opts in, matching the teacher's "disabled by default" logging posture.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var activeLogger atomic.Pointer[slog.Logger]

func init() {
	activeLogger.Store(discardLogger)
}

// SetLogger installs l as the package-wide diagnostic logger, used for the
// whitelisted swallow points in spec.md §7 (unknown MessageClass fallback;
// self-parent/duplicate NBT entries skipped during fallback-map
// construction) and for Tolerant-mode recoveries elsewhere. Pass nil to
// restore the default discard logger.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = discardLogger
	}
	activeLogger.Store(l)
}

func logger() *slog.Logger {
	return activeLogger.Load()
}

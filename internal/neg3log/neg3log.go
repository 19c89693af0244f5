// Package neg3log wraps charmbracelet/log into the process-wide leveled
// logger handed to every task at startup. The severity vocabulary mirrors
// the teacher's own DW_COLOR_* distinction (info/error/debug) without the
// hand-rolled color-level global the teacher used: the logger instance
// itself is the thing passed around, never re-read from a package global.
package neg3log

import (
	"os"

	"github.com/charmbracelet/log"
)

// New builds a logger for the named task (e.g. "port", "bringup",
// "authenticator"), writing to stderr at the given level.
func New(task string, level log.Level) *log.Logger {
	l := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
		Prefix:          task,
	})
	return l
}

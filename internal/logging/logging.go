// Package logging wires the endpoint's debug-level verbosity ladder to a
// structured charmbracelet/log logger. debug_level is configuration, not a
// log package global: every component that logs takes a *log.Logger
// passed in at construction rather than reaching for a package-level
// default.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// New builds a logger at the level debugLevel selects:
//
//	0: warn and above (errors)
//	1: info and above (lifecycle events: stream open/close, worker start/stop)
//	2: debug and above (per-packet send/recv tracing, dropped packets)
//	3+: debug, with caller/timestamp reporting turned on for deep tracing
func New(debugLevel int) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "sofi",
		ReportTimestamp: debugLevel >= 3,
		ReportCaller:    debugLevel >= 3,
	})
	logger.SetLevel(levelFor(debugLevel))
	return logger
}

func levelFor(debugLevel int) log.Level {
	switch {
	case debugLevel <= 0:
		return log.WarnLevel
	case debugLevel == 1:
		return log.InfoLevel
	default:
		return log.DebugLevel
	}
}

// Package monitoring provides the engine's package-level diagnostic logger.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// Debugf logs low-traffic diagnostics: octree traversal pruning decisions,
// estimator fallback reasons, kernel partition merges. Defaults to a no-op so
// normal operation stays quiet; enable with SetDebugLogger.
var Debugf func(format string, v ...interface{}) = func(string, ...interface{}) {}

// Warnf logs conditions that don't abort the current operation but that a
// caller tuning the engine should see: statistics-unavailable fallbacks,
// SP-GiST recheck escalations.
var Warnf func(format string, v ...interface{}) = func(format string, v ...interface{}) {
	log.Printf("WARN: "+format, v...)
}

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// SetDebugLogger replaces the debug logger. Passing nil restores the no-op.
func SetDebugLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Debugf = func(string, ...interface{}) {}
		return
	}
	Debugf = f
}

// Package monitoring holds the process-wide diagnostic sink. The engine never
// logs; the entry point and the raster adapter report through here.
package monitoring

import "log"

// Logf receives progress and diagnostic lines. Swap it with SetLogger.
var Logf = log.Printf

// SetLogger routes Logf to f, or drops every line when f is nil.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		f = func(string, ...interface{}) {}
	}
	Logf = f
}

// Warnf logs a line tagged as a warning through Logf.
func Warnf(format string, v ...interface{}) {
	Logf("WARN "+format, v...)
}

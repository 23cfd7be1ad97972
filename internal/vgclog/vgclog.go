// Package vgclog provides the leveled, opt-in logging the collector uses
// for its own diagnostics. It is enabled by setting the VGC_DEBUG
// environment variable, mirroring the GODEBUG convention the rest of the
// toolchain uses for this kind of knob.
package vgclog

import (
	"log"
	"os"
	"sync"
)

var (
	once    sync.Once
	enabled bool
)

func debugEnabled() bool {
	once.Do(func() {
		enabled = os.Getenv("VGC_DEBUG") != ""
	})
	return enabled
}

var std = log.New(os.Stderr, "vgc: ", log.LstdFlags)

// Debug logs a diagnostic message, but only when VGC_DEBUG is set. Hot
// paths (put, resize, mark, sweep) route through here so that a
// production build pays only the cost of the env lookup.
func Debug(format string, args ...any) {
	if !debugEnabled() {
		return
	}
	std.Printf("DEBUG "+format, args...)
}

// Warning logs an advisory condition that is not itself a failure, such
// as Free on a pointer the collector does not track.
func Warning(format string, args ...any) {
	std.Printf("WARN "+format, args...)
}

// Critical logs a condition that indicates the collector's bookkeeping
// cannot be trusted going forward.
func Critical(format string, args ...any) {
	std.Printf("CRIT "+format, args...)
}

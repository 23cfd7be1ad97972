// Package vgctrace is an optional observability layer over a
// gc.Collector: it emits one golang.org/x/net/trace event per
// collection cycle, for a host process that has already wired a
// /debug/requests handler and wants collection pauses visible
// alongside its other request traces. Nothing in package gc depends
// on this package; hosts that don't want the dependency never import
// it.
package vgctrace

import (
	"time"

	"golang.org/x/net/trace"

	"github.com/voidvoxel/gc/gc"
)

// Tracer wraps a *gc.Collector, emitting a trace.Trace span for every
// Collect call routed through it.
type Tracer struct {
	collector *gc.Collector
	family    string
}

// New wraps c, tagging every emitted trace under family (shown as the
// trace family in /debug/requests).
func New(c *gc.Collector, family string) *Tracer {
	return &Tracer{collector: c, family: family}
}

// Collect runs a collection cycle and records it as a traced event,
// returning the bytes reclaimed exactly like gc.Collector.Collect.
func (t *Tracer) Collect() uintptr {
	tr := trace.New(t.family, "collect")
	start := time.Now()
	defer tr.Finish()

	freed := t.collector.Collect()

	tr.LazyPrintf("reclaimed %d bytes in %s", freed, time.Since(start))
	if freed == 0 {
		tr.SetError()
		tr.LazyPrintf("collection cycle reclaimed nothing")
	}
	return freed
}

// Stop stops the wrapped collector and records the final sweep as a
// traced event.
func (t *Tracer) Stop() uintptr {
	tr := trace.New(t.family, "stop")
	defer tr.Finish()

	freed := t.collector.Stop()
	tr.LazyPrintf("final sweep reclaimed %d bytes", freed)
	return freed
}

// Package vgcreg is the per-thread registry glue spec.md §1 calls out
// as out of scope for the collector core: a Collector is owned by
// exactly one goroutine (gc package doc), so a program that wants one
// collector per worker goroutine needs somewhere to keep that mapping.
// This package is that somewhere; gc.Collector itself never touches
// package-level state.
package vgcreg

import (
	"fmt"
	"sync"

	"github.com/voidvoxel/gc/gc"
)

// Handle names one entry in a Registry. Callers typically mint a
// Handle per worker goroutine (an index, a goroutine-local token, a
// request id — whatever the host already uses to distinguish workers).
type Handle uint64

// Registry maps Handles to Collectors, guarded by a RWMutex so readers
// (the common case: a worker fetching its own collector) don't
// serialize against each other.
type Registry struct {
	mu         sync.RWMutex
	collectors map[Handle]*gc.Collector
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{collectors: make(map[Handle]*gc.Collector)}
}

// Put registers c under handle, replacing any previous entry.
func (r *Registry) Put(handle Handle, c *gc.Collector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collectors[handle] = c
}

// Get returns the collector registered under handle, if any.
func (r *Registry) Get(handle Handle) (*gc.Collector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.collectors[handle]
	return c, ok
}

// Remove drops the entry for handle without stopping its collector;
// callers that want Stop's final sweep should call it themselves
// before Remove.
func (r *Registry) Remove(handle Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.collectors, handle)
}

// StopAll calls Stop on every registered collector and empties the
// registry, returning the total bytes reclaimed.
func (r *Registry) StopAll() uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total uintptr
	for h, c := range r.collectors {
		total += c.Stop()
		delete(r.collectors, h)
	}
	return total
}

var (
	defaultMu sync.Mutex
	defaultGC *gc.Collector
)

// SetDefault installs c as the package-level convenience collector,
// mirroring the C original's single VGC_GLOBAL_GC for single-threaded
// programs that want one collector without wiring a Registry
// themselves.
func SetDefault(c *gc.Collector) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultGC = c
}

// Default returns the package-level convenience collector, or an error
// if none has been installed via SetDefault.
func Default() (*gc.Collector, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultGC == nil {
		return nil, fmt.Errorf("vgcreg: no default collector installed; call SetDefault first")
	}
	return defaultGC, nil
}

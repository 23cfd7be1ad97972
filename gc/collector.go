package gc

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/voidvoxel/gc/internal/sysalloc"
	"github.com/voidvoxel/gc/internal/vgclog"
)

// state tracks the lifecycle described in spec §4.5:
// uninitialized -> running <-> paused -> stopped.
type state int32

const (
	stateRunning state = iota
	statePaused
	stateStopped
)

// Collector owns one registry and the system-allocator blocks it has
// handed out. A Collector is owned by exactly one goroutine — stackBase
// and the stack-scanning convention in mark.go are both meaningful only
// relative to that one goroutine's stack, matching spec §5.
type Collector struct {
	reg       *registry
	alloc     sysalloc.Allocator
	stackBase uintptr
	state     atomic.Int32

	stats statsAccumulator
}

// New starts a collector with default tuning, capturing stackBase as
// the oldest end of the stack range future Collect calls will scan.
// Callers typically pass the address of a local variable declared near
// the top of the goroutine they intend this collector to track.
func New(stackBase unsafe.Pointer) *Collector {
	return NewWithOptions(stackBase, Options{})
}

// NewWithOptions starts a collector with explicit registry tuning; see
// Options for the defaulting rules.
func NewWithOptions(stackBase unsafe.Pointer, opts Options) *Collector {
	opts = opts.withDefaults()
	c := &Collector{
		reg:       newRegistry(opts.MinCapacity, opts.InitialCapacity, opts.SweepFactor, opts.DownsizeFactor, opts.UpsizeFactor),
		alloc:     sysalloc.Default(),
		stackBase: uintptr(stackBase),
	}
	c.state.Store(int32(stateRunning))
	vgclog.Debug("collector started (stackBase=%#x)", c.stackBase)
	return c
}

// Enable resumes collection-on-allocation after Disable.
func (c *Collector) Enable() { c.state.Store(int32(stateRunning)) }

// Disable turns the collector into a pure tracker: allocation never
// triggers or retries a collection, though an explicit Collect call
// still runs one.
func (c *Collector) Disable() { c.state.Store(int32(statePaused)) }

func (c *Collector) disabled() bool {
	return state(c.state.Load()) != stateRunning
}

// Stop unroots every root, runs one final sweep (now reclaiming
// everything tracked, since nothing remains marked and nothing remains
// rooted), and returns the total bytes reclaimed. The collector must
// not be used again afterward.
func (c *Collector) Stop() uintptr {
	c.unrootAll()
	freed := c.sweep()
	c.state.Store(int32(stateStopped))
	vgclog.Debug("collector stopped, %d bytes reclaimed", freed)
	return freed
}

// Collect runs one mark-then-sweep cycle and returns the number of
// bytes reclaimed. It runs even while the collector is disabled —
// disabling only suppresses the *automatic* trigger inside the
// allocation path.
func (c *Collector) Collect() uintptr {
	c.mark()
	return c.sweep()
}

// allocate is the unified entry point behind Malloc/Calloc and their
// finalizer/rooted variants, matching vgc_allocate's contract exactly:
// a policy-driven collection when over the sweep threshold, a single
// forced retry on allocator failure, and metadata-OOM cleanup of the
// just-obtained block.
func (c *Collector) allocate(count, size uintptr, fin Finalizer) (unsafe.Pointer, error) {
	if c.reg.needsSweep() && !c.disabled() {
		freed := c.Collect()
		vgclog.Debug("sweep threshold reached, reclaimed %d bytes before allocation", freed)
	}

	allocSize := size
	if count > 0 {
		allocSize = count * size
	}

	ptr, err := c.alloc.Alloc(allocSize)
	if err != nil && !c.disabled() {
		vgclog.Debug("allocation failed, forcing collection and retrying once: %v", err)
		c.Collect()
		ptr, err = c.alloc.Alloc(allocSize)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}

	rec := c.reg.put(uintptr(ptr), allocSize, fin)
	if rec == nil {
		// Metadata allocation failed: fail cleanly rather than leak an
		// untracked block.
		_ = c.alloc.Free(ptr)
		return nil, ErrOutOfMemory
	}
	c.stats.recordAlloc(allocSize)
	vgclog.Debug("allocated %d bytes at %#x", allocSize, rec.base)
	return rec.ptr(), nil
}

// Malloc allocates an untracked-by-finalizer block of size bytes.
func (c *Collector) Malloc(size uintptr) (unsafe.Pointer, error) {
	return c.allocate(0, size, nil)
}

// MallocWithFinalizer allocates size bytes, invoking fin exactly once
// just before the block is reclaimed.
func (c *Collector) MallocWithFinalizer(size uintptr, fin Finalizer) (unsafe.Pointer, error) {
	return c.allocate(0, size, fin)
}

// Calloc allocates count*size zero-initialized bytes.
func (c *Collector) Calloc(count, size uintptr) (unsafe.Pointer, error) {
	return c.allocate(count, size, nil)
}

// CallocWithFinalizer allocates count*size zero-initialized bytes with
// a finalizer.
func (c *Collector) CallocWithFinalizer(count, size uintptr, fin Finalizer) (unsafe.Pointer, error) {
	return c.allocate(count, size, fin)
}

// MallocStatic allocates size bytes and immediately roots the result,
// equivalent to Malloc followed by MakeRoot.
func (c *Collector) MallocStatic(size uintptr, fin Finalizer) (unsafe.Pointer, error) {
	ptr, err := c.allocate(0, size, fin)
	if err != nil {
		return nil, err
	}
	c.MakeRoot(ptr)
	return ptr, nil
}

// Realloc resizes the block at ptr to size bytes. ptr == nil behaves
// like Malloc. If ptr is non-nil and not tracked, ErrInvalidArgument is
// returned and ptr is left untouched.
func (c *Collector) Realloc(ptr unsafe.Pointer, size uintptr) (unsafe.Pointer, error) {
	var old *record
	if ptr != nil {
		old = c.reg.get(uintptr(ptr))
		if old == nil {
			return nil, ErrInvalidArgument
		}
	}

	newPtr, moved, err := c.alloc.Realloc(ptr, size)
	if err != nil {
		// Old block remains valid and tracked.
		return nil, fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}

	if ptr == nil {
		rec := c.reg.put(uintptr(newPtr), size, nil)
		c.stats.recordAlloc(size)
		return rec.ptr(), nil
	}

	if !moved {
		old.size = size
		return old.ptr(), nil
	}

	fin := old.finalizer
	oldSize := old.size
	c.reg.remove(uintptr(ptr), true)
	rec := c.reg.put(uintptr(newPtr), size, fin)
	// The old address is superseded, not handed back to the caller, so
	// it counts as freed the same as an explicit Free would, and the
	// new address counts as a fresh allocation — consistent with
	// BytesAllocated/BytesFreed both being cumulative totals rather
	// than a live-bytes gauge.
	c.stats.recordFree(oldSize)
	c.stats.recordAlloc(size)
	return rec.ptr(), nil
}

// Free releases the block at ptr, invoking its finalizer first if one
// is set. Freeing a pointer the collector does not track is ignored
// with an advisory log line — this is what lets a pointer stored
// inside a managed block coincidentally equal a system address without
// crashing the collector.
func (c *Collector) Free(ptr unsafe.Pointer) {
	rec := c.reg.get(uintptr(ptr))
	if rec == nil {
		vgclog.Warning("free of untracked pointer %p", ptr)
		return
	}
	if rec.finalizer != nil {
		rec.finalizer(rec.ptr())
	}
	c.reg.remove(rec.base, true)
	if err := c.alloc.Free(ptr); err != nil {
		vgclog.Critical("free %p: %v", ptr, err)
	}
	c.stats.recordFree(rec.size)
}

// Strdup allocates len(s)+1 bytes and copies s plus a trailing NUL into
// it, via the normal allocation path (same error modes as Malloc).
func (c *Collector) Strdup(s string) (unsafe.Pointer, error) {
	n := uintptr(len(s)) + 1
	ptr, err := c.Malloc(n)
	if err != nil {
		return nil, err
	}
	dst := unsafe.Slice((*byte)(ptr), n)
	copy(dst, s)
	dst[len(s)] = 0
	return ptr, nil
}

// MakeRoot marks the block at ptr as unconditionally reachable,
// regardless of whether anything on the stack still points to it. A
// pointer not currently tracked is silently ignored.
func (c *Collector) MakeRoot(ptr unsafe.Pointer) {
	if rec := c.reg.get(uintptr(ptr)); rec != nil {
		rec.setRoot()
	}
}

func (c *Collector) unrootAll() {
	c.reg.forEach(func(r *record) {
		r.clearRoot()
	})
}

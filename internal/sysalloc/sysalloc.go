// Package sysalloc is the collector's system allocator boundary. It hands
// out blocks of raw, non-Go-GC-visible memory and grows/shrinks/releases
// them on request, the same role malloc/realloc/free play for the
// original C collector this package's callers are modeled on.
//
// On Unix builds, blocks returned here are anonymous mappings outside
// the reach of the host Go runtime's own collector, so the runtime
// never scans or reclaims them on its own terms. The non-Unix fallback
// backs blocks with ordinary Go byte slices and keeps each one
// referenced from its own map until Free, so the host collector does
// not reclaim a block the conservative collector still tracks.
package sysalloc

import "unsafe"

// Allocator is the system-allocator contract the collector's registry
// and allocation path are built against. Exactly one implementation is
// active per process, selected at build time by platform.
type Allocator interface {
	// Alloc returns a new, zero-filled block of at least size bytes
	// (and at least one byte when size is 0).
	Alloc(size uintptr) (unsafe.Pointer, error)
	// Realloc resizes the block at ptr to newSize bytes, preserving the
	// overlapping prefix of its contents. It reports whether the
	// returned pointer differs from ptr.
	Realloc(ptr unsafe.Pointer, newSize uintptr) (unsafe.Pointer, bool, error)
	// Free releases the block at ptr. ptr must have come from Alloc or
	// Realloc on the same Allocator.
	Free(ptr unsafe.Pointer) error
}

// Default returns the process-wide system allocator.
func Default() Allocator {
	return defaultAllocator
}

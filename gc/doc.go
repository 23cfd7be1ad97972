// Package gc implements a conservative, stop-the-world, mark-and-sweep
// garbage collector embedded inside a host Go program.
//
// A Collector tracks blocks it hands out through Malloc/Calloc/Realloc
// in a chained hash table keyed by block address (registry.go), and
// discovers live blocks by scanning rooted records and the calling
// goroutine's stack for word-aligned and unaligned candidate pointers
// (mark.go). Unreachable blocks are reclaimed on Collect, their
// finalizer invoked exactly once beforehand (sweep.go).
//
// On Unix builds, tracked blocks are backed by memory the host Go
// runtime's own collector does not manage (see internal/sysalloc; the
// non-Unix fallback uses Go byte slices that the allocator keeps
// referenced until they are freed), which is what
// makes the byte-wise conservative scan in mark.go sound: nothing here
// competes with, or needs to cooperate with, the host GC's own
// reachability analysis.
//
// A Collector is owned by exactly one goroutine. It is not safe for
// concurrent use; see package vgcreg for a registry of one Collector
// per caller-supplied handle.
package gc

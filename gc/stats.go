package gc

import "sync"

// Stats reports cumulative collector activity, in the spirit of
// runtime.MemStats: a snapshot a host process can poll or publish
// without touching the collector's internals directly.
type Stats struct {
	// LiveBlocks is the number of distinct tracked blocks right now.
	LiveBlocks uintptr
	// RegistryCapacity is the current number of hash table buckets.
	RegistryCapacity uintptr
	// BytesAllocated is the cumulative number of bytes ever handed out.
	BytesAllocated uint64
	// BytesFreed is the cumulative number of bytes released, whether by
	// Free or by a sweep.
	BytesFreed uint64
	// Sweeps is the number of completed sweeps: one per Collect, plus
	// the final sweep run by Stop.
	Sweeps uint64
	// LastSweepBytes is the number of bytes the most recent sweep
	// reclaimed.
	LastSweepBytes uintptr
}

// statsAccumulator holds the mutable counters backing Stats; it is
// embedded in Collector rather than exported directly so callers only
// ever see an immutable snapshot via ReadStats.
type statsAccumulator struct {
	mu             sync.Mutex
	bytesAllocated uint64
	bytesFreed     uint64
	sweeps         uint64
	lastSweepBytes uintptr
}

func (s *statsAccumulator) recordAlloc(n uintptr) {
	s.mu.Lock()
	s.bytesAllocated += uint64(n)
	s.mu.Unlock()
}

func (s *statsAccumulator) recordFree(n uintptr) {
	s.mu.Lock()
	s.bytesFreed += uint64(n)
	s.mu.Unlock()
}

func (s *statsAccumulator) recordSweep(reclaimed uintptr) {
	s.mu.Lock()
	s.bytesFreed += uint64(reclaimed)
	s.sweeps++
	s.lastSweepBytes = reclaimed
	s.mu.Unlock()
}

// ReadStats populates s with a consistent snapshot of the collector's
// current counters.
func (c *Collector) ReadStats(s *Stats) {
	c.stats.mu.Lock()
	s.BytesAllocated = c.stats.bytesAllocated
	s.BytesFreed = c.stats.bytesFreed
	s.Sweeps = c.stats.sweeps
	s.LastSweepBytes = c.stats.lastSweepBytes
	c.stats.mu.Unlock()

	s.LiveBlocks = c.reg.size
	s.RegistryCapacity = c.reg.capacity
}

//go:build unix

package sysalloc

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

var defaultAllocator Allocator = &mmapAllocator{}

var pageSize = uintptr(os.Getpagesize())

func roundToPage(size uintptr) uintptr {
	if size == 0 {
		size = 1
	}
	return (size + pageSize - 1) &^ (pageSize - 1)
}

// mmapAllocator backs every block with its own anonymous, private
// mapping. One mapping per block is wasteful next to a real malloc's
// small-object arenas, but it is the simplest thing that lets Free and
// Realloc reason about exact block boundaries without a side header
// sitting in front of memory the collector's byte-stride scanner will
// walk — grounded on the single-region buddy allocator in the example
// pack, simplified to one mapping per request since the collector (not
// this package) already amortizes allocation cost via its sweep policy.
type mmapAllocator struct {
	mu    sync.Mutex
	sizes map[uintptr]uintptr // block base -> mapped length
}

func (a *mmapAllocator) track(base unsafe.Pointer, mapped uintptr) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sizes == nil {
		a.sizes = make(map[uintptr]uintptr)
	}
	a.sizes[uintptr(base)] = mapped
}

func (a *mmapAllocator) untrack(base unsafe.Pointer) (uintptr, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	mapped, ok := a.sizes[uintptr(base)]
	if ok {
		delete(a.sizes, uintptr(base))
	}
	return mapped, ok
}

func (a *mmapAllocator) Alloc(size uintptr) (unsafe.Pointer, error) {
	mapped := roundToPage(size)
	data, err := unix.Mmap(-1, 0, int(mapped), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("sysalloc: mmap %d bytes: %w", mapped, err)
	}
	base := unsafe.Pointer(&data[0])
	a.track(base, mapped)
	return base, nil
}

func (a *mmapAllocator) Realloc(ptr unsafe.Pointer, newSize uintptr) (unsafe.Pointer, bool, error) {
	if ptr == nil {
		p, err := a.Alloc(newSize)
		return p, true, err
	}
	oldMapped, ok := a.untrack(ptr)
	if !ok {
		return nil, false, fmt.Errorf("sysalloc: realloc of untracked block %p", ptr)
	}
	newMapped := roundToPage(newSize)
	if newMapped == oldMapped {
		a.track(ptr, oldMapped)
		return ptr, false, nil
	}
	oldSlice := unsafe.Slice((*byte)(ptr), oldMapped)
	moved, err := unix.Mremap(oldSlice, int(newMapped), unix.MREMAP_MAYMOVE)
	if err != nil {
		// Restore bookkeeping for the still-valid original block.
		a.track(ptr, oldMapped)
		return nil, false, fmt.Errorf("sysalloc: mremap %d -> %d bytes: %w", oldMapped, newMapped, err)
	}
	base := unsafe.Pointer(&moved[0])
	a.track(base, newMapped)
	return base, base != ptr, nil
}

func (a *mmapAllocator) Free(ptr unsafe.Pointer) error {
	mapped, ok := a.untrack(ptr)
	if !ok {
		return fmt.Errorf("sysalloc: free of untracked block %p", ptr)
	}
	data := unsafe.Slice((*byte)(ptr), mapped)
	if err := unix.Munmap(data); err != nil {
		return fmt.Errorf("sysalloc: munmap %d bytes: %w", mapped, err)
	}
	return nil
}

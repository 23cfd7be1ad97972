// Package vgcarray is a managed dynamic array built entirely out of
// gc.Collector's public allocation surface. It is explicitly out of
// scope for the collector core (spec.md §1): it consumes allocation
// the same way any other caller would and has no special access to the
// registry, the mark phase, or the sweep phase.
package vgcarray

import (
	"fmt"
	"unsafe"

	"github.com/voidvoxel/gc/gc"
)

// Array is a managed, fixed-length array of elemSize-byte slots.
type Array struct {
	collector *gc.Collector
	data      unsafe.Pointer
	elemSize  uintptr
	count     uintptr
}

// New allocates an array of count slots, each elemSize bytes, backed by
// a single tracked block from c. fin, if non-nil, runs once on the
// payload block when it becomes unreachable or is freed.
func New(c *gc.Collector, elemSize, count uintptr, fin gc.Finalizer) (*Array, error) {
	if elemSize == 0 || count == 0 {
		return nil, fmt.Errorf("vgcarray: elemSize and count must both be > 0")
	}
	data, err := c.CallocWithFinalizer(count, elemSize, fin)
	if err != nil {
		return nil, err
	}
	return &Array{collector: c, data: data, elemSize: elemSize, count: count}, nil
}

// ElemSize is the size, in bytes, of one slot.
func (a *Array) ElemSize() uintptr { return a.elemSize }

// Len is the number of slots the array holds.
func (a *Array) Len() uintptr { return a.count }

// Data is the address of the first slot.
func (a *Array) Data() unsafe.Pointer { return a.data }

// At returns a pointer to the slot at index i. It panics if i is out of
// range, matching the out-of-bounds contract of a Go slice index.
func (a *Array) At(i uintptr) unsafe.Pointer {
	if i >= a.count {
		panic(fmt.Sprintf("vgcarray: index %d out of range [0, %d)", i, a.count))
	}
	return unsafe.Pointer(uintptr(a.data) + i*a.elemSize)
}

// Free releases the array's backing block early, rather than waiting
// for it to become unreachable.
func (a *Array) Free() {
	a.collector.Free(a.data)
}

// Package vgcbuf is a managed byte buffer built on gc.Collector's
// public allocation surface, out of scope for the collector core the
// same way vgcarray is (spec.md §1). It exposes the buffer's raw
// tracked block through the standard io.Reader/io.Writer contracts
// instead of a Go slice, since a Go slice over unmanaged memory would
// let the host GC's escape analysis and the collector's conservative
// scanner disagree about who owns the bytes.
package vgcbuf

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/voidvoxel/gc/gc"
)

// Buffer is a managed, fixed-capacity region of bytes with independent
// read and write cursors, in the spirit of bytes.Buffer but addressed
// through a tracked block rather than a Go slice.
type Buffer struct {
	collector *gc.Collector
	addr      unsafe.Pointer
	length    uintptr
	readAt    uintptr
	writeAt   uintptr
}

// New allocates a buffer of size bytes.
func New(c *gc.Collector, size uintptr) (*Buffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("vgcbuf: size must be > 0")
	}
	addr, err := c.Malloc(size)
	if err != nil {
		return nil, err
	}
	return &Buffer{collector: c, addr: addr, length: size}, nil
}

// Addr is the address of the first byte.
func (b *Buffer) Addr() unsafe.Pointer { return b.addr }

// Len is the buffer's fixed capacity, in bytes.
func (b *Buffer) Len() uintptr { return b.length }

func (b *Buffer) bytes() []byte {
	return unsafe.Slice((*byte)(b.addr), b.length)
}

// Write appends p starting at the current write cursor, returning
// io.ErrShortWrite if p does not fully fit in the remaining capacity.
func (b *Buffer) Write(p []byte) (int, error) {
	remaining := b.length - b.writeAt
	n := uintptr(len(p))
	if n > remaining {
		n = remaining
	}
	copy(b.bytes()[b.writeAt:b.writeAt+n], p[:n])
	b.writeAt += n
	if n < uintptr(len(p)) {
		return int(n), io.ErrShortWrite
	}
	return int(n), nil
}

// Read copies from the current read cursor into p, returning io.EOF
// once the write cursor has been reached.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.readAt >= b.writeAt {
		return 0, io.EOF
	}
	available := b.writeAt - b.readAt
	n := uintptr(len(p))
	if n > available {
		n = available
	}
	copy(p[:n], b.bytes()[b.readAt:b.readAt+n])
	b.readAt += n
	return int(n), nil
}

// Free releases the buffer's backing block early.
func (b *Buffer) Free() {
	b.collector.Free(b.addr)
}

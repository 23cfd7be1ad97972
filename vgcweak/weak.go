// Package vgcweak models a "weak reference" outside the collector,
// since gc.Collector has no weak-pointer concept of its own
// (spec.md §9): storing a non-pointer token alongside a lookup, rather
// than a raw pointer, inside a managed block. A raw pointer stored
// inside a managed block is always a strong reference to the
// conservative scanner in package gc — there is no way to mark a
// field "don't count this" — so anything that must not keep a block
// alive has to avoid looking like a pointer in the first place.
package vgcweak

import (
	"encoding/binary"
	"sync"
	"unsafe"

	"golang.org/x/crypto/blake2b"
)

// Token is an opaque, non-pointer-bearing stand-in for an address. It
// is safe to store inside a block gc.Collector tracks: its bytes never
// equal a valid block address, so the conservative scanner cannot
// mistake it for a pointer.
type Token [16]byte

// TokenFor derives the Token for ptr. Equal addresses always derive
// equal Tokens; the derivation is one-way (no pointer is recoverable
// from the Token's bytes alone — only Registry.Resolve, consulted
// separately, can answer "what does this Token currently refer to").
func TokenFor(ptr unsafe.Pointer) Token {
	var addrBytes [8]byte
	binary.LittleEndian.PutUint64(addrBytes[:], uint64(uintptr(ptr)))
	sum := blake2b.Sum256(addrBytes[:])
	var t Token
	copy(t[:], sum[:16])
	return t
}

// Registry resolves Tokens back to the addresses recorded by Track,
// best-effort: it does not consult the collector, so an entry stays
// resolvable until Forget removes it, even after its block has been
// reclaimed.
type Registry struct {
	mu   sync.RWMutex
	live map[Token]unsafe.Pointer
}

// NewRegistry returns an empty weak-reference registry.
func NewRegistry() *Registry {
	return &Registry{live: make(map[Token]unsafe.Pointer)}
}

// Track records ptr under its derived Token so Resolve can find it
// later. Callers are responsible for calling Forget (typically from a
// gc.Finalizer) once the underlying block goes away, or Resolve will
// keep returning a dangling address.
func (r *Registry) Track(ptr unsafe.Pointer) Token {
	t := TokenFor(ptr)
	r.mu.Lock()
	r.live[t] = ptr
	r.mu.Unlock()
	return t
}

// Forget removes the entry for t, if any.
func (r *Registry) Forget(t Token) {
	r.mu.Lock()
	delete(r.live, t)
	r.mu.Unlock()
}

// Resolve returns the address last tracked under t, if it is still
// present.
func (r *Registry) Resolve(t Token) (unsafe.Pointer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ptr, ok := r.live[t]
	return ptr, ok
}

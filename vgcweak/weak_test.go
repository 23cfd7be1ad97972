package vgcweak

import (
	"testing"
	"unsafe"
)

func TestTokenForIsDeterministic(t *testing.T) {
	var x int
	ptr := unsafe.Pointer(&x)

	a := TokenFor(ptr)
	b := TokenFor(ptr)
	if a != b {
		t.Fatalf("TokenFor produced different tokens for the same address")
	}

	var y int
	other := TokenFor(unsafe.Pointer(&y))
	if a == other {
		t.Fatalf("TokenFor produced equal tokens for distinct addresses")
	}
}

func TestRegistryTrackForgetResolve(t *testing.T) {
	var x int
	ptr := unsafe.Pointer(&x)

	r := NewRegistry()
	tok := r.Track(ptr)

	got, ok := r.Resolve(tok)
	if !ok || got != ptr {
		t.Fatalf("Resolve = %v, %v, want %v, true", got, ok, ptr)
	}

	r.Forget(tok)
	if _, ok := r.Resolve(tok); ok {
		t.Fatalf("expected Resolve to fail after Forget")
	}
}

func TestRegistryResolveUnknownTokenFails(t *testing.T) {
	r := NewRegistry()
	var zero Token
	if _, ok := r.Resolve(zero); ok {
		t.Fatalf("expected Resolve of an untracked token to fail")
	}
}

package vgcreg

import (
	"testing"
	"unsafe"

	"github.com/voidvoxel/gc/gc"
)

func TestRegistryPutGetRemove(t *testing.T) {
	var anchor int
	c := gc.New(unsafe.Pointer(&anchor))
	defer c.Stop()

	r := NewRegistry()
	r.Put(1, c)

	got, ok := r.Get(1)
	if !ok || got != c {
		t.Fatalf("Get(1) = %v, %v", got, ok)
	}

	r.Remove(1)
	if _, ok := r.Get(1); ok {
		t.Fatalf("expected Get(1) to fail after Remove")
	}
}

func TestDefaultRequiresSetDefault(t *testing.T) {
	if _, err := Default(); err == nil {
		t.Fatalf("expected an error before SetDefault is called")
	}

	var anchor int
	c := gc.New(unsafe.Pointer(&anchor))
	defer c.Stop()

	SetDefault(c)
	got, err := Default()
	if err != nil || got != c {
		t.Fatalf("Default() = %v, %v", got, err)
	}
}

func TestStopAllReclaimsAndEmpties(t *testing.T) {
	var a1, a2 int
	c1 := gc.New(unsafe.Pointer(&a1))
	c2 := gc.New(unsafe.Pointer(&a2))

	if _, err := c1.Malloc(32); err != nil {
		t.Fatalf("malloc c1: %v", err)
	}
	if _, err := c2.Malloc(64); err != nil {
		t.Fatalf("malloc c2: %v", err)
	}

	r := NewRegistry()
	r.Put(1, c1)
	r.Put(2, c2)

	freed := r.StopAll()
	if freed < 96 {
		t.Fatalf("freed = %d, want >= 96", freed)
	}
	if _, ok := r.Get(1); ok {
		t.Fatalf("expected registry to be empty after StopAll")
	}
}

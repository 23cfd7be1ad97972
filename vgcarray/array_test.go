package vgcarray

import (
	"testing"
	"unsafe"

	"github.com/voidvoxel/gc/gc"
)

func newTestCollector(t *testing.T) *gc.Collector {
	t.Helper()
	var anchor int
	return gc.New(unsafe.Pointer(&anchor))
}

func TestArrayAtRoundTrips(t *testing.T) {
	c := newTestCollector(t)
	defer c.Stop()

	a, err := New(c, 8, 4, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Len() != 4 || a.ElemSize() != 8 {
		t.Fatalf("unexpected array shape: len=%d elemSize=%d", a.Len(), a.ElemSize())
	}

	*(*int64)(a.At(2)) = 42
	if got := *(*int64)(a.At(2)); got != 42 {
		t.Fatalf("At(2) = %d, want 42", got)
	}
}

func TestArrayAtOutOfRangePanics(t *testing.T) {
	c := newTestCollector(t)
	defer c.Stop()

	a, err := New(c, 8, 4, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for out-of-range index")
		}
	}()
	a.At(4)
}

package gc

import (
	"testing"
	"unsafe"
)

func TestSweepUnmarksSurvivors(t *testing.T) {
	c := newTestCollector(t)
	ptr, err := c.MallocStatic(16, nil)
	if err != nil {
		t.Fatalf("MallocStatic: %v", err)
	}

	c.Collect()
	rec := c.reg.get(uintptr(ptr))
	if rec == nil {
		t.Fatalf("root should have survived")
	}
	if rec.isMarked() {
		t.Fatalf("sweep must clear MARK on survivors")
	}

	// A second cycle must still find it reachable via ROOT.
	c.Collect()
	if c.reg.get(uintptr(ptr)) == nil {
		t.Fatalf("root should survive repeated cycles")
	}
}

func TestSweepReclaimsAtMostOnce(t *testing.T) {
	c := newTestCollector(t)
	calls := 0
	_, err := c.MallocWithFinalizer(8, func(p unsafe.Pointer) { calls++ })
	if err != nil {
		t.Fatalf("malloc: %v", err)
	}

	c.Collect()
	c.Collect()

	if calls != 1 {
		t.Fatalf("finalizer invoked %d times, want exactly 1", calls)
	}
}

func TestStopReclaimsEverything(t *testing.T) {
	c := newTestCollector(t)
	n := 0
	for i := 0; i < 50; i++ {
		if _, err := c.MallocWithFinalizer(8, func(p unsafe.Pointer) { n++ }); err != nil {
			t.Fatalf("malloc %d: %v", i, err)
		}
	}
	if _, err := c.MallocStatic(8, func(p unsafe.Pointer) { n++ }); err != nil {
		t.Fatalf("malloc_static: %v", err)
	}

	freed := c.Stop()
	if freed == 0 {
		t.Fatalf("expected bytes freed > 0")
	}
	if n != 51 {
		t.Fatalf("finalizers invoked = %d, want 51 (including rooted block)", n)
	}
	if c.reg.size != 0 {
		t.Fatalf("registry size after Stop = %d, want 0", c.reg.size)
	}
}

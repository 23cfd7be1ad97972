package gc

import (
	"unsafe"

	"github.com/voidvoxel/gc/internal/vgclog"
)

const wordSize = unsafe.Sizeof(uintptr(0))

// mark runs both sub-phases described in spec §4.3: root marking over
// every record tagged ROOT, then a conservative scan of the stack
// range between the current call's frame and stackBase.
func (c *Collector) mark() {
	vgclog.Debug("mark: starting")
	c.markRoots()

	// The C original spills callee-saved registers onto the stack via
	// setjmp immediately before scanning, so a pointer a register alone
	// is holding becomes visible to the byte-wise stack walk. Go gives
	// no portable way to force that spill, and nothing here attempts
	// it: spill is never written, and its address only marks the top
	// of the range scanned below. A pointer held only in a register is
	// not seen by this scan; callers holding a candidate the automatic
	// scan might miss can supplement it via MarkFromLocals.
	var spill [8]unsafe.Pointer
	sp := uintptr(unsafe.Pointer(&spill))

	c.markStackRange(sp, c.stackBase)
}

// markRoots walks every bucket chain and marks the blocks tagged ROOT.
func (c *Collector) markRoots() {
	c.reg.forEach(func(r *record) {
		if r.isRoot() {
			c.markReachable(r.base)
		}
	})
}

// markStackRange conservatively scans the byte range between top and
// base (in either order — Go gives no portable way to assert stack
// growth direction without runtime internals) for word-aligned and
// unaligned candidate pointers, exactly as spec §4.3 describes for the
// C stack. This reads raw memory belonging to the calling goroutine's
// own stack and is sound only because the scan happens synchronously,
// within one call, with no further stack growth in between — the same
// caveat the spec documents for the conservative technique in general
// (§9).
func (c *Collector) markStackRange(top, base uintptr) {
	lo, hi := top, base
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi < wordSize {
		return
	}
	for addr := lo; addr+wordSize <= hi; addr++ {
		candidate := *(*uintptr)(unsafe.Pointer(addr))
		c.markReachable(candidate)
	}
}

// MarkFromLocals marks every tracked block whose base address appears
// in words. It supplements the automatic stack scan in Collect for
// callers who want to guarantee a particular set of local pointers
// survive a cycle regardless of where the Go compiler happened to keep
// them — the conservative-GC equivalent of an explicit root set for
// one cycle, without the permanence of MakeRoot.
func (c *Collector) MarkFromLocals(words []uintptr) {
	for _, w := range words {
		c.markReachable(w)
	}
}

// markReachable marks the block at candidate live, if candidate
// actually names a tracked block and is not marked yet, then
// recursively walks its payload byte-wise (not word-wise: the
// collector cannot assume user layout, so it must not assume natural
// pointer alignment either) looking for further candidates.
func (c *Collector) markReachable(candidate uintptr) {
	rec := c.reg.get(candidate)
	if rec == nil || rec.isMarked() {
		return
	}
	rec.setMark()
	vgclog.Debug("marked %#x (%d bytes)", rec.base, rec.size)

	if rec.size < wordSize {
		return
	}
	for off := uintptr(0); off+wordSize <= rec.size; off++ {
		word := *(*uintptr)(unsafe.Pointer(rec.base + off))
		c.markReachable(word)
	}
}

package gc

import "github.com/voidvoxel/gc/internal/vgclog"

// registry is the chained hash table of records, keyed by block base
// address. It mirrors the allocation map from the C original: capacity
// is always kept prime, load factor drives resizing, and sweepLimit is
// a snapshot recomputed only when the table resizes (spec invariant:
// it must NOT be recomputed on every insert, so the sweep trigger fires
// once per epoch rather than on every allocation near the boundary).
type registry struct {
	buckets      []*record
	capacity     uintptr
	size         uintptr
	minCapacity  uintptr
	upsizeFactor float64
	downsizeFactor float64
	sweepFactor  float64
	sweepLimit   uintptr
}

// ptrShift is the right-shift applied to a candidate address before
// hashing, matching the minimum alignment the system allocator hands
// out (see internal/sysalloc: mmap'd regions are page-aligned, but
// sub-block addresses inside a realloc'd region only need to assume
// pointer-width alignment here; shifting by 3 discards the low bits
// that never vary across live block addresses on 64-bit hosts).
const ptrShift = 3

func isPrime(n uintptr) bool {
	if n <= 3 {
		return n > 1
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	for i := uintptr(5); i*i <= n; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}

func nextPrime(n uintptr) uintptr {
	if n < 2 {
		n = 2
	}
	for !isPrime(n) {
		n++
	}
	return n
}

func hashAddr(addr uintptr) uintptr {
	return addr >> ptrShift
}

func newRegistry(minCapacity, initialCapacity uintptr, sweepFactor, downsizeFactor, upsizeFactor float64) *registry {
	minCapacity = nextPrime(minCapacity)
	capacity := nextPrime(initialCapacity)
	if capacity < minCapacity {
		capacity = minCapacity
	}
	reg := &registry{
		buckets:        make([]*record, capacity),
		capacity:       capacity,
		minCapacity:    minCapacity,
		sweepFactor:    sweepFactor,
		downsizeFactor: downsizeFactor,
		upsizeFactor:   upsizeFactor,
	}
	reg.sweepLimit = uintptr(float64(capacity) * sweepFactor)
	vgclog.Debug("created registry (cap=%d, size=%d)", reg.capacity, reg.size)
	return reg
}

func (reg *registry) loadFactor() float64 {
	return float64(reg.size) / float64(reg.capacity)
}

func (reg *registry) bucketIndex(addr uintptr) uintptr {
	return hashAddr(addr) % reg.capacity
}

// get returns the record for addr, or nil if the address is not
// tracked.
func (reg *registry) get(addr uintptr) *record {
	for r := reg.buckets[reg.bucketIndex(addr)]; r != nil; r = r.next {
		if r.base == addr {
			return r
		}
	}
	return nil
}

// put inserts a new record for addr, or replaces the existing one in
// place (same chain position) if addr is already tracked. The
// replace-in-place path is relied on by exactly one caller in this
// package: the allocation path's handling of a system allocator
// address reuse after an untracked free (spec §9 open question (c));
// it must not be used to "refresh" a record for any other purpose.
func (reg *registry) put(addr, size uintptr, fin Finalizer) *record {
	idx := reg.bucketIndex(addr)
	r := newRecord(addr, size, fin)

	var prev *record
	for cur := reg.buckets[idx]; cur != nil; cur = cur.next {
		if cur.base == addr {
			r.next = cur.next
			if prev == nil {
				reg.buckets[idx] = r
			} else {
				prev.next = r
			}
			vgclog.Debug("registry upsert at bucket %d", idx)
			return r
		}
		prev = cur
	}

	r.next = reg.buckets[idx]
	reg.buckets[idx] = r
	reg.size++
	vgclog.Debug("registry insert at bucket %d (size=%d)", idx, reg.size)

	if reg.resizeToFit() {
		return reg.get(addr)
	}
	return r
}

// remove unlinks and discards the record for addr, if present. When
// allowResize is false the caller is iterating the table itself (the
// sweep pass) and a resize mid-iteration would invalidate that walk.
func (reg *registry) remove(addr uintptr, allowResize bool) {
	idx := reg.bucketIndex(addr)
	var prev *record
	cur := reg.buckets[idx]
	for cur != nil {
		next := cur.next
		if cur.base == addr {
			if prev == nil {
				reg.buckets[idx] = next
			} else {
				prev.next = next
			}
			reg.size--
		} else {
			prev = cur
		}
		cur = next
	}
	if allowResize {
		reg.resizeToFit()
	}
}

// resize rehashes every record into a freshly allocated bucket array
// of newCapacity (rounded up to the next prime), and recomputes
// sweepLimit from the current size. A no-op when newCapacity would not
// exceed minCapacity.
func (reg *registry) resize(newCapacity uintptr) bool {
	if newCapacity <= reg.minCapacity {
		return false
	}
	newCapacity = nextPrime(newCapacity)
	vgclog.Debug("resizing registry (cap=%d, size=%d) -> (cap=%d)", reg.capacity, reg.size, newCapacity)

	resized := make([]*record, newCapacity)
	for _, head := range reg.buckets {
		for r := head; r != nil; {
			next := r.next
			idx := hashAddr(r.base) % newCapacity
			r.next = resized[idx]
			resized[idx] = r
			r = next
		}
	}
	reg.buckets = resized
	reg.capacity = newCapacity
	reg.sweepLimit = reg.size + uintptr(reg.sweepFactor*float64(reg.capacity-reg.size))
	return true
}

// resizeToFit upsizes past 2x capacity when the load factor exceeds
// upsizeFactor, or downsizes past capacity/2 when it falls below
// downsizeFactor (bounded below by minCapacity either way).
func (reg *registry) resizeToFit() bool {
	lf := reg.loadFactor()
	if lf > reg.upsizeFactor {
		vgclog.Debug("load factor %.3f > %.3f: upsizing", lf, reg.upsizeFactor)
		return reg.resize(nextPrime(reg.capacity * 2))
	}
	if lf < reg.downsizeFactor {
		vgclog.Debug("load factor %.3f < %.3f: downsizing", lf, reg.downsizeFactor)
		return reg.resize(nextPrime(reg.capacity / 2))
	}
	return false
}

// needsSweep reports whether the registry is over its precomputed
// sweep threshold and the next allocation should trigger a collection.
func (reg *registry) needsSweep() bool {
	return reg.size > reg.sweepLimit
}

// forEach walks every record currently in the table. fn must not
// mutate reg.buckets; callers that need to remove records while
// iterating do so via remove(addr, false) and advance using a
// previously captured next pointer, as the sweep pass does.
func (reg *registry) forEach(fn func(*record)) {
	for _, head := range reg.buckets {
		for r := head; r != nil; r = r.next {
			fn(r)
		}
	}
}

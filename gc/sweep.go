package gc

import (
	"unsafe"

	"github.com/voidvoxel/gc/internal/vgclog"
)

// sweep walks every bucket chain; marked records are unmarked and kept,
// unmarked records are unreachable and reclaimed (finalizer invoked
// before the block is released, record removed without allowing a
// resize mid-walk — spec §4.4). resizeToFit runs once at the end so
// the registry can shrink after a sweep frees many records.
func (c *Collector) sweep() uintptr {
	vgclog.Debug("sweep: starting")
	var reclaimed uintptr

	for _, head := range c.reg.buckets {
		cur := head
		for cur != nil {
			next := cur.next
			if cur.isMarked() {
				cur.clearMark()
			} else {
				vgclog.Debug("reclaiming %#x (%d bytes)", cur.base, cur.size)
				reclaimed += cur.size
				if cur.finalizer != nil {
					cur.finalizer(unsafe.Pointer(cur.base))
				}
				if err := c.alloc.Free(unsafe.Pointer(cur.base)); err != nil {
					vgclog.Critical("sweep free %#x: %v", cur.base, err)
				}
				c.reg.remove(cur.base, false)
			}
			cur = next
		}
	}

	c.reg.resizeToFit()
	c.stats.recordSweep(reclaimed)
	vgclog.Debug("sweep: reclaimed %d bytes", reclaimed)
	return reclaimed
}

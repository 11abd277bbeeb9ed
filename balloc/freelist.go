// Copyright 2024 The bfalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package balloc

// NumClasses is the number of segregated free lists.
const NumClasses = 10

// classCeiling[i] is the largest block size that still belongs to class i,
// for every class but the last. Class NumClasses-1 catches everything
// larger than classCeiling's last entry. This is the same ladder as
// original_source/mm.c's sizeClass and the ten-bucket FLTPowersOf2 table
// in lldb/flt.go, just fixed instead of pluggable.
var classCeiling = [NumClasses - 1]uint32{16, 32, 64, 128, 256, 512, 1024, 2048, 4096}

// classOf returns the size class (0..NumClasses-1) a block of the given
// total size belongs to.
func classOf(size uint32) int {
	for i, ceil := range classCeiling {
		if size <= ceil {
			return i
		}
	}
	return NumClasses - 1
}

// headSlot returns the address of class c's list-head slot within the
// free-list index array that prefixes the heap.
func headSlot(c int) Addr { return Addr(c * linkSize) }

func (h *Heap) classHead(c int) Addr {
	return getAddr(h.mem, headSlot(c))
}

func (h *Heap) setClassHead(c int, v Addr) {
	putAddr(h.mem, headSlot(c), v)
}

// pushFront inserts the free block bp at the head of its size class's
// list. bp must not already be linked anywhere. Grounded on
// original_source/mm.c's addFirst and lldb/falloc.go's link/makeFree.
func (h *Heap) pushFront(bp Addr, size uint32) {
	c := classOf(size)
	old := h.classHead(c)
	setFreeNext(h.mem, bp, old)
	setFreePrev(h.mem, bp, 0)
	if old != 0 {
		setFreePrev(h.mem, old, bp)
	}
	h.setClassHead(c, bp)
}

// unlink splices the free block bp out of its size class's list. Grounded
// on original_source/mm.c's remove_from_list and lldb/falloc.go's unlink.
func (h *Heap) unlink(bp Addr, size uint32) {
	c := classOf(size)
	prev := freePrev(h.mem, bp)
	next := freeNext(h.mem, bp)
	if prev != 0 {
		setFreeNext(h.mem, prev, next)
	} else {
		h.setClassHead(c, next)
	}
	if next != 0 {
		setFreePrev(h.mem, next, prev)
	}
}

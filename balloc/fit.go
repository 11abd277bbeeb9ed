// Copyright 2024 The bfalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package balloc

// bestFitStop bounds the number of best-fit improvements findFit will make
// within a single size class before returning early. Grounded on
// original_source/mm.c's STOP constant (find_fit's "#define STOP 50").
const bestFitStop = 50

// findFit searches the segregated free lists for a block able to hold
// asize bytes, per spec.md §4.3: exact best-fit within a class, bounded by
// bestFitStop improvements, and first-fit across classes (the first class
// that yields any acceptable block wins, even if a later class would have
// yielded a tighter one). It returns the null Addr if no list has a fit.
func (h *Heap) findFit(asize uint32) Addr {
	for c := classOf(asize); c < NumClasses; c++ {
		var best Addr
		var bestSize uint32
		improvements := 0

		for bp := h.classHead(c); bp != 0; bp = freeNext(h.mem, bp) {
			size := blockSize(h.mem, bp)
			if size < asize {
				continue
			}

			if best == 0 {
				best, bestSize = bp, size
				continue
			}

			if size <= bestSize {
				best, bestSize = bp, size
				improvements++
				if improvements >= bestFitStop {
					return best
				}
			}
		}

		if best != 0 {
			return best
		}
	}

	return 0
}

// place carves asize bytes out of the free block bp, which must already be
// known to hold at least that many, per spec.md §4.4: split off a
// remainder free block when one of legal size would be left over,
// otherwise consume bp whole. Returns bp, now marked allocated.
func (h *Heap) place(bp Addr, asize uint32) Addr {
	c := blockSize(h.mem, bp)
	h.unlink(bp, c)

	if c-asize >= MinSize {
		setBlock(h.mem, bp, asize, true)

		rem := bp + Addr(asize)
		remSize := c - asize
		setBlock(h.mem, rem, remSize, false)
		h.pushFront(rem, remSize)
	} else {
		setBlock(h.mem, bp, c, true)
	}

	return bp
}

// Copyright 2024 The bfalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package balloc

import (
	"fmt"
	"io"
	"os"
)

// Stats summarizes one Check pass. Adapted from lldb.AllocStats
// (TotalAtoms/AllocBytes/AllocAtoms/FreeAtoms/Relocations) to this domain's
// vocabulary of blocks rather than atoms; there is no relocation concept
// here since this allocator never compacts.
type Stats struct {
	TotalBlocks int    // blocks strictly between the prologue and epilogue
	FreeBlocks  int
	AllocBlocks int
	AllocBytes  uint64 // sum of payload bytes (block size minus overhead) of allocated blocks
	FreeBytes   uint64 // sum of payload bytes of free blocks
}

// Check walks the heap and verifies every invariant in spec.md §3.4,
// matching original_source/mm.c's checkheap(0) and, at a higher level,
// lldb.Allocator.Verify's scan-then-cross-check structure: first the
// physical block chain is walked end to end (prologue/epilogue shape,
// alignment, header/footer agreement, no two adjacent free blocks), then
// every free list is walked and cross-checked against what the chain walk
// found (right size class, links resolve to blocks actually seen, and the
// total free-list count matches the chain's free-block count). It returns
// the first ErrCorrupt encountered, or populated Stats on success.
func (h *Heap) Check(verbose bool) (*Stats, error) {
	if verbose {
		return h.checkTo(os.Stderr)
	}
	return h.checkTo(io.Discard)
}

// CheckVerbose is Check(true) with the diagnostic stream under the
// caller's control, mirroring lldb.Allocator.Verify's caller-supplied log
// sink rather than a hardcoded destination.
func (h *Heap) CheckVerbose(w io.Writer) (*Stats, error) {
	return h.checkTo(w)
}

func (h *Heap) checkTo(w io.Writer) (*Stats, error) {
	if !h.ready {
		return &Stats{}, nil
	}

	_, hi := h.p.Bounds()

	if !isAllocated(h.mem, h.prologue) || blockSize(h.mem, h.prologue) != overhead {
		return nil, &ErrCorrupt{Off: h.prologue, What: "prologue is not an allocated 8-byte sentinel"}
	}

	stats := &Stats{}
	seen := map[Addr]bool{}
	prevFree := false

	bp := nextBlock(h.mem, h.prologue)
	for {
		size := blockSize(h.mem, bp)
		alloc := isAllocated(h.mem, bp)

		if size == 0 {
			if !alloc {
				return nil, &ErrCorrupt{Off: bp, What: "epilogue is not marked allocated"}
			}
			if hdrAddr(bp)+wordSize != hi {
				return nil, &ErrCorrupt{Off: bp, What: "epilogue does not sit at the heap's high end"}
			}
			break
		}

		if bp%Alignment != 0 {
			return nil, &ErrCorrupt{Off: bp, What: "payload base is not 8-aligned"}
		}

		hdr := getWord(h.mem, hdrAddr(bp))
		ftr := getWord(h.mem, ftrAddr(h.mem, bp))
		if hdr != ftr {
			return nil, &ErrCorrupt{Off: bp, What: "header and footer disagree"}
		}

		if !alloc && prevFree {
			return nil, &ErrCorrupt{Off: bp, What: "two physically adjacent free blocks"}
		}

		fmt.Fprintf(w, "block@%#x size=%d alloc=%v\n", bp, size, alloc)

		seen[bp] = true
		stats.TotalBlocks++
		if alloc {
			stats.AllocBlocks++
			stats.AllocBytes += uint64(size - overhead)
		} else {
			stats.FreeBlocks++
			stats.FreeBytes += uint64(size - overhead)
		}

		prevFree = !alloc
		bp = nextBlock(h.mem, bp)
	}

	listTotal := 0
	for c := 0; c < NumClasses; c++ {
		for bp := h.classHead(c); bp != 0; bp = freeNext(h.mem, bp) {
			if bp >= hi {
				return nil, &ErrCorrupt{Off: bp, What: "free-list link falls outside heap bounds"}
			}
			if !seen[bp] {
				return nil, &ErrCorrupt{Off: bp, What: "free-list entry does not correspond to any block in the chain"}
			}
			if isAllocated(h.mem, bp) {
				return nil, &ErrCorrupt{Off: bp, What: "free-list entry is marked allocated"}
			}
			if got := classOf(blockSize(h.mem, bp)); got != c {
				return nil, &ErrCorrupt{Off: bp, What: fmt.Sprintf("block belongs in class %d, found in class %d", got, c)}
			}
			if next := freeNext(h.mem, bp); next != 0 && freePrev(h.mem, next) != bp {
				return nil, &ErrCorrupt{Off: bp, What: "next.prev does not point back"}
			}

			listTotal++
		}
	}

	if listTotal != stats.FreeBlocks {
		return nil, &ErrCorrupt{Off: h.prologue, What: fmt.Sprintf("free-list total %d does not match %d free blocks found in the chain", listTotal, stats.FreeBlocks)}
	}

	return stats, nil
}

// Check runs a consistency check against the default heap, printing
// per-block diagnostics to stderr when verbose is set.
func Check(verbose bool) (*Stats, error) { return defaultHeap.Check(verbose) }

// Copyright 2024 The bfalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package balloc

import "github.com/cznic/mathutil"

// Heap is a single allocator instance bound to a Provider. Most callers use
// the package-level convenience functions below instead, which operate on a
// lazily-initialized default Heap backed by a MemProvider — mirroring
// original_source/mm.c's single implicit global heap, while still taking
// the collaborator as a constructor argument the way lldb.NewAllocator(f
// Filer, flt FLT) does, rather than baking one choice of Provider in.
type Heap struct {
	p        Provider
	mem      []byte
	prologue Addr
	ready    bool
}

// New returns a Heap that will draw its storage from p once Init is called.
func New(p Provider) *Heap {
	return &Heap{p: p}
}

func (h *Heap) refresh() {
	h.mem = h.p.Bytes()
}

// grow asks the Provider for n more bytes and refreshes the backing slice,
// matching the heap provider's grow(n_bytes) primitive (spec.md §6): it
// returns the base address of the newly appended region.
func (h *Heap) grow(n int) (Addr, error) {
	base, err := h.p.Grow(n)
	if err != nil {
		return 0, err
	}

	h.refresh()
	return base, nil
}

const indexBytes = NumClasses * linkSize // 80: the free-list head array

// Init lays out the free-list index array, the prologue and epilogue
// sentinels, and the heap's first free block. Calling it again once the
// heap is ready is a no-op, matching original_source/mm.c's note that
// operations lazily init if Init was never called explicitly.
func (h *Heap) Init() error {
	if h.ready {
		return nil
	}

	if _, err := h.grow(indexBytes); err != nil {
		return err
	}

	base, err := h.grow(4 * wordSize) // pad + prologue header + prologue footer + epilogue
	if err != nil {
		return err
	}

	bp := base + 2*wordSize
	setBlock(h.mem, bp, overhead, true) // prologue: header+footer only, no payload, size 8
	putWord(h.mem, bp+Addr(overhead)-wordSize, pack(0, true)) // epilogue

	h.prologue = bp

	if _, err := h.extendHeap(Chunk / wordSize); err != nil {
		return err
	}

	h.ready = true
	return nil
}

// Allocate reserves n bytes and returns the new block's payload base, or
// the null Addr if n is zero. An error is returned only when the heap
// provider refuses to grow; on error, the heap's prior state is intact.
func (h *Heap) Allocate(n uint32) (Addr, error) {
	if err := h.Init(); err != nil {
		return 0, err
	}

	if n == 0 {
		return 0, nil
	}

	asize := adjustedSize(n)

	if bp := h.findFit(asize); bp != 0 {
		return h.place(bp, asize), nil
	}

	grown := asize
	if grown < Chunk {
		grown = Chunk
	}

	bp, err := h.extendHeap(grown / wordSize)
	if err != nil {
		return 0, err
	}

	// extendHeap may have coalesced the new region with a pre-existing
	// trailing free block, so the block it hands back can be larger than
	// grown — never smaller, so it always satisfies asize.
	return h.place(bp, asize), nil
}

// validHandle reports whether p could plausibly be a payload base
// currently inside the dynamic block region, mirroring
// lldb.Allocator.Free's "handle <= 0 || handle > maxHandle" guard: p must
// land strictly between the prologue and the heap's current high end.
// p == 0 (the null handle) is deliberately not "valid" here — callers
// that accept null as a no-op check for it before calling validHandle.
func (h *Heap) validHandle(p Addr) bool {
	_, hi := h.p.Bounds()
	return p > h.prologue && p < hi
}

// Free releases the block at p. p being the null Addr is a no-op; any
// other p outside the heap's current bounds is rejected with
// ErrInvalidArg rather than trusted blindly, matching
// lldb.Allocator.Free's own bounds check on handle.
func (h *Heap) Free(p Addr) error {
	if p == 0 {
		return nil
	}

	if !h.validHandle(p) {
		return &ErrInvalidArg{"Heap.Free: payload base out of heap bounds", p}
	}

	size := blockSize(h.mem, p)
	setBlock(h.mem, p, size, false)
	h.coalesce(p)
	return nil
}

// Resize changes the block at p to hold n bytes, per spec.md §4.7. When
// the block is already large enough it stays in place: if the leftover
// would be a legal block it is split off and freed, otherwise p is
// returned unchanged. A block that is too small is replaced by allocating
// fresh, copying the payload, and freeing p.
func (h *Heap) Resize(p Addr, n uint32) (Addr, error) {
	if n == 0 {
		return 0, h.Free(p)
	}

	if p == 0 {
		return h.Allocate(n)
	}

	if !h.validHandle(p) {
		return 0, &ErrInvalidArg{"Heap.Resize: payload base out of heap bounds", p}
	}

	old := blockSize(h.mem, p)
	asize := adjustedSize(n)

	if asize <= old {
		if old-asize < MinSize {
			return p, nil
		}

		setBlock(h.mem, p, asize, true)

		rem := p + Addr(asize)
		remSize := old - asize
		setBlock(h.mem, rem, remSize, true) // mark allocated so Free's coalesce path applies uniformly
		h.Free(rem)

		return p, nil
	}

	q, err := h.Allocate(n)
	if err != nil {
		return 0, err
	}

	// min(n, old payload capacity), the same clamp lldb/memfiler.go and
	// lldb/xact.go reach for via mathutil.Min rather than an inline branch.
	copyLen := Addr(mathutil.Min(int(n), int(old-overhead)))

	copy(h.mem[q:q+copyLen], h.mem[p:p+copyLen])
	h.Free(p)

	return q, nil
}

// Calloc allocates room for k elements of n bytes each and zeroes it.
func (h *Heap) Calloc(k, n uint32) (Addr, error) {
	bp, err := h.Allocate(k * n)
	if err != nil || bp == 0 {
		return bp, err
	}

	size := blockSize(h.mem, bp)
	clear(h.mem[bp : bp+Addr(size-overhead)])

	return bp, nil
}

// defaultHeap is the heap the package-level convenience functions below
// operate on, matching original_source/mm.c's single implicit global heap
// and spec.md §6's public API table.
var defaultHeap = New(NewMemProvider())

// Init lazily prepares the default heap. Callers only need this if they
// want init failures surfaced before the first Allocate/Calloc call.
func Init() error { return defaultHeap.Init() }

// Allocate reserves n bytes on the default heap.
func Allocate(n uint32) (Addr, error) { return defaultHeap.Allocate(n) }

// Free releases a block previously returned by Allocate/Resize/Calloc on
// the default heap.
func Free(p Addr) error { return defaultHeap.Free(p) }

// Resize changes the size of a block previously returned by
// Allocate/Resize/Calloc on the default heap.
func Resize(p Addr, n uint32) (Addr, error) { return defaultHeap.Resize(p, n) }

// Calloc allocates and zeroes room for k elements of n bytes each on the
// default heap.
func Calloc(k, n uint32) (Addr, error) { return defaultHeap.Calloc(k, n) }

// Copyright 2024 The bfalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package balloc

import "encoding/binary"

// Addr is a byte offset into a Provider's backing storage. The zero value
// denotes "no block" — it can never be a valid payload base because the
// heap prefix (the free-list head array and the prologue) always occupies
// the lowest addresses. This mirrors the handle-zero-means-nil convention
// of github.com/cznic/exp/lldb's Allocator, whose block handles are
// likewise never valid at offset zero.
type Addr uint64

const (
	wordSize  = 4  // header/footer word width, in bytes
	linkSize  = 8  // a free-list link field, in bytes
	overhead  = 2 * wordSize
	// MinSize is the smallest legal block: header + two links + footer.
	MinSize = overhead + 2*linkSize // 24
	// Alignment all payload bases satisfy.
	Alignment = 8
	// Chunk is the default number of bytes the heap is extended by when
	// no free block satisfies a request.
	Chunk = 168

	allocFlag = 0x1
	sizeMask  = ^uint32(0x7)
)

// pack combines a size and an allocated flag into a header/footer word.
func pack(size uint32, allocated bool) uint32 {
	w := size & sizeMask
	if allocated {
		w |= allocFlag
	}
	return w
}

func sizeOf(w uint32) uint32 { return w & sizeMask }
func allocOf(w uint32) bool  { return w&allocFlag != 0 }

// getWord reads the 4-byte word at byte offset a. No bounds check is
// performed; callers must stay within [lo, hi) as reported by the
// Provider. Bounds checking belongs to the consistency checker, not here.
func getWord(mem []byte, a Addr) uint32 {
	return binary.LittleEndian.Uint32(mem[a : a+wordSize])
}

func putWord(mem []byte, a Addr, v uint32) {
	binary.LittleEndian.PutUint32(mem[a:a+wordSize], v)
}

func getAddr(mem []byte, a Addr) Addr {
	return Addr(binary.LittleEndian.Uint64(mem[a : a+linkSize]))
}

func putAddr(mem []byte, a Addr, v Addr) {
	binary.LittleEndian.PutUint64(mem[a:a+linkSize], uint64(v))
}

// hdrAddr returns the address of bp's header word.
func hdrAddr(bp Addr) Addr { return bp - wordSize }

// ftrAddr returns the address of bp's footer word. Requires the header to
// already carry the block's size.
func ftrAddr(mem []byte, bp Addr) Addr {
	return bp + Addr(sizeOf(getWord(mem, hdrAddr(bp)))) - overhead
}

// blockSize returns the total size (header..footer inclusive) of the
// block based at bp, read from its header.
func blockSize(mem []byte, bp Addr) uint32 {
	return sizeOf(getWord(mem, hdrAddr(bp)))
}

// isAllocated reports whether the block based at bp is marked allocated.
func isAllocated(mem []byte, bp Addr) bool {
	return allocOf(getWord(mem, hdrAddr(bp)))
}

// setBlock writes matching header and footer words for the block based at
// bp, given its (possibly new) size and allocated flag.
func setBlock(mem []byte, bp Addr, size uint32, allocated bool) {
	w := pack(size, allocated)
	putWord(mem, hdrAddr(bp), w)
	putWord(mem, bp+Addr(size)-overhead, w)
}

// nextBlock returns the payload base of the block physically following bp.
func nextBlock(mem []byte, bp Addr) Addr {
	return bp + Addr(blockSize(mem, bp))
}

// prevBlock returns the payload base of the block physically preceding
// bp, recovered from the previous block's footer at bp-8.
func prevBlock(mem []byte, bp Addr) Addr {
	prevSize := sizeOf(getWord(mem, bp-2*wordSize))
	return bp - Addr(prevSize)
}

// Free-block link accessors. The 16 bytes these read and write are valid
// only while the block's header alloc-bit is clear; once a block is
// allocated those same bytes belong to the client's payload.

func freeNext(mem []byte, bp Addr) Addr       { return getAddr(mem, bp) }
func setFreeNext(mem []byte, bp Addr, v Addr) { putAddr(mem, bp, v) }
func freePrev(mem []byte, bp Addr) Addr       { return getAddr(mem, bp+linkSize) }
func setFreePrev(mem []byte, bp Addr, v Addr) { putAddr(mem, bp+linkSize, v) }

// alignUp rounds n up to the next multiple of Alignment.
func alignUp(n uint32) uint32 {
	return (n + Alignment - 1) &^ (Alignment - 1)
}

// adjustedSize computes the total block size needed to store n payload
// bytes: room for header+footer, rounded up to alignment, never less than
// MinSize.
func adjustedSize(n uint32) uint32 {
	asize := alignUp(n) + overhead
	if asize < MinSize {
		asize = MinSize
	}
	return asize
}

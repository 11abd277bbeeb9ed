// Copyright 2024 The bfalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package balloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPackRoundTrip(t *testing.T) {
	cases := []struct {
		size  uint32
		alloc bool
	}{
		{24, true},
		{24, false},
		{168, true},
		{4096, false},
	}

	for _, c := range cases {
		w := pack(c.size, c.alloc)
		require.Equal(t, c.size, sizeOf(w))
		require.Equal(t, c.alloc, allocOf(w))
	}
}

func TestAlignUp(t *testing.T) {
	cases := map[uint32]uint32{0: 0, 1: 8, 7: 8, 8: 8, 9: 16, 16: 16, 17: 24}
	for in, want := range cases {
		require.Equal(t, want, alignUp(in), "alignUp(%d)", in)
	}
}

func TestAdjustedSize(t *testing.T) {
	require.Equal(t, uint32(MinSize), adjustedSize(0))
	require.Equal(t, uint32(MinSize), adjustedSize(1))
	require.Equal(t, uint32(24), adjustedSize(16))
	require.Equal(t, uint32(32), adjustedSize(17))
}

func TestWordAndAddrCodec(t *testing.T) {
	mem := make([]byte, 64)

	putWord(mem, 8, 0xdeadbeef&uint32(sizeMask)|1)
	got := getWord(mem, 8)
	require.Equal(t, uint32(0xdeadbeef)&sizeMask|1, got)

	putAddr(mem, 16, Addr(0x1122334455))
	require.Equal(t, Addr(0x1122334455), getAddr(mem, 16))
}

// layOutBlock writes a standalone block (header+payload+footer) at bp in
// mem, useful for exercising block.go's navigation helpers in isolation
// from a full Heap.
func layOutBlock(mem []byte, bp Addr, size uint32, alloc bool) {
	setBlock(mem, bp, size, alloc)
}

func TestNeighborNavigation(t *testing.T) {
	mem := make([]byte, 256)

	// Three adjacent blocks starting at bp0 = 8 (so bp0-8 stays in bounds
	// for prevBlock's footer read).
	bp0 := Addr(8)
	layOutBlock(mem, bp0, 32, true)
	bp1 := nextBlock(mem, bp0)
	layOutBlock(mem, bp1, 40, false)
	bp2 := nextBlock(mem, bp1)
	layOutBlock(mem, bp2, 24, true)

	require.Equal(t, bp0+32, bp1)
	require.Equal(t, bp1+40, bp2)
	require.Equal(t, bp0, prevBlock(mem, bp1))
	require.Equal(t, bp1, prevBlock(mem, bp2))
	require.Equal(t, uint32(32), blockSize(mem, bp0))
	require.True(t, isAllocated(mem, bp0))
	require.False(t, isAllocated(mem, bp1))
}

func TestFreeLinks(t *testing.T) {
	mem := make([]byte, 64)
	setFreeNext(mem, 8, Addr(40))
	setFreePrev(mem, 8, Addr(0))
	require.Equal(t, Addr(40), freeNext(mem, 8))
	require.Equal(t, Addr(0), freePrev(mem, 8))
}

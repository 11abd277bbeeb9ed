// Copyright 2024 The bfalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package balloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCheckOnFreshHeapReportsOneFreeChunk(t *testing.T) {
	h := newTestHeap(t)

	stats, err := h.Check(false)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalBlocks)
	require.Equal(t, 0, stats.AllocBlocks)
	require.Equal(t, 1, stats.FreeBlocks)
	require.Equal(t, uint64(Chunk-overhead), stats.FreeBytes)
}

func TestCheckTracksAllocatedAndFreeByteTotals(t *testing.T) {
	h := newTestHeap(t)

	p, err := h.Allocate(16)
	require.NoError(t, err)

	stats, err := h.Check(false)
	require.NoError(t, err)
	require.Equal(t, 2, stats.TotalBlocks)
	require.Equal(t, 1, stats.AllocBlocks)
	require.Equal(t, 1, stats.FreeBlocks)
	require.Equal(t, uint64(24-overhead), stats.AllocBytes)

	require.NoError(t, h.Free(p))
	stats, err = h.Check(false)
	require.NoError(t, err)
	require.Equal(t, 1, stats.TotalBlocks)
	require.Equal(t, 0, stats.AllocBlocks)
}

func TestCheckDetectsHeaderFooterMismatch(t *testing.T) {
	h := newTestHeap(t)

	p, err := h.Allocate(32)
	require.NoError(t, err)

	putWord(h.mem, ftrAddr(h.mem, p), pack(blockSize(h.mem, p)+8, true))

	_, err = h.Check(false)
	require.Error(t, err)
	var corrupt *ErrCorrupt
	require.ErrorAs(t, err, &corrupt)
}

func TestCheckDetectsTwoAdjacentFreeBlocks(t *testing.T) {
	h := newTestHeap(t)

	p, err := h.Allocate(32)
	require.NoError(t, err)
	q, err := h.Allocate(32)
	require.NoError(t, err)

	// Forcibly mark both free in place without going through Free or
	// coalesce, to simulate a coalescer bug and confirm Check catches the
	// violation it exists to guard against.
	size1 := blockSize(h.mem, p)
	size2 := blockSize(h.mem, q)
	setBlock(h.mem, p, size1, false)
	setBlock(h.mem, q, size2, false)

	_, err = h.Check(false)
	require.Error(t, err)
}

func TestCheckDetectsFreeListCountMismatch(t *testing.T) {
	h := newTestHeap(t)

	p, err := h.Allocate(32)
	require.NoError(t, err)
	require.NoError(t, h.Free(p))

	// Corrupt the class head to point nowhere, without fixing up the
	// chain, so the free-list total no longer matches the chain's count.
	size := blockSize(h.mem, p)
	h.setClassHead(classOf(size), 0)

	_, err = h.Check(false)
	require.Error(t, err)
}

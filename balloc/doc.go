// Copyright 2024 The bfalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package balloc implements a general-purpose dynamic storage allocator
// over a contiguous, monotonically-growing byte heap.
//
// The heap is a linear sequence of 8-byte aligned blocks, each bracketed by
// a boundary tag: a header word before the payload and a footer word after
// it, both encoding the block's total size and an allocated flag. Free
// blocks are additionally threaded onto one of ten segregated, doubly
// linked LIFO free lists, indexed by size class; the links live in the
// first 16 bytes of the free block's own payload, since a free block has
// no client data to protect.
//
// Allocation rounds the request up to a legal block size, searches the
// free lists with a bounded approximation of best-fit (see fit.go), and
// falls back to extending the heap through a Provider when no class has a
// fit. Freeing a block immediately coalesces it with any free physical
// neighbors (see coalesce.go), so at most one free block ever separates
// two allocated blocks.
//
// The Provider interface is the allocator's only external collaborator:
// it grows the backing storage and reports its current bounds. Two
// implementations are provided: an in-process one (provider_mem.go) and
// one backed by a real anonymous memory mapping (provider_mmap.go).
package balloc

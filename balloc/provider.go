// Copyright 2024 The bfalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package balloc

// Provider is the allocator's sole external collaborator: it grows the
// heap's backing storage on request and reports the heap's current
// bounds. It plays the role github.com/cznic/exp/lldb's Filer interface
// plays for that package's Allocator, reduced to the monotonic-growth,
// in-process-memory subset this spec calls for (no ReadAt/WriteAt
// indirection, no truncation, no transactions — the block layout
// primitives in block.go address Bytes() directly for speed, exactly as
// spec.md §4.1 requires).
type Provider interface {
	// Grow appends n bytes to the high end of the heap and returns the
	// base address of the newly appended region (the heap's high end
	// before growth). Growth is monotonic; Grow never shrinks the heap.
	// It returns an error if the request cannot be satisfied (out of
	// memory).
	Grow(n int) (Addr, error)

	// Bounds reports the current [lo, hi) extent of the heap.
	Bounds() (lo, hi Addr)

	// Bytes exposes the provider's backing storage for direct, unchecked
	// access by the block-layout primitives. A successful Grow may
	// reallocate this slice, so callers must re-fetch Bytes after every
	// Grow call rather than caching it across one.
	Bytes() []byte
}

// Copyright 2024 The bfalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package balloc

// MemProvider is a Provider backed by a single growing Go byte slice. It
// is the in-process analog of lldb's MemFiler — grown by append instead
// of MemFiler's sparse page map, since the heaps this allocator manages
// are orders of magnitude smaller than the exabyte-scale files MemFiler
// was built for; the page map's complexity has no payoff at this scale.
//
// By default a MemProvider has no maximum size; it grows until the Go
// runtime itself refuses the allocation, which is reported back as an
// error from Grow. NewBoundedMemProvider installs an explicit ceiling
// instead, for exercising out-of-memory behavior (spec.md §8 scenario S6)
// deterministically.
type MemProvider struct {
	mem   []byte
	limit int // 0 means unbounded
}

// NewMemProvider returns an empty, unbounded MemProvider.
func NewMemProvider() *MemProvider {
	return &MemProvider{}
}

// NewBoundedMemProvider returns an empty MemProvider that refuses to grow
// past limit bytes total.
func NewBoundedMemProvider(limit int) *MemProvider {
	return &MemProvider{limit: limit}
}

func (p *MemProvider) Grow(n int) (base Addr, err error) {
	if n < 0 {
		return 0, &ErrInvalidArg{"MemProvider.Grow: negative size", n}
	}

	if p.limit != 0 && len(p.mem)+n > p.limit {
		return 0, &ErrOutOfMemory{Requested: n}
	}

	base = Addr(len(p.mem))
	grown, ok := growSlice(p.mem, n)
	if !ok {
		return 0, &ErrOutOfMemory{Requested: n}
	}

	p.mem = grown
	return base, nil
}

// growSlice appends n zero bytes to mem, recovering from the allocation
// panic the Go runtime raises when a request cannot be satisfied, so that
// simulated "out of memory" traces (spec.md §8 scenario S6) can be driven
// without crashing the test process.
func growSlice(mem []byte, n int) (grown []byte, ok bool) {
	defer func() {
		if recover() != nil {
			grown, ok = mem, false
		}
	}()

	return append(mem, make([]byte, n)...), true
}

func (p *MemProvider) Bounds() (lo, hi Addr) {
	return 0, Addr(len(p.mem))
}

func (p *MemProvider) Bytes() []byte { return p.mem }

var _ Provider = (*MemProvider)(nil)

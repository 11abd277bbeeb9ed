// Copyright 2024 The bfalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package balloc

import "fmt"

// ErrInvalidArg reports a public-method argument that is malformed on its
// face (e.g. a handle outside the heap's current bounds). Shaped after
// lldb.ErrINVAL: a short message plus the offending value.
type ErrInvalidArg struct {
	Msg string
	Arg interface{}
}

func (e *ErrInvalidArg) Error() string {
	return fmt.Sprintf("balloc: invalid argument: %s (%v)", e.Msg, e.Arg)
}

// ErrOutOfMemory reports that the Provider refused to grow the heap.
type ErrOutOfMemory struct {
	Requested int
	Cause     error
}

func (e *ErrOutOfMemory) Error() string {
	return fmt.Sprintf("balloc: out of memory requesting %d bytes: %v", e.Requested, e.Cause)
}

func (e *ErrOutOfMemory) Unwrap() error { return e.Cause }

// ErrCorrupt reports a structural invariant violation found by Check.
// Shaped after lldb.ErrILSEQ: the offset of the offending block/word plus
// a human-readable description.
type ErrCorrupt struct {
	Off  Addr
	What string
}

func (e *ErrCorrupt) Error() string {
	return fmt.Sprintf("balloc: corrupt heap at %#x: %s", e.Off, e.What)
}

// Copyright 2024 The bfalloc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package balloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMemProviderGrowIsMonotonic(t *testing.T) {
	p := NewMemProvider()

	b1, err := p.Grow(16)
	require.NoError(t, err)
	require.Equal(t, Addr(0), b1)

	b2, err := p.Grow(8)
	require.NoError(t, err)
	require.Equal(t, Addr(16), b2)

	lo, hi := p.Bounds()
	require.Equal(t, Addr(0), lo)
	require.Equal(t, Addr(24), hi)
	require.Len(t, p.Bytes(), 24)
}

func TestMemProviderRejectsNegativeGrow(t *testing.T) {
	p := NewMemProvider()
	_, err := p.Grow(-1)
	require.Error(t, err)
	var invalid *ErrInvalidArg
	require.ErrorAs(t, err, &invalid)
}

func TestBoundedMemProviderRefusesPastLimit(t *testing.T) {
	p := NewBoundedMemProvider(32)

	_, err := p.Grow(32)
	require.NoError(t, err)

	_, err = p.Grow(1)
	require.Error(t, err)
	var oom *ErrOutOfMemory
	require.ErrorAs(t, err, &oom)
}

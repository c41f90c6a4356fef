package memapi

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocFreeAccounting(t *testing.T) {
	base := LiveCount()
	p, err := Alloc(64)
	require.NoError(t, err)
	n, ok := SizeOf(p)
	require.True(t, ok)
	assert.Equal(t, 64, n)
	assert.Equal(t, base+1, LiveCount())

	require.NoError(t, Free(p))
	assert.Equal(t, base, LiveCount())

	// Second free of the same address must fail loudly, not unmap.
	err = Free(p)
	require.ErrorIs(t, err, ErrUnknownAddr)
}

func TestAllocBadSize(t *testing.T) {
	_, err := Alloc(0)
	require.ErrorIs(t, err, ErrBadSize)
	_, err = Alloc(-8)
	require.ErrorIs(t, err, ErrBadSize)
}

func TestAllocZeroed(t *testing.T) {
	p, err := Alloc(128)
	require.NoError(t, err)
	defer Free(p)
	for _, c := range Bytes(p, 128) {
		require.Zero(t, c)
	}
}

func TestZero(t *testing.T) {
	p, err := Alloc(32)
	require.NoError(t, err)
	defer Free(p)

	b := Bytes(p, 32)
	for i := range b {
		b[i] = 0xAA
	}
	Zero(p, 32)
	for _, c := range b {
		require.Zero(t, c)
	}
}

func TestReallocPreservesPrefix(t *testing.T) {
	base := LiveCount()
	p, err := Alloc(16)
	require.NoError(t, err)
	b := Bytes(p, 16)
	for i := range b {
		b[i] = byte(i + 1)
	}

	np, err := Realloc(p, 64)
	require.NoError(t, err)
	n, ok := SizeOf(np)
	require.True(t, ok)
	assert.Equal(t, 64, n)
	assert.Equal(t, base+1, LiveCount())

	nb := Bytes(np, 64)
	for i := 0; i < 16; i++ {
		assert.Equal(t, byte(i+1), nb[i])
	}

	// Shrink keeps the head as well.
	np, err = Realloc(np, 8)
	require.NoError(t, err)
	nb = Bytes(np, 8)
	for i := 0; i < 8; i++ {
		assert.Equal(t, byte(i+1), nb[i])
	}

	require.NoError(t, Free(np))
	assert.Equal(t, base, LiveCount())
}

func TestFreeObserver(t *testing.T) {
	var seen []int
	SetFreeObserver(func(p unsafe.Pointer, n int) {
		seen = append(seen, n)
	})
	defer SetFreeObserver(nil)

	p, err := Alloc(48)
	require.NoError(t, err)
	require.NoError(t, Free(p))
	require.Equal(t, []int{48}, seen)
}

func TestLiveBytes(t *testing.T) {
	base := LiveBytes()
	p, err := Alloc(100)
	require.NoError(t, err)
	assert.Equal(t, base+100, LiveBytes())
	require.NoError(t, Free(p))
	assert.Equal(t, base, LiveBytes())
}

package rawmem

import (
	"slices"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/rawmem/internal/memapi"
)

func byteBuffer(t *testing.T, data []byte) *Buffer {
	t.Helper()
	b, err := Alloc(len(data))
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	copy(memapi.Bytes(b.Addr(), len(data)), data)
	return b
}

func TestViewUntilTerminator(t *testing.T) {
	b := byteBuffer(t, []byte{5, 7, 0, 9})
	seq, err := ViewUntil[byte](b, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{5, 7}, slices.Collect(seq))
}

func TestViewRestartable(t *testing.T) {
	b := byteBuffer(t, []byte{1, 2, 3, 4})
	seq, err := View[byte](b, 4)
	require.NoError(t, err)
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	assert.Equal(t, first, second)
	assert.Equal(t, []byte{1, 2, 3, 4}, first)
}

func TestViewCount(t *testing.T) {
	b := byteBuffer(t, []byte{9, 9, 9, 9})
	seq, err := View[byte](b, 2)
	require.NoError(t, err)
	assert.Len(t, slices.Collect(seq), 2)

	_, err = View[byte](b, -1)
	require.ErrorIs(t, err, ErrBadArgument)
}

func TestViewAllDerivesCount(t *testing.T) {
	b, err := Alloc(8)
	require.NoError(t, err)
	defer b.Close()
	*(*uint32)(b.Addr()) = 0xDEADBEEF
	*(*uint32)(unsafe.Add(b.Addr(), 4)) = 0xCAFEBABE

	seq, err := ViewAll[uint32](b)
	require.NoError(t, err)
	assert.Equal(t, []uint32{0xDEADBEEF, 0xCAFEBABE}, slices.Collect(seq))
}

func TestViewAllUnknownSize(t *testing.T) {
	p, err := memapi.Alloc(8)
	require.NoError(t, err)
	b := Wrap(p)
	defer b.Close()

	_, err = ViewAll[byte](b)
	require.ErrorIs(t, err, ErrSizeUnknown)
}

func TestViewUntilAny(t *testing.T) {
	b := byteBuffer(t, []byte{3, 1, 4, 1, 5, 9})
	seq, err := ViewUntilAny[byte](b, []byte{5, 9})
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 1, 4, 1}, slices.Collect(seq))
}

func TestViewUntilAnyEmptySet(t *testing.T) {
	b := byteBuffer(t, []byte{1, 0})
	_, err := ViewUntilAny[byte](b, nil)
	require.ErrorIs(t, err, ErrBadArgument)
	_, err = ViewUntilAny[byte](b, []byte{})
	require.ErrorIs(t, err, ErrBadArgument)
}

func TestViewStructElements(t *testing.T) {
	type pair struct {
		A uint16
		B uint16
	}
	b, err := Alloc(8)
	require.NoError(t, err)
	defer b.Close()
	*Pointer[[2]pair](b) = [2]pair{{1, 2}, {3, 4}}

	seq, err := ViewAll[pair](b)
	require.NoError(t, err)
	assert.Equal(t, []pair{{1, 2}, {3, 4}}, slices.Collect(seq))
}

func TestViewRejectsManagedType(t *testing.T) {
	b := byteBuffer(t, []byte{0})
	_, err := View[string](b, 1)
	var ite *InvalidTypeError
	require.ErrorAs(t, err, &ite)
}

func TestViewClosed(t *testing.T) {
	b, err := Alloc(4)
	require.NoError(t, err)
	require.NoError(t, b.Close())
	_, err = View[byte](b, 1)
	require.ErrorIs(t, err, ErrClosed)
	_, err = ViewUntil[byte](b, 0)
	require.ErrorIs(t, err, ErrClosed)
}

func TestPointerReinterpret(t *testing.T) {
	b, err := Alloc(4)
	require.NoError(t, err)
	defer b.Close()

	*Pointer[uint32](b) = 0x01020304
	raw := memapi.Bytes(b.Addr(), 4)
	// Native byte order either way; the round trip is what matters.
	assert.Equal(t, uint32(0x01020304), *Pointer[uint32](b))
	assert.ElementsMatch(t, []byte{1, 2, 3, 4}, raw)
}

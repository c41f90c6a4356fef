// Package rawmem provides disposable abstractions over memory that
// lives outside the Go heap: Buffer owns a single natively allocated
// region with an optionally known size, and SecureArray is a
// fixed-length typed list that scrubs its region before every release.
package rawmem

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/rawbytedev/rawmem/internal/memapi"
)

const sizeUnknown = -1

// Buffer owns one natively allocated region. The address is never
// shared between live Buffers; ownership moves only through Release.
// Instances are not safe for concurrent use.
type Buffer struct {
	ptr    unsafe.Pointer
	size   int // byte extent, sizeUnknown when not tracked
	closed bool
}

// Alloc allocates a buffer of n bytes. n == 0 yields an empty,
// address-less buffer; n < 0 is an error.
func Alloc(n int) (*Buffer, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative size %d", ErrBadArgument, n)
	}
	b := &Buffer{size: n}
	if n > 0 {
		p, err := memapi.Alloc(n)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAlloc, err)
		}
		b.ptr = p
	}
	runtime.SetFinalizer(b, (*Buffer).finalize)
	return b, nil
}

// Wrap adopts a pre-existing address of unknown extent. The address
// must originate from this module's allocator (another Buffer's
// Release, typically); Close will free it, so the previous owner must
// not. No allocation occurs.
func Wrap(p unsafe.Pointer) *Buffer {
	b := &Buffer{ptr: p, size: sizeUnknown}
	runtime.SetFinalizer(b, (*Buffer).finalize)
	return b
}

// WrapSized is Wrap with a known byte extent.
func WrapSized(p unsafe.Pointer, n int) *Buffer {
	b := Wrap(p)
	b.size = n
	return b
}

// Size returns the known byte extent, or ok=false when the buffer was
// constructed without one.
func (b *Buffer) Size() (int, bool) {
	if b.size == sizeUnknown {
		return 0, false
	}
	return b.size, true
}

// Addr returns the base address, nil once closed.
func (b *Buffer) Addr() unsafe.Pointer { return b.ptr }

// Uintptr returns the base address as an integer for native call
// sites. No validation is performed.
func (b *Buffer) Uintptr() uintptr { return uintptr(b.ptr) }

// Realloc resizes the region to n bytes. This is destructive by the
// allocator's own contract: the prior address is invalid as soon as
// Realloc is entered, and on failure the buffer transitions to the
// closed state with no rollback.
func (b *Buffer) Realloc(n int) error {
	if b.closed {
		return ErrClosed
	}
	if n <= 0 {
		return fmt.Errorf("%w: realloc to %d bytes", ErrBadArgument, n)
	}
	if b.ptr == nil {
		p, err := memapi.Alloc(n)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrAlloc, err)
		}
		b.ptr = p
		b.size = n
		return nil
	}
	p, err := memapi.Realloc(b.ptr, n)
	if err != nil {
		// The old region is already gone; leave the buffer closed
		// rather than pointing at freed memory.
		b.ptr = nil
		b.size = 0
		b.closed = true
		return fmt.Errorf("%w: %v", ErrAlloc, err)
	}
	b.ptr = p
	b.size = n
	return nil
}

// CopyN copies exactly n bytes from b into dst. Either side with a
// known size smaller than n fails the range check. Overlapping regions
// are undefined; no aliasing check is made.
func (b *Buffer) CopyN(dst *Buffer, n int) error {
	if b.closed || dst == nil || dst.closed {
		return ErrClosed
	}
	if n < 0 {
		return fmt.Errorf("%w: negative count %d", ErrBadArgument, n)
	}
	if b.size != sizeUnknown && n > b.size {
		return fmt.Errorf("%w: %d bytes from %d-byte source", ErrRange, n, b.size)
	}
	if dst.size != sizeUnknown && n > dst.size {
		return fmt.Errorf("%w: %d bytes into %d-byte destination", ErrRange, n, dst.size)
	}
	if n == 0 {
		return nil
	}
	copy(memapi.Bytes(dst.ptr, n), memapi.Bytes(b.ptr, n))
	return nil
}

// CopyTo copies min(b.Size, dst.Size) bytes into dst. Both sizes must
// be known.
func (b *Buffer) CopyTo(dst *Buffer) error {
	if b.closed || dst == nil || dst.closed {
		return ErrClosed
	}
	if b.size == sizeUnknown || dst.size == sizeUnknown {
		return ErrSizeUnknown
	}
	return b.CopyN(dst, min(b.size, dst.size))
}

// CloneN allocates a fresh n-byte buffer and copies n bytes into it.
func (b *Buffer) CloneN(n int) (*Buffer, error) {
	if b.closed {
		return nil, ErrClosed
	}
	dst, err := Alloc(n)
	if err != nil {
		return nil, err
	}
	if err := b.CopyN(dst, n); err != nil {
		_ = dst.Close()
		return nil, err
	}
	return dst, nil
}

// Clone duplicates the buffer at its own known size.
func (b *Buffer) Clone() (*Buffer, error) {
	if b.closed {
		return nil, ErrClosed
	}
	if b.size == sizeUnknown {
		return nil, ErrSizeUnknown
	}
	return b.CloneN(b.size)
}

// Release relinquishes ownership of the region and returns its
// address. The buffer behaves as closed afterward; the caller is now
// responsible for freeing the address.
func (b *Buffer) Release() unsafe.Pointer {
	p := b.ptr
	b.ptr = nil
	b.size = 0
	b.closed = true
	runtime.SetFinalizer(b, nil)
	return p
}

// Close frees the owned region. Calling Close again is a no-op.
func (b *Buffer) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	runtime.SetFinalizer(b, nil)
	if b.ptr == nil {
		return nil
	}
	err := memapi.Free(b.ptr)
	b.ptr = nil
	b.size = 0
	return err
}

// Closed reports whether the buffer has been closed or released.
func (b *Buffer) Closed() bool { return b.closed }

func (b *Buffer) finalize() {
	if !b.closed && b.ptr != nil {
		_ = memapi.Free(b.ptr)
		b.ptr = nil
	}
	b.closed = true
}

package rawmem

import (
	"fmt"
	"iter"
	"reflect"
	"runtime"
	"unsafe"

	"github.com/rawbytedev/rawmem/internal/memapi"
)

// SecureArray is a fixed-length typed list over a dedicated native
// region. The element type must be blittable; the comparable
// constraint already rejects slices, maps and funcs at compile time,
// and the runtime check catches the rest (strings, interfaces, Go
// pointers) before anything is allocated.
//
// The backing region is zero-filled right after allocation and again
// right before every release, whether release happens through Close,
// through Resize replacing the storage, or through the finalizer
// backstop. Instances are not safe for concurrent use.
type SecureArray[T comparable] struct {
	ptr      unsafe.Pointer
	length   int
	elemSize int
	closed   bool
}

// NewSecureArray allocates a zeroed array of length elements.
func NewSecureArray[T comparable](length int) (*SecureArray[T], error) {
	if err := blittable(reflect.TypeFor[T]()); err != nil {
		return nil, err
	}
	if length < 0 {
		return nil, fmt.Errorf("%w: negative length %d", ErrBadArgument, length)
	}
	a := &SecureArray[T]{length: length, elemSize: sizeOf[T]()}
	if length > 0 {
		p, err := memapi.Alloc(length * a.elemSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAlloc, err)
		}
		a.ptr = p
		// The mapping arrives zeroed from the OS; the explicit pass
		// keeps the zero state a contract rather than a platform
		// detail.
		memapi.Zero(a.ptr, length*a.elemSize)
	}
	runtime.SetFinalizer(a, (*SecureArray[T]).finalize)
	return a, nil
}

// SecureArrayFrom allocates an array sized to src and copies each
// element in order.
func SecureArrayFrom[T comparable](src []T) (*SecureArray[T], error) {
	a, err := NewSecureArray[T](len(src))
	if err != nil {
		return nil, err
	}
	for i, v := range src {
		a.set(i, v)
	}
	return a, nil
}

// Len returns the element count.
func (a *SecureArray[T]) Len() int { return a.length }

// ElemSize returns the fixed physical size of one element.
func (a *SecureArray[T]) ElemSize() int { return a.elemSize }

// ByteSize returns length times element size.
func (a *SecureArray[T]) ByteSize() int { return a.length * a.elemSize }

// Closed reports whether the array has been disposed.
func (a *SecureArray[T]) Closed() bool { return a.closed }

// Get reads the element at index i.
func (a *SecureArray[T]) Get(i int) (T, error) {
	var zero T
	if a.closed {
		return zero, ErrClosed
	}
	if i < 0 || i >= a.length {
		return zero, fmt.Errorf("%w: %d (length %d)", ErrIndex, i, a.length)
	}
	return a.get(i), nil
}

// Set writes the element at index i.
func (a *SecureArray[T]) Set(i int, v T) error {
	if a.closed {
		return ErrClosed
	}
	if i < 0 || i >= a.length {
		return fmt.Errorf("%w: %d (length %d)", ErrIndex, i, a.length)
	}
	a.set(i, v)
	return nil
}

// IndexOf returns the index of the first element equal to v, or -1.
func (a *SecureArray[T]) IndexOf(v T) (int, error) {
	if a.closed {
		return -1, ErrClosed
	}
	for i := 0; i < a.length; i++ {
		if a.get(i) == v {
			return i, nil
		}
	}
	return -1, nil
}

// Contains reports whether v is present.
func (a *SecureArray[T]) Contains(v T) (bool, error) {
	i, err := a.IndexOf(v)
	return i >= 0, err
}

// CopyTo copies every element into dst starting at start. The nil
// check runs before anything touches dst.
func (a *SecureArray[T]) CopyTo(dst []T, start int) error {
	if dst == nil {
		return ErrNilDestination
	}
	if a.closed {
		return ErrClosed
	}
	if start < 0 || start > len(dst) {
		return fmt.Errorf("%w: start %d (destination length %d)", ErrRange, start, len(dst))
	}
	if len(dst)-start < a.length {
		return fmt.Errorf("%w: need %d elements, have %d", ErrRange, a.length, len(dst)-start)
	}
	for i := 0; i < a.length; i++ {
		dst[start+i] = a.get(i)
	}
	return nil
}

// Clone allocates an equal-length array and copies every element.
func (a *SecureArray[T]) Clone() (*SecureArray[T], error) {
	if a.closed {
		return nil, ErrClosed
	}
	dup, err := NewSecureArray[T](a.length)
	if err != nil {
		return nil, err
	}
	if a.length > 0 {
		copy(memapi.Bytes(dup.ptr, dup.ByteSize()), memapi.Bytes(a.ptr, a.ByteSize()))
	}
	return dup, nil
}

// Resize replaces the backing storage with one sized to n elements,
// carrying over min(old, n) elements and zeroing any tail. The old
// region is zero-filled and freed exactly once; the array stays usable
// under its new length. This is deliberately not a raw reallocation:
// the old contents are sensitive and are scrubbed rather than handed
// back to the allocator intact.
func (a *SecureArray[T]) Resize(n int) error {
	if a.closed {
		return ErrClosed
	}
	if n < 0 {
		return fmt.Errorf("%w: negative length %d", ErrBadArgument, n)
	}
	var np unsafe.Pointer
	if n > 0 {
		p, err := memapi.Alloc(n * a.elemSize)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrAlloc, err)
		}
		np = p
		memapi.Zero(np, n*a.elemSize)
		if a.ptr != nil {
			keep := min(a.length, n) * a.elemSize
			copy(memapi.Bytes(np, keep), memapi.Bytes(a.ptr, keep))
		}
	}
	a.scrub()
	a.ptr = np
	a.length = n
	return nil
}

// Append always fails: the array is fixed-length.
func (a *SecureArray[T]) Append(T) error { return ErrFixedLength }

// Insert always fails: the array is fixed-length.
func (a *SecureArray[T]) Insert(int, T) error { return ErrFixedLength }

// RemoveAt always fails: the array is fixed-length.
func (a *SecureArray[T]) RemoveAt(int) error { return ErrFixedLength }

// RemoveValue always fails: the array is fixed-length.
func (a *SecureArray[T]) RemoveValue(T) error { return ErrFixedLength }

// Clear always fails: the array is fixed-length.
func (a *SecureArray[T]) Clear() error { return ErrFixedLength }

// Values returns a restartable sequence over the length observed now.
func (a *SecureArray[T]) Values() (iter.Seq[T], error) {
	if a.closed {
		return nil, ErrClosed
	}
	p, n, sz := a.ptr, a.length, a.elemSize
	return func(yield func(T) bool) {
		for i := 0; i < n; i++ {
			if !yield(load[T](p, i, sz)) {
				return
			}
		}
	}, nil
}

// Close zero-fills and frees the backing region. Calling Close again
// is a no-op, and an explicit Close suppresses the finalizer so the
// release cannot run twice.
func (a *SecureArray[T]) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	runtime.SetFinalizer(a, nil)
	a.scrub()
	return nil
}

func (a *SecureArray[T]) get(i int) T {
	return load[T](a.ptr, i, a.elemSize)
}

func (a *SecureArray[T]) set(i int, v T) {
	*(*T)(unsafe.Add(a.ptr, uintptr(i)*uintptr(a.elemSize))) = v
}

// scrub zeroes then frees the current region. Zero completes before
// Free; memapi guarantees the store is not elided.
func (a *SecureArray[T]) scrub() {
	if a.ptr == nil {
		return
	}
	memapi.Zero(a.ptr, a.length*a.elemSize)
	_ = memapi.Free(a.ptr)
	a.ptr = nil
}

func (a *SecureArray[T]) finalize() {
	if !a.closed {
		a.closed = true
		a.scrub()
	}
}

package rawmem

import (
	"fmt"
	"iter"
	"reflect"
	"slices"
	"unsafe"
)

// Typed views reinterpret a Buffer's region as a lazy sequence of
// fixed-layout elements. A view performs no bounds check against the
// buffer's size: the caller supplies a correct count or guarantees a
// terminator, matching native null-terminated idioms. Views capture
// the base address at creation and must not outlive the buffer.

func viewCheck[T any](b *Buffer) (int, error) {
	if b.closed {
		return 0, ErrClosed
	}
	if err := blittable(reflect.TypeFor[T]()); err != nil {
		return 0, err
	}
	return sizeOf[T](), nil
}

func load[T any](p unsafe.Pointer, i, size int) T {
	return *(*T)(unsafe.Add(p, uintptr(i)*uintptr(size)))
}

// View returns a restartable sequence of count consecutive T read
// from the buffer's base address.
func View[T any](b *Buffer, count int) (iter.Seq[T], error) {
	sz, err := viewCheck[T](b)
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrBadArgument, count)
	}
	p := b.ptr
	return func(yield func(T) bool) {
		for i := 0; i < count; i++ {
			if !yield(load[T](p, i, sz)) {
				return
			}
		}
	}, nil
}

// ViewAll is View with the count derived from the buffer's known size.
func ViewAll[T any](b *Buffer) (iter.Seq[T], error) {
	sz, err := viewCheck[T](b)
	if err != nil {
		return nil, err
	}
	if b.size == sizeUnknown {
		return nil, ErrSizeUnknown
	}
	return View[T](b, b.size/sz)
}

// ViewUntil returns a sequence that stops before the first element
// equal to term. The caller must guarantee a terminator exists in the
// region; otherwise the walk runs unbounded.
func ViewUntil[T comparable](b *Buffer, term T) (iter.Seq[T], error) {
	sz, err := viewCheck[T](b)
	if err != nil {
		return nil, err
	}
	p := b.ptr
	return func(yield func(T) bool) {
		for i := 0; ; i++ {
			v := load[T](p, i, sz)
			if v == term || !yield(v) {
				return
			}
		}
	}, nil
}

// ViewUntilAny is ViewUntil with a set of terminators; the sequence
// stops before the first element found in terms.
func ViewUntilAny[T comparable](b *Buffer, terms []T) (iter.Seq[T], error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: empty terminator set", ErrBadArgument)
	}
	sz, err := viewCheck[T](b)
	if err != nil {
		return nil, err
	}
	p := b.ptr
	return func(yield func(T) bool) {
		for i := 0; ; i++ {
			v := load[T](p, i, sz)
			if slices.Contains(terms, v) || !yield(v) {
				return
			}
		}
	}, nil
}

// Pointer reinterprets the buffer's base address as *T for adjacent
// native-interop code. No validation of any kind is performed.
func Pointer[T any](b *Buffer) *T {
	return (*T)(b.ptr)
}

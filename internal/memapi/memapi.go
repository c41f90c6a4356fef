// Package memapi implements the allocation primitives the rest of the
// module consumes: allocate, free, reallocate and zero-fill over
// regions that live outside the Go heap.
//
// Every live region is tracked in a process-wide registry keyed by
// base address. The registry supplies the mapped length at free time
// (the OS unmap calls need it, callers don't always know it) and turns
// double frees and foreign addresses into loud errors instead of
// undefined behavior.
package memapi

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"
)

var (
	ErrAlloc       = errors.New("memapi: allocation failed")
	ErrBadSize     = errors.New("memapi: size must be positive")
	ErrUnknownAddr = errors.New("memapi: address not owned by allocator")
)

var (
	mu   sync.Mutex
	live = make(map[uintptr]int) // base address -> mapped length

	// freeObserver, when set, sees (addr, length) immediately before a
	// region is unmapped. Tests use it to prove zero-before-free.
	freeObserver func(p unsafe.Pointer, n int)
)

// Alloc maps a private anonymous read-write region of n bytes and
// best-effort locks it against swapping. The region is zeroed by the
// OS. n must be positive.
func Alloc(n int) (unsafe.Pointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, n)
	}
	b, err := sysAlloc(n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAlloc, err)
	}
	p := unsafe.Pointer(&b[0])
	mu.Lock()
	live[uintptr(p)] = n
	mu.Unlock()
	return p, nil
}

// Free unmaps the region at p. p must be the base address of a live
// allocation made by this package; anything else (including a second
// Free of the same address) returns ErrUnknownAddr.
func Free(p unsafe.Pointer) error {
	n, err := forget(p)
	if err != nil {
		return err
	}
	if freeObserver != nil {
		freeObserver(p, n)
	}
	return sysFree(Bytes(p, n))
}

// Realloc resizes the region at p to n bytes, moving it if needed.
// The old address is invalid when Realloc returns, on the error path
// included: if a replacement region cannot be obtained the old one is
// released before the error is reported. There is no rollback.
func Realloc(p unsafe.Pointer, n int) (unsafe.Pointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadSize, n)
	}
	old, err := forget(p)
	if err != nil {
		return nil, err
	}
	b, err := sysRealloc(Bytes(p, old), n)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAlloc, err)
	}
	np := unsafe.Pointer(&b[0])
	mu.Lock()
	live[uintptr(np)] = n
	mu.Unlock()
	return np, nil
}

// Zero overwrites n bytes at p with zeros. The write must not be
// elided: the KeepAlive below pins the slice as live until every store
// has landed, so the compiler cannot treat the loop as a dead store
// ahead of a following Free.
func Zero(p unsafe.Pointer, n int) {
	if p == nil || n <= 0 {
		return
	}
	b := Bytes(p, n)
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// Bytes aliases n bytes at p as a slice. The slice shares the region's
// lifetime; it must not outlive a Free of p.
func Bytes(p unsafe.Pointer, n int) []byte {
	return unsafe.Slice((*byte)(p), n)
}

// SizeOf reports the mapped length of a live allocation.
func SizeOf(p unsafe.Pointer) (int, bool) {
	mu.Lock()
	n, ok := live[uintptr(p)]
	mu.Unlock()
	return n, ok
}

// LiveCount returns the number of live allocations.
func LiveCount() int {
	mu.Lock()
	n := len(live)
	mu.Unlock()
	return n
}

// LiveBytes returns the total mapped bytes across live allocations.
func LiveBytes() int {
	mu.Lock()
	total := 0
	for _, n := range live {
		total += n
	}
	mu.Unlock()
	return total
}

// SetFreeObserver installs fn to be called with (addr, length) right
// before each region is unmapped, or removes it when fn is nil.
// Intended for tests; not synchronized against concurrent frees.
func SetFreeObserver(fn func(p unsafe.Pointer, n int)) {
	freeObserver = fn
}

// forget removes p from the registry and returns its mapped length.
func forget(p unsafe.Pointer) (int, error) {
	if p == nil {
		return 0, fmt.Errorf("%w: nil", ErrUnknownAddr)
	}
	mu.Lock()
	n, ok := live[uintptr(p)]
	if ok {
		delete(live, uintptr(p))
	}
	mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("%w: %#x", ErrUnknownAddr, uintptr(p))
	}
	return n, nil
}

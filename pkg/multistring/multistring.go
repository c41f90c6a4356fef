// Package multistring reads and writes double-NUL-terminated blocks
// of wide strings, the layout used by native multi-string registry and
// environment values: each string is NUL-terminated and the block ends
// with one additional empty string.
package multistring

import (
	"errors"
	"fmt"
	"slices"
	"unicode/utf16"
	"unsafe"

	"github.com/rawbytedev/rawmem"
)

var (
	// ErrVetoed reports a mutation rejected by a pre-change hook.
	ErrVetoed = errors.New("multistring: change vetoed")

	// ErrOverflow reports an encoded block larger than the list's
	// fixed byte capacity.
	ErrOverflow = errors.New("multistring: block exceeds capacity")
)

// Parse walks wide elements from the buffer's base address, splitting
// on NUL and stopping at the first full block terminator (an empty
// string, i.e. a second consecutive NUL). When the buffer's size is
// known the walk is additionally bounded by it; when it is unknown the
// caller must guarantee a terminator exists.
func Parse(b *rawmem.Buffer) ([]string, error) {
	if b.Closed() {
		return nil, rawmem.ErrClosed
	}
	limit := -1
	if n, ok := b.Size(); ok {
		limit = n / 2
	}
	base := unsafe.Pointer(rawmem.Pointer[uint16](b))
	out := []string{}
	var cur []uint16
	for i := 0; limit < 0 || i < limit; i++ {
		u := *(*uint16)(unsafe.Add(base, uintptr(i)*2))
		if u != 0 {
			cur = append(cur, u)
			continue
		}
		if len(cur) == 0 {
			// Empty string: the full terminator sequence.
			return out, nil
		}
		out = append(out, string(utf16.Decode(cur)))
		cur = cur[:0]
	}
	// Size-bounded block without a trailing NUL: keep the tail.
	if len(cur) > 0 {
		out = append(out, string(utf16.Decode(cur)))
	}
	return out, nil
}

// Encode builds the double-NUL block for strs in a fresh buffer. The
// buffer's size covers the whole block, terminator included. Empty
// strings cannot be represented (an empty string is the terminator).
func Encode(strs []string) (*rawmem.Buffer, error) {
	var units []uint16
	for _, s := range strs {
		if s == "" {
			return nil, fmt.Errorf("%w: empty string in multi-string block", rawmem.ErrBadArgument)
		}
		for _, u := range utf16.Encode([]rune(s)) {
			if u == 0 {
				return nil, fmt.Errorf("%w: embedded NUL in %q", rawmem.ErrBadArgument, s)
			}
			units = append(units, u)
		}
		units = append(units, 0)
	}
	units = append(units, 0)
	b, err := rawmem.Alloc(2 * len(units))
	if err != nil {
		return nil, err
	}
	base := unsafe.Pointer(rawmem.Pointer[uint16](b))
	for i, u := range units {
		*(*uint16)(unsafe.Add(base, uintptr(i)*2)) = u
	}
	return b, nil
}

// ChangeFunc observes a pending mutation and may veto it by returning
// an error. It sees copies of the old and proposed contents; the live
// block has not changed when it runs.
type ChangeFunc func(old, next []string) error

// List is a fixed-capacity multi-string block held in an owned buffer.
// Mutations are transactional: the replacement block is fully built
// aside, the pre-change hook may veto it, and the live block is
// swapped only on approval. On veto or overflow the block is
// untouched. Instances are not safe for concurrent use.
type List struct {
	buf      *rawmem.Buffer
	capBytes int
	strs     []string
	onChange ChangeFunc
}

// NewList allocates an empty list with a fixed byte capacity for the
// encoded block. hook may be nil.
func NewList(capBytes int, hook ChangeFunc) (*List, error) {
	if capBytes < 2 {
		return nil, fmt.Errorf("%w: capacity %d below terminator size", rawmem.ErrBadArgument, capBytes)
	}
	// A zeroed buffer is already a valid empty block.
	buf, err := rawmem.Alloc(capBytes)
	if err != nil {
		return nil, err
	}
	return &List{buf: buf, capBytes: capBytes, strs: []string{}, onChange: hook}, nil
}

// Len returns the number of strings.
func (l *List) Len() int { return len(l.strs) }

// Strings returns a copy of the current contents.
func (l *List) Strings() []string { return slices.Clone(l.strs) }

// Buffer exposes the backing block for native call sites. The list
// retains ownership.
func (l *List) Buffer() *rawmem.Buffer { return l.buf }

// Set replaces the string at index i.
func (l *List) Set(i int, s string) error {
	if i < 0 || i >= len(l.strs) {
		return fmt.Errorf("%w: %d (length %d)", rawmem.ErrIndex, i, len(l.strs))
	}
	next := slices.Clone(l.strs)
	next[i] = s
	return l.apply(next)
}

// Add appends a string.
func (l *List) Add(s string) error {
	return l.apply(append(slices.Clone(l.strs), s))
}

// Remove deletes the string at index i.
func (l *List) Remove(i int) error {
	if i < 0 || i >= len(l.strs) {
		return fmt.Errorf("%w: %d (length %d)", rawmem.ErrIndex, i, len(l.strs))
	}
	return l.apply(slices.Delete(slices.Clone(l.strs), i, i+1))
}

// Close releases the backing buffer. Safe to call repeatedly.
func (l *List) Close() error {
	return l.buf.Close()
}

func (l *List) apply(next []string) error {
	if l.buf.Closed() {
		return rawmem.ErrClosed
	}
	tmp, err := Encode(next)
	if err != nil {
		return err
	}
	defer tmp.Close()
	n, _ := tmp.Size()
	if n > l.capBytes {
		return fmt.Errorf("%w: %d bytes into %d-byte block", ErrOverflow, n, l.capBytes)
	}
	if l.onChange != nil {
		if err := l.onChange(l.Strings(), slices.Clone(next)); err != nil {
			return fmt.Errorf("%w: %v", ErrVetoed, err)
		}
	}
	if err := tmp.CopyN(l.buf, n); err != nil {
		return err
	}
	l.strs = next
	return nil
}

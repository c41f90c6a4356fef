package rawmem

import (
	"fmt"
	"unicode/utf16"
	"unsafe"

	"github.com/rawbytedev/rawmem/internal/memapi"
)

// Encoding selects the wire form FromString writes into native memory.
type Encoding int

const (
	// Byte writes the raw bytes of the string. Size is the byte count.
	Byte Encoding = iota
	// Wide writes UTF-16 code units in native byte order. Size is
	// twice the code-unit count.
	Wide
	// Native writes the platform-default variable-width form (UTF-8 on
	// the supported platforms). Size is left unknown: the encoded
	// length depends on the encoding, not on the allocator.
	Native
)

// FromString encodes text into a fresh buffer, terminated with a NUL
// element so native string readers can walk it. The recorded size
// covers the text bytes only, per encoding; Native leaves it unknown.
func FromString(text string, enc Encoding) (*Buffer, error) {
	switch enc {
	case Byte, Native:
		raw := []byte(text)
		b, err := Alloc(len(raw) + 1)
		if err != nil {
			return nil, err
		}
		mem := memapi.Bytes(b.ptr, len(raw)+1)
		copy(mem, raw)
		mem[len(raw)] = 0
		if enc == Native {
			b.size = sizeUnknown
		} else {
			b.size = len(raw)
		}
		return b, nil
	case Wide:
		units := utf16.Encode([]rune(text))
		total := 2*len(units) + 2
		b, err := Alloc(total)
		if err != nil {
			return nil, err
		}
		for i, u := range units {
			*(*uint16)(unsafe.Add(b.ptr, uintptr(i)*2)) = u
		}
		*(*uint16)(unsafe.Add(b.ptr, uintptr(len(units))*2)) = 0
		b.size = 2 * len(units)
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unknown encoding %d", ErrBadArgument, enc)
	}
}

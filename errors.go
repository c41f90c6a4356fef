package rawmem

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrAlloc reports that the underlying allocator could not satisfy
	// a request. It wraps the platform error and is never retried.
	ErrAlloc = errors.New("rawmem: allocation failed")

	// ErrClosed reports use of a buffer or array after Close.
	ErrClosed = errors.New("rawmem: use after close")

	// ErrIndex reports an index outside [0, length).
	ErrIndex = errors.New("rawmem: index out of range")

	// ErrRange reports a copy that does not fit its source or
	// destination extent.
	ErrRange = errors.New("rawmem: range out of bounds")

	// ErrSizeUnknown reports an operation that needs a known byte size
	// on a buffer constructed without one.
	ErrSizeUnknown = errors.New("rawmem: buffer size unknown")

	// ErrFixedLength reports a structural mutation on a fixed-length
	// array.
	ErrFixedLength = errors.New("rawmem: array is fixed-length")

	// ErrBadArgument reports an invalid argument, e.g. an empty
	// terminator set or a negative size.
	ErrBadArgument = errors.New("rawmem: bad argument")

	// ErrNilDestination reports a nil copy destination.
	ErrNilDestination = errors.New("rawmem: nil destination")
)

// InvalidTypeError reports a type rejected by the blittable check.
// Type is the element type handed to the constructor; Field names the
// offending struct field path when the rejection is nested.
type InvalidTypeError struct {
	Type  reflect.Type
	Field string
}

func (e *InvalidTypeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("rawmem: type %s is not blittable: field %s", e.Type, e.Field)
	}
	return fmt.Sprintf("rawmem: type %s is not blittable", e.Type)
}

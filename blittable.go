package rawmem

import (
	"reflect"
	"sync"
)

// A type is blittable when its values have a fixed physical layout and
// contain no references the garbage collector would need to see:
// booleans, fixed and platform-width integers, floats, complex pairs,
// unsafe.Pointer, named forms of all of these (enums), and arrays or
// structs built recursively from them. Go pointers are rejected: a *T
// stored in memory outside the heap is invisible to the collector, so
// it is exactly the kind of hidden managed reference the check exists
// to keep out.

var (
	blitMu    sync.RWMutex
	blitCache = make(map[reflect.Type]error)
)

// blittable reports whether t may back raw storage. The result is
// cached per type; construction paths call this before allocating.
func blittable(t reflect.Type) error {
	blitMu.RLock()
	err, ok := blitCache[t]
	blitMu.RUnlock()
	if ok {
		return err
	}

	blitMu.Lock()
	defer blitMu.Unlock()
	// Double-check
	if err, ok := blitCache[t]; ok {
		return err
	}
	err = checkBlittable(t, t, "")
	blitCache[t] = err
	return err
}

func checkBlittable(root, t reflect.Type, path string) error {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128,
		reflect.UnsafePointer:
		return nil
	case reflect.Array:
		return checkBlittable(root, t.Elem(), path)
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			fieldPath := sf.Name
			if path != "" {
				fieldPath = path + "." + sf.Name
			}
			if err := checkBlittable(root, sf.Type, fieldPath); err != nil {
				return err
			}
		}
		return nil
	default:
		// string, slice, map, chan, func, interface, *T
		return &InvalidTypeError{Type: root, Field: path}
	}
}

// sizeOf returns the physical element size of T, computed once per
// instantiation by the callers that cache it.
func sizeOf[T any]() int {
	return int(reflect.TypeFor[T]().Size())
}

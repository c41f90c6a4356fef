package rawmem

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color uint8 // enum-style named type

type point struct {
	X, Y int32
}

type frame struct {
	Origin point
	Size   [2]uint16
	Tint   color
	Raw    unsafe.Pointer
}

type tagged struct {
	ID    uint64
	Label string
}

type nested struct {
	Inner frame
	Extra tagged
}

func TestBlittableAccepts(t *testing.T) {
	for _, typ := range []reflect.Type{
		reflect.TypeFor[bool](),
		reflect.TypeFor[int8](),
		reflect.TypeFor[uint64](),
		reflect.TypeFor[int](),
		reflect.TypeFor[uintptr](),
		reflect.TypeFor[float32](),
		reflect.TypeFor[complex128](),
		reflect.TypeFor[color](),
		reflect.TypeFor[unsafe.Pointer](),
		reflect.TypeFor[[4]float64](),
		reflect.TypeFor[point](),
		reflect.TypeFor[frame](),
	} {
		assert.NoError(t, blittable(typ), typ.String())
	}
}

func TestBlittableRejects(t *testing.T) {
	for _, typ := range []reflect.Type{
		reflect.TypeFor[string](),
		reflect.TypeFor[*int](), // a Go pointer is a managed reference
		reflect.TypeFor[any](),
		reflect.TypeFor[tagged](),
		reflect.TypeFor[[3]string](),
	} {
		err := blittable(typ)
		var ite *InvalidTypeError
		require.ErrorAs(t, err, &ite, typ.String())
		assert.Equal(t, typ, ite.Type)
	}
}

func TestBlittableFieldPath(t *testing.T) {
	err := blittable(reflect.TypeFor[nested]())
	var ite *InvalidTypeError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, "Extra.Label", ite.Field)
}

func TestBlittableCached(t *testing.T) {
	first := blittable(reflect.TypeFor[frame]())
	second := blittable(reflect.TypeFor[frame]())
	assert.Equal(t, first, second)

	e1 := blittable(reflect.TypeFor[tagged]())
	e2 := blittable(reflect.TypeFor[tagged]())
	assert.Same(t, e1, e2) // cached error, not rebuilt
}

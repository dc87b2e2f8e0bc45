package schema

import (
	"reflect"
	"unsafe"
)

// Field describes one record field and carries the kernels that copy and
// clear values of its type through raw pointers.
//
// Two kernel flavors exist. Pointer-free types move as plain bytes.
// Pointer-bearing types (strings, slices, maps, ...) go through reflect so
// the garbage collector's write barriers see every pointer store; writing
// such values as raw bytes into untyped memory would hide the pointees
// from the collector.
type Field struct {
	// Name is the Go field name.
	Name string
	// Type is the field's type.
	Type reflect.Type
	// Index is the field's position in declaration order.
	Index int
	// Size is Type.Size().
	Size uintptr
	// Align is the required alignment of the field type.
	Align uintptr
	// Offset is the field's byte offset within the record struct.
	Offset uintptr

	hasPtr bool
	copyFn func(dst, src unsafe.Pointer)
	zeroFn func(p unsafe.Pointer)
}

func newField(index int, sf reflect.StructField) Field {
	t := sf.Type
	f := Field{
		Name:   sf.Name,
		Type:   t,
		Index:  index,
		Size:   t.Size(),
		Align:  uintptr(t.Align()),
		Offset: sf.Offset,
		hasPtr: hasPointers(t),
	}

	size := f.Size
	if f.hasPtr {
		f.copyFn = func(dst, src unsafe.Pointer) {
			reflect.NewAt(t, dst).Elem().Set(reflect.NewAt(t, src).Elem())
		}
		f.zeroFn = func(p unsafe.Pointer) {
			reflect.NewAt(t, p).Elem().SetZero()
		}
	} else {
		f.copyFn = func(dst, src unsafe.Pointer) {
			copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(src), size))
		}
		f.zeroFn = func(p unsafe.Pointer) {
			clear(unsafe.Slice((*byte)(p), size))
		}
	}

	return f
}

// HasPointers reports whether values of this field type contain pointers
// the garbage collector must track.
func (f *Field) HasPointers() bool { return f.hasPtr }

// Copy copies one value of the field type from src to dst.
func (f *Field) Copy(dst, src unsafe.Pointer) { f.copyFn(dst, src) }

// Zero clears one value of the field type at p.
func (f *Field) Zero(p unsafe.Pointer) { f.zeroFn(p) }

// CopyRange copies n consecutive values of the field type from src to dst.
// The ranges must not overlap.
func (f *Field) CopyRange(dst, src unsafe.Pointer, n int) {
	if n == 0 {
		return
	}
	if !f.hasPtr {
		nb := uintptr(n) * f.Size
		copy(unsafe.Slice((*byte)(dst), nb), unsafe.Slice((*byte)(src), nb))
		return
	}
	for i := 0; i < n; i++ {
		off := uintptr(i) * f.Size
		f.copyFn(unsafe.Add(dst, off), unsafe.Add(src, off))
	}
}

// ZeroRange clears n consecutive values of the field type starting at p.
func (f *Field) ZeroRange(p unsafe.Pointer, n int) {
	if n == 0 {
		return
	}
	if !f.hasPtr {
		clear(unsafe.Slice((*byte)(p), uintptr(n)*f.Size))
		return
	}
	for i := 0; i < n; i++ {
		f.zeroFn(unsafe.Add(p, uintptr(i)*f.Size))
	}
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
		reflect.Pointer, reflect.Slice, reflect.String, reflect.UnsafePointer:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

package soa

import (
	"iter"
	"reflect"
	"unsafe"

	"github.com/hupe1980/soa/schema"
)

// Span is a typed, non-owning view over one field run.
//
// A Span stores no length and no run pointer of its own: it holds a
// back-reference to the container state and resolves both on every
// access, so it always agrees with the container's current length and
// survives reallocation. Only slices obtained from Slice alias a specific
// allocation and go stale on growth.
type Span[F any] struct {
	h *header
	f *schema.Field
}

// Field returns a typed view over field i of v's record type.
// F must be exactly the declared field type.
func Field[F any, T any](v *Vector[T], i int) (Span[F], error) {
	if i < 0 || i >= v.h.schema.Arity() {
		return Span[F]{}, &ErrOutOfRange{
			Name:  v.h.schema.Type().String(),
			Index: i,
			Size:  v.h.schema.Arity(),
		}
	}
	return newSpan[F](&v.h, v.h.schema.Field(i))
}

// FieldByName returns a typed view over the named field of v's record type.
func FieldByName[F any, T any](v *Vector[T], name string) (Span[F], error) {
	f, ok := v.h.schema.FieldByName(name)
	if !ok {
		return Span[F]{}, &ErrFieldNotFound{Field: name, Record: v.h.schema.Type()}
	}
	return newSpan[F](&v.h, f)
}

// MustField is like Field but panics on error. Intended for fields whose
// existence and type are statically known.
func MustField[F any, T any](v *Vector[T], i int) Span[F] {
	s, err := Field[F](v, i)
	if err != nil {
		panic(err)
	}
	return s
}

// MustFieldByName is like FieldByName but panics on error.
func MustFieldByName[F any, T any](v *Vector[T], name string) Span[F] {
	s, err := FieldByName[F](v, name)
	if err != nil {
		panic(err)
	}
	return s
}

func newSpan[F any](h *header, f *schema.Field) (Span[F], error) {
	want := reflect.TypeFor[F]()
	if f.Type != want {
		return Span[F]{}, &ErrTypeMismatch{Field: f.Name, Want: f.Type, Got: want}
	}
	return Span[F]{h: h, f: f}, nil
}

// Name returns the field name this span views.
func (s Span[F]) Name() string { return s.f.Name }

// Len returns the owning container's current length.
func (s Span[F]) Len() int { return s.h.length }

func (s Span[F]) ptr(i int) unsafe.Pointer {
	return unsafe.Add(s.h.block.runs[s.f.Index], uintptr(i)*s.f.Size)
}

// Get returns the value at slot i. No bounds check: reading past Len() is
// undefined.
func (s Span[F]) Get(i int) F {
	return *(*F)(s.ptr(i))
}

// Set stores val at slot i. No bounds check.
func (s Span[F]) Set(i int, val F) {
	*(*F)(s.ptr(i)) = val
}

// Ptr returns a pointer to slot i, valid until the container reallocates.
// No bounds check.
func (s Span[F]) Ptr(i int) *F {
	return (*F)(s.ptr(i))
}

// At returns the value at slot i, or an *ErrOutOfRange carrying the field
// name, the index and the current length.
func (s Span[F]) At(i int) (F, error) {
	if i < 0 || i >= s.h.length {
		var zero F
		return zero, &ErrOutOfRange{Name: s.f.Name, Index: i, Size: s.h.length}
	}
	return s.Get(i), nil
}

// SetAt stores val at slot i, or returns an *ErrOutOfRange.
func (s Span[F]) SetAt(i int, val F) error {
	if i < 0 || i >= s.h.length {
		return &ErrOutOfRange{Name: s.f.Name, Index: i, Size: s.h.length}
	}
	s.Set(i, val)
	return nil
}

// Front returns the first value. Undefined on an empty container.
func (s Span[F]) Front() F { return s.Get(0) }

// Back returns the last value. Undefined on an empty container.
func (s Span[F]) Back() F { return s.Get(s.h.length - 1) }

// Slice exposes the live range of the run as a []F aliasing the current
// allocation. The slice is invalidated by any operation that reallocates
// or shrinks the container; do not hold it across mutations.
func (s Span[F]) Slice() []F {
	if s.h.length == 0 {
		return nil
	}
	return unsafe.Slice((*F)(s.h.block.runs[s.f.Index]), s.h.length)
}

// All iterates the live values of the run in index order.
func (s Span[F]) All() iter.Seq2[int, F] {
	return func(yield func(int, F) bool) {
		for i := 0; i < s.h.length; i++ {
			if !yield(i, s.Get(i)) {
				return
			}
		}
	}
}

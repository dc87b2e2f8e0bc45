package soa

import (
	"reflect"
	"unsafe"
)

// Ref is an ephemeral read-write proxy for one record: a bundle of
// per-field references at a fixed index, assembled on demand. A Ref is
// invalidated by any operation that reallocates or shrinks the container.
type Ref[T any] struct {
	h   *header
	idx int
}

// Index returns the record index this proxy refers to.
func (r Ref[T]) Index() int { return r.idx }

// Value assembles and returns a copy of the record, reading each field
// run in declaration order.
func (r Ref[T]) Value() T {
	var rec T
	r.h.gather(unsafe.Pointer(&rec), r.idx)
	return rec
}

// Set replaces the record, assigning each field in declaration order.
func (r Ref[T]) Set(rec T) {
	r.h.scatter(r.idx, unsafe.Pointer(&rec))
}

// ReadOnly downgrades the proxy to its read-only counterpart.
func (r Ref[T]) ReadOnly() CRef[T] {
	return CRef[T]{h: r.h, idx: r.idx}
}

// CRef is the read-only counterpart of Ref: it exposes only the
// conversion back to a record value.
type CRef[T any] struct {
	h   *header
	idx int
}

// Index returns the record index this proxy refers to.
func (r CRef[T]) Index() int { return r.idx }

// Value assembles and returns a copy of the record.
func (r CRef[T]) Value() T {
	var rec T
	r.h.gather(unsafe.Pointer(&rec), r.idx)
	return rec
}

// FieldPtr returns a typed mutable pointer to field i of the record r
// refers to. F must be exactly the declared field type. The pointer is
// valid until the container reallocates.
func FieldPtr[F any, T any](r Ref[T], i int) (*F, error) {
	if i < 0 || i >= r.h.schema.Arity() {
		return nil, &ErrOutOfRange{
			Name:  r.h.schema.Type().String(),
			Index: i,
			Size:  r.h.schema.Arity(),
		}
	}
	f := r.h.schema.Field(i)
	if want := reflect.TypeFor[F](); f.Type != want {
		return nil, &ErrTypeMismatch{Field: f.Name, Want: f.Type, Got: want}
	}
	return (*F)(r.h.slot(i, r.idx)), nil
}

// FieldPtrByName is FieldPtr with a field name lookup.
func FieldPtrByName[F any, T any](r Ref[T], name string) (*F, error) {
	f, ok := r.h.schema.FieldByName(name)
	if !ok {
		return nil, &ErrFieldNotFound{Field: name, Record: r.h.schema.Type()}
	}
	if want := reflect.TypeFor[F](); f.Type != want {
		return nil, &ErrTypeMismatch{Field: f.Name, Want: f.Type, Got: want}
	}
	return (*F)(r.h.slot(f.Index, r.idx)), nil
}

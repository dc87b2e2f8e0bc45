package soa

import (
	"fmt"
	"reflect"
)

// ErrOutOfRange indicates a checked access past the current length.
//
// Name identifies the accessor: the record type for container-level access,
// the field name for span-level access.
type ErrOutOfRange struct {
	Name  string
	Index int
	Size  int
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("soa: out of range: %s.At(%d) while size = %d", e.Name, e.Index, e.Size)
}

// ErrTypeMismatch indicates a typed field view requested with the wrong
// element type.
type ErrTypeMismatch struct {
	Field string
	Want  reflect.Type // declared field type
	Got   reflect.Type // requested element type
}

func (e *ErrTypeMismatch) Error() string {
	return fmt.Sprintf("soa: field %q has type %s, requested %s", e.Field, e.Want, e.Got)
}

// ErrFieldNotFound indicates a field name lookup that matched nothing.
type ErrFieldNotFound struct {
	Field  string
	Record reflect.Type
}

func (e *ErrFieldNotFound) Error() string {
	return fmt.Sprintf("soa: %s has no field %q", e.Record, e.Field)
}

// Package schema derives ordered field descriptors from flat record types.
//
// A Schema is the declaration-time contract between a record type and the
// structure-of-arrays container: it fixes the field order, each field's
// size and alignment, and the kernels used to copy and clear field values
// through raw pointers. Schemas are immutable once built and cached per
// record type.
package schema

import (
	"errors"
	"fmt"
	"hash/fnv"
	"reflect"
	"sync"
)

var (
	// ErrNotStruct is returned when the record type is not a struct.
	ErrNotStruct = errors.New("schema: record type is not a struct")

	// ErrNoFields is returned when the record type declares no fields.
	ErrNoFields = errors.New("schema: record type has no fields")

	// ErrEmbeddedField is returned for records with embedded (anonymous) fields.
	ErrEmbeddedField = errors.New("schema: embedded fields are not supported")

	// ErrArrayField is returned for records with fixed-size array fields.
	ErrArrayField = errors.New("schema: fixed-size array fields are not supported")
)

// Schema is the ordered field descriptor set of one record type.
type Schema struct {
	typ    reflect.Type
	fields []Field
	hash   uint64
}

var cache sync.Map // reflect.Type -> *Schema

// Of derives the Schema of the given record type.
//
// The type must be a struct whose fields are all named (no embedding) and
// none of which is a fixed-size array. Results are cached; repeated calls
// for the same type return the same Schema.
func Of(t reflect.Type) (*Schema, error) {
	if cached, ok := cache.Load(t); ok {
		return cached.(*Schema), nil
	}

	s, err := build(t)
	if err != nil {
		return nil, err
	}

	actual, _ := cache.LoadOrStore(t, s)
	return actual.(*Schema), nil
}

// MustOf is like Of but panics on invalid record types.
// Intended for package-level registration of known-good types.
func MustOf(t reflect.Type) *Schema {
	s, err := Of(t)
	if err != nil {
		panic(err)
	}
	return s
}

func build(t reflect.Type) (*Schema, error) {
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: %v", ErrNotStruct, t)
	}
	if t.NumField() == 0 {
		return nil, fmt.Errorf("%w: %v", ErrNoFields, t)
	}

	fields := make([]Field, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous {
			return nil, fmt.Errorf("%w: %v.%s", ErrEmbeddedField, t, sf.Name)
		}
		if sf.Type.Kind() == reflect.Array {
			return nil, fmt.Errorf("%w: %v.%s", ErrArrayField, t, sf.Name)
		}
		fields[i] = newField(i, sf)
	}

	return &Schema{
		typ:    t,
		fields: fields,
		hash:   hashFields(fields),
	}, nil
}

// hashFields computes a stable fingerprint of the field names and types,
// used to guard persisted blocks against shape drift.
func hashFields(fields []Field) uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d", len(fields))
	for i := range fields {
		f := &fields[i]
		fmt.Fprintf(h, "|%s:%s:%d:%d", f.Name, f.Type.String(), f.Size, f.Align)
	}
	return h.Sum64()
}

// Type returns the record type this schema was derived from.
func (s *Schema) Type() reflect.Type { return s.typ }

// Arity returns the number of fields.
func (s *Schema) Arity() int { return len(s.fields) }

// Fields returns the ordered field descriptors. The returned slice must
// not be modified.
func (s *Schema) Fields() []Field { return s.fields }

// Field returns the descriptor of the i-th field in declaration order.
func (s *Schema) Field(i int) *Field { return &s.fields[i] }

// FieldByName returns the descriptor of the named field.
func (s *Schema) FieldByName(name string) (*Field, bool) {
	for i := range s.fields {
		if s.fields[i].Name == name {
			return &s.fields[i], true
		}
	}
	return nil, false
}

// Hash returns a stable fingerprint of the schema shape
// (field names, types, sizes and alignments, in order).
func (s *Schema) Hash() uint64 { return s.hash }

func (s *Schema) String() string {
	return fmt.Sprintf("Schema(%v, arity=%d)", s.typ, len(s.fields))
}

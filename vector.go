package soa

import (
	"iter"
	"reflect"
	"unsafe"

	"github.com/hupe1980/soa/schema"
)

// Vector stores records of type T in structure-of-arrays layout: one
// contiguous run per field, all runs sharing a single allocation. Whole
// records are pushed and popped as values; per-field access goes through
// typed spans (see Field) for dense, cache-friendly iteration.
//
// A Vector is a single logical resource owned by its value: Clone
// deep-copies, MoveFrom transfers the allocation and leaves the source
// valid and empty. Vectors are not safe for concurrent use; callers must
// serialize access.
//
// Allocation failure follows Go convention and aborts the program
// (the runtime panics before any container state is mutated).
type Vector[T any] struct {
	h header
}

// New creates an empty Vector for record type T.
// T must be a flat struct: named fields only, no embedding, no fixed-size
// array fields (see package schema for the exact contract).
func New[T any](opts ...Option) (*Vector[T], error) {
	s, err := schema.Of(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	v := &Vector[T]{h: header{
		schema:      s,
		logger:      o.logger,
		compression: o.compression,
	}}
	if o.capacity > 0 {
		v.h.block = allocBlock(s, o.capacity)
	}
	return v, nil
}

// MustNew is like New but panics on invalid record types.
func MustNew[T any](opts ...Option) *Vector[T] {
	v, err := New[T](opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// Len returns the number of records.
func (v *Vector[T]) Len() int { return v.h.length }

// Cap returns the number of records the current allocation can hold.
func (v *Vector[T]) Cap() int { return v.h.block.cap }

// Empty reports whether the vector holds no records.
func (v *Vector[T]) Empty() bool { return v.h.length == 0 }

// Arity returns the number of fields per record.
func (v *Vector[T]) Arity() int { return v.h.schema.Arity() }

// Schema returns the field descriptor set of T.
func (v *Vector[T]) Schema() *schema.Schema { return v.h.schema }

// SizeBytes returns the size of the current allocation in bytes.
func (v *Vector[T]) SizeBytes() int { return v.h.block.nbBytes }

// Reserve grows capacity to at least n. It is a no-op when n <= Cap().
// All spans keep working afterwards (they follow the current allocation);
// slices previously obtained from spans and outstanding cursors/proxies
// refer to the old allocation and must be re-acquired.
func (v *Vector[T]) Reserve(n int) { v.h.reserve(n) }

// ShrinkToFit reallocates to exactly Len() capacity.
// Equivalent to reserving exactly the current size.
func (v *Vector[T]) ShrinkToFit() {
	if v.h.length == v.h.block.cap {
		return
	}
	v.h.rehome(v.h.length)
}

// Append adds one record, copying each of its fields into the
// corresponding run in declaration order. Amortized O(1): a full vector
// doubles its capacity (1, 2, 4, 8, ... from empty).
func (v *Vector[T]) Append(rec T) {
	v.h.ensureAppend()
	v.h.scatter(v.h.length, unsafe.Pointer(&rec))
	v.h.length++
}

// AppendAll adds the given records in order.
func (v *Vector[T]) AppendAll(recs ...T) {
	for i := range recs {
		v.Append(recs[i])
	}
}

// Emplace appends a zero-valued record and returns a read-write proxy for
// constructing its fields in place.
func (v *Vector[T]) Emplace() Ref[T] {
	v.h.ensureAppend()
	// Slots past the length are kept zero-valued, so the new record needs
	// no explicit initialization.
	v.h.length++
	return Ref[T]{h: &v.h, idx: v.h.length - 1}
}

// Pop removes the last record. The length is decremented first, then the
// vacated slot of every field run is cleared in declaration order.
// Pop panics on an empty vector.
func (v *Vector[T]) Pop() {
	if v.h.length == 0 {
		panic("soa: Pop on empty vector")
	}
	v.h.length--
	v.h.zeroRange(v.h.length, v.h.length+1)
}

// Clear removes all records, clearing every field run in declaration
// order. Capacity is unchanged.
func (v *Vector[T]) Clear() {
	v.h.zeroRange(0, v.h.length)
	v.h.length = 0
}

// Resize sets the length to n. Shrinking clears the removed slots of
// every field run; growing appends zero-valued records, reserving exactly
// n capacity if needed. Resize panics if n is negative.
func (v *Vector[T]) Resize(n int) {
	if n < 0 {
		panic("soa: Resize with negative length")
	}
	if n <= v.h.length {
		v.h.zeroRange(n, v.h.length)
		v.h.length = n
		return
	}
	v.h.reserve(n)
	// New slots are zero-valued already.
	v.h.length = n
}

// ResizeFill is Resize with grown slots copy-constructed from fill's
// corresponding field instead of zero-valued.
func (v *Vector[T]) ResizeFill(n int, fill T) {
	if n < 0 {
		panic("soa: Resize with negative length")
	}
	if n <= v.h.length {
		v.h.zeroRange(n, v.h.length)
		v.h.length = n
		return
	}
	v.h.reserve(n)

	fields := v.h.schema.Fields()
	src := unsafe.Pointer(&fill)
	for i := range fields {
		f := &fields[i]
		for idx := v.h.length; idx < n; idx++ {
			f.Copy(v.h.slot(i, idx), unsafe.Add(src, f.Offset))
		}
	}
	v.h.length = n
}

// Clone returns a deep copy with capacity equal to the source's length.
func (v *Vector[T]) Clone() *Vector[T] {
	out := &Vector[T]{h: header{
		schema:      v.h.schema,
		logger:      v.h.logger,
		compression: v.h.compression,
	}}
	if v.h.length > 0 {
		out.h.block = allocBlock(v.h.schema, v.h.length)
		fields := v.h.schema.Fields()
		for i := range fields {
			fields[i].CopyRange(out.h.block.runs[i], v.h.block.runs[i], v.h.length)
		}
		out.h.length = v.h.length
	}
	return out
}

// CopyFrom replaces this vector's contents with a deep copy of src,
// reusing the current allocation when its capacity suffices.
func (v *Vector[T]) CopyFrom(src *Vector[T]) {
	if v == src {
		return
	}
	v.h.zeroRange(0, v.h.length)
	if v.h.block.cap < src.h.length {
		v.h.block = allocBlock(v.h.schema, src.h.length)
	}
	fields := v.h.schema.Fields()
	for i := range fields {
		if src.h.length > 0 {
			fields[i].CopyRange(v.h.block.runs[i], src.h.block.runs[i], src.h.length)
		}
	}
	v.h.length = src.h.length
}

// MoveFrom transfers src's allocation into this vector. The previous
// contents of this vector are released; src is left valid and empty with
// zero capacity.
func (v *Vector[T]) MoveFrom(src *Vector[T]) {
	if v == src {
		return
	}
	v.h.block = src.h.block
	v.h.length = src.h.length
	src.h.block = block{}
	src.h.length = 0
}

// Index returns a read-write proxy for the record at i. No bounds check:
// access through a proxy with an out-of-range index is undefined.
func (v *Vector[T]) Index(i int) Ref[T] {
	return Ref[T]{h: &v.h, idx: i}
}

// At returns a read-write proxy for the record at i, or an *ErrOutOfRange
// carrying the record type, the index and the current length.
func (v *Vector[T]) At(i int) (Ref[T], error) {
	if err := v.h.checkIndex(i); err != nil {
		return Ref[T]{}, err
	}
	return Ref[T]{h: &v.h, idx: i}, nil
}

// Front returns a proxy for the first record. Undefined on an empty vector.
func (v *Vector[T]) Front() Ref[T] { return v.Index(0) }

// Back returns a proxy for the last record. Undefined on an empty vector.
func (v *Vector[T]) Back() Ref[T] { return v.Index(v.h.length - 1) }

// Get returns the record at i, assembled from every field run, or an
// *ErrOutOfRange.
func (v *Vector[T]) Get(i int) (T, error) {
	var rec T
	if err := v.h.checkIndex(i); err != nil {
		return rec, err
	}
	v.h.gather(unsafe.Pointer(&rec), i)
	return rec, nil
}

// Set replaces the record at i field by field, or returns an
// *ErrOutOfRange.
func (v *Vector[T]) Set(i int, rec T) error {
	if err := v.h.checkIndex(i); err != nil {
		return err
	}
	v.h.scatter(i, unsafe.Pointer(&rec))
	return nil
}

// All iterates the records in index order, assembling each value on the
// fly. The vector must not be mutated during iteration.
func (v *Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < v.h.length; i++ {
			var rec T
			v.h.gather(unsafe.Pointer(&rec), i)
			if !yield(i, rec) {
				return
			}
		}
	}
}

// Refs iterates read-write proxies in index order. The vector must not be
// structurally mutated (grown, shrunk, popped) during iteration.
func (v *Vector[T]) Refs() iter.Seq2[int, Ref[T]] {
	return func(yield func(int, Ref[T]) bool) {
		for i := 0; i < v.h.length; i++ {
			if !yield(i, Ref[T]{h: &v.h, idx: i}) {
				return
			}
		}
	}
}

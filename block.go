package soa

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/hupe1980/soa/internal/layout"
	"github.com/hupe1980/soa/schema"
)

// block is one allocation holding every field run of a container.
//
// The allocation is materialized as a dynamic struct
// struct{ F0 [cap]T0; F1 [cap]T1; ... } so the garbage collector has a
// precise pointer map for pointer-bearing field types. Go's struct layout
// rule is the same recurrence the layout planner uses, which is asserted
// on every allocation.
type block struct {
	ref     reflect.Value    // roots the allocation; zero Value when cap == 0
	runs    []unsafe.Pointer // per-field run base pointers; nil when cap == 0
	cap     int
	nbBytes int
}

// allocBlock allocates an uninitialized (zero-valued) block with room for
// n records. n <= 0 yields an empty block with no allocation.
func allocBlock(s *schema.Schema, n int) block {
	if n <= 0 {
		return block{}
	}

	fields := s.Fields()
	layoutFields := make([]layout.Field, len(fields))
	structFields := make([]reflect.StructField, len(fields))
	for i := range fields {
		f := &fields[i]
		layoutFields[i] = layout.Field{Size: f.Size, Align: f.Align}
		structFields[i] = reflect.StructField{
			Name: fmt.Sprintf("F%d", i),
			Type: reflect.ArrayOf(n, f.Type),
		}
	}

	plan := layout.Compute(layoutFields, n)
	blockType := reflect.StructOf(structFields)

	// The plan is authoritative for the run base pointers; a disagreement
	// with the runtime's own layout would corrupt memory.
	for i := range fields {
		if off := blockType.Field(i).Offset; off != plan.Offsets[i] {
			panic(fmt.Sprintf(
				"soa: layout plan disagrees with runtime: field %d at offset %d, plan says %d",
				i, off, plan.Offsets[i],
			))
		}
	}

	ref := reflect.New(blockType)
	base := ref.UnsafePointer()
	runs := make([]unsafe.Pointer, len(fields))
	for i := range runs {
		runs[i] = unsafe.Add(base, plan.Offsets[i])
	}

	return block{
		ref:     ref,
		runs:    runs,
		cap:     n,
		nbBytes: int(blockType.Size()),
	}
}

// header is the record-type-erased state shared by Vector, Span, Ref and
// Cursor. Spans and proxies hold a back-reference to it instead of caching
// run pointers, so they always observe the current length and allocation.
//
// Invariant: every field run holds exactly length live values; slots in
// [length, cap) hold the zero value of their field type. Pop, Clear and
// shrinking Resize clear vacated slots to keep this true, which is also
// what lets the collector reclaim memory referenced by removed records.
type header struct {
	schema      *schema.Schema
	logger      *Logger
	compression CompressionType
	block       block
	length      int
}

// slot returns a pointer to slot idx of field i's run. No bounds check.
func (h *header) slot(field, idx int) unsafe.Pointer {
	f := h.schema.Field(field)
	return unsafe.Add(h.block.runs[field], uintptr(idx)*f.Size)
}

// gather assembles the record at idx into dst, one field at a time in
// declaration order.
func (h *header) gather(dst unsafe.Pointer, idx int) {
	fields := h.schema.Fields()
	for i := range fields {
		f := &fields[i]
		f.Copy(unsafe.Add(dst, f.Offset), h.slot(i, idx))
	}
}

// scatter writes the record at src into slot idx of every field run, in
// declaration order.
func (h *header) scatter(idx int, src unsafe.Pointer) {
	fields := h.schema.Fields()
	for i := range fields {
		f := &fields[i]
		f.Copy(h.slot(i, idx), unsafe.Add(src, f.Offset))
	}
}

// rehome reallocates the block to capacity n >= length and migrates the
// live range of every field run, one field at a time in declaration order.
// The old block stays intact until the new one is fully populated, then is
// released to the collector when the new block is installed.
func (h *header) rehome(n int) {
	next := allocBlock(h.schema, n)

	fields := h.schema.Fields()
	for i := range fields {
		if h.length > 0 {
			fields[i].CopyRange(next.runs[i], h.block.runs[i], h.length)
		}
	}

	h.logger.LogGrow(h.schema.Type().String(), h.block.cap, next.cap, h.length)
	h.block = next
}

// reserve grows capacity to at least n. No-op when n <= cap.
func (h *header) reserve(n int) {
	if n <= h.block.cap {
		return
	}
	h.rehome(n)
}

// ensureAppend makes room for one more record, doubling capacity when full.
func (h *header) ensureAppend() {
	if h.length < h.block.cap {
		return
	}
	next := h.block.cap * 2
	if next == 0 {
		next = 1
	}
	h.rehome(next)
}

// checkIndex validates a container-level index against the current length.
func (h *header) checkIndex(idx int) error {
	if idx < 0 || idx >= h.length {
		return &ErrOutOfRange{
			Name:  h.schema.Type().String(),
			Index: idx,
			Size:  h.length,
		}
	}
	return nil
}

// zeroRange clears slots [from, to) of every field run in declaration order.
func (h *header) zeroRange(from, to int) {
	if from >= to {
		return
	}
	fields := h.schema.Fields()
	for i := range fields {
		fields[i].ZeroRange(h.slot(i, from), to-from)
	}
}

// Package layout computes byte offsets for structure-of-arrays blocks.
//
// A block packs one contiguous run per record field into a single
// allocation. Runs are laid out in field declaration order; each run
// starts at the smallest offset past the previous run that satisfies the
// field type's alignment.
package layout

// Field describes the size and alignment of one record field type.
type Field struct {
	Size  uintptr
	Align uintptr
}

// Plan is the result of laying out field runs for a given run length.
type Plan struct {
	// Offsets[i] is the byte offset of field i's run within the block.
	Offsets []uintptr
	// Total is the number of bytes needed for all runs. It carries no
	// trailing padding.
	Total uintptr
}

// AlignUp rounds n up to the next multiple of align.
// align must be a power of two.
func AlignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// Compute lays out one run of length n per field.
//
// Offsets satisfy: Offsets[0] == 0, and Offsets[i] is the smallest
// multiple of fields[i].Align that is >= Offsets[i-1] + n*fields[i-1].Size.
// Total is Offsets[len-1] + n*fields[len-1].Size.
//
// n == 0 is valid and produces a plan with Total equal to the accumulated
// alignment padding (zero in practice, since empty runs occupy no bytes).
func Compute(fields []Field, n int) Plan {
	offsets := make([]uintptr, len(fields))

	var end uintptr
	for i, f := range fields {
		off := AlignUp(end, f.Align)
		offsets[i] = off
		end = off + uintptr(n)*f.Size
	}

	return Plan{Offsets: offsets, Total: end}
}

package soa

// Cursor is a random-access position in a vector. Dereferencing assembles
// a proxy from the field runs at the current index; arithmetic and
// comparison operate on the index alone. Comparing cursors from different
// vectors is a logic error and is not checked.
//
// Any growth, shrink or destructive mutation of the vector invalidates
// outstanding cursors, matching contiguous-array iterator rules.
type Cursor[T any] struct {
	h   *header
	idx int
}

// Begin returns a cursor at index 0.
func (v *Vector[T]) Begin() Cursor[T] { return Cursor[T]{h: &v.h, idx: 0} }

// End returns a cursor one past the last record.
func (v *Vector[T]) End() Cursor[T] { return Cursor[T]{h: &v.h, idx: v.h.length} }

// CursorAt returns a cursor at index i. The index is not validated;
// dereferencing an out-of-range cursor is undefined.
func (v *Vector[T]) CursorAt(i int) Cursor[T] { return Cursor[T]{h: &v.h, idx: i} }

// Index returns the cursor's position.
func (c Cursor[T]) Index() int { return c.idx }

// Next returns a cursor advanced by one.
func (c Cursor[T]) Next() Cursor[T] { return Cursor[T]{h: c.h, idx: c.idx + 1} }

// Prev returns a cursor moved back by one.
func (c Cursor[T]) Prev() Cursor[T] { return Cursor[T]{h: c.h, idx: c.idx - 1} }

// Add returns a cursor advanced by n (n may be negative).
func (c Cursor[T]) Add(n int) Cursor[T] { return Cursor[T]{h: c.h, idx: c.idx + n} }

// Sub returns a cursor moved back by n.
func (c Cursor[T]) Sub(n int) Cursor[T] { return Cursor[T]{h: c.h, idx: c.idx - n} }

// Diff returns the index distance c - other.
func (c Cursor[T]) Diff(other Cursor[T]) int { return c.idx - other.idx }

// Equal reports whether both cursors are at the same index.
func (c Cursor[T]) Equal(other Cursor[T]) bool { return c.idx == other.idx }

// Less reports whether c is positioned before other.
func (c Cursor[T]) Less(other Cursor[T]) bool { return c.idx < other.idx }

// Deref returns a read-write proxy for the record at the cursor.
func (c Cursor[T]) Deref() Ref[T] { return Ref[T]{h: c.h, idx: c.idx} }

// Value assembles and returns a copy of the record at the cursor.
func (c Cursor[T]) Value() T { return c.Deref().Value() }

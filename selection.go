package soa

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Selection is a set of record indices, backed by a roaring bitmap.
// It is derived state: like cursors and proxies, a selection is only
// meaningful against the container state it was built from, and goes
// stale when the container is mutated.
type Selection struct {
	bm *roaring.Bitmap
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{bm: roaring.New()}
}

// Select builds a selection of all indices whose field value satisfies
// pred, scanning the span's run densely.
func Select[F any](s Span[F], pred func(F) bool) *Selection {
	sel := NewSelection()
	for i := 0; i < s.Len(); i++ {
		if pred(s.Get(i)) {
			sel.bm.Add(uint32(i))
		}
	}
	return sel
}

// Add adds index i to the selection.
func (s *Selection) Add(i int) { s.bm.Add(uint32(i)) }

// Remove removes index i from the selection.
func (s *Selection) Remove(i int) { s.bm.Remove(uint32(i)) }

// Contains reports whether index i is selected.
func (s *Selection) Contains(i int) bool { return s.bm.Contains(uint32(i)) }

// Cardinality returns the number of selected indices.
func (s *Selection) Cardinality() uint64 { return s.bm.GetCardinality() }

// IsEmpty reports whether nothing is selected.
func (s *Selection) IsEmpty() bool { return s.bm.IsEmpty() }

// And intersects this selection with other in place.
func (s *Selection) And(other *Selection) { s.bm.And(other.bm) }

// Or unions this selection with other in place.
func (s *Selection) Or(other *Selection) { s.bm.Or(other.bm) }

// AndNot removes other's indices from this selection in place.
func (s *Selection) AndNot(other *Selection) { s.bm.AndNot(other.bm) }

// Clone returns a deep copy of the selection.
func (s *Selection) Clone() *Selection {
	return &Selection{bm: s.bm.Clone()}
}

// Indices iterates the selected indices in ascending order.
func (s *Selection) Indices() iter.Seq[int] {
	return func(yield func(int) bool) {
		it := s.bm.Iterator()
		for it.HasNext() {
			if !yield(int(it.Next())) {
				return
			}
		}
	}
}

// Gather assembles the selected records of v in ascending index order.
// Indices past v.Len() are a logic error (the selection is stale) and
// cause undefined results.
func Gather[T any](v *Vector[T], sel *Selection) []T {
	out := make([]T, 0, sel.Cardinality())
	for i := range sel.Indices() {
		out = append(out, v.Index(i).Value())
	}
	return out
}

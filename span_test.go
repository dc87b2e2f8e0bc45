package soa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestField(t *testing.T) {
	v := MustNew[person]()
	v.AppendAll(person{Name: "a", Age: 1}, person{Name: "b", Age: 2})

	t.Run("by index", func(t *testing.T) {
		names, err := Field[string](v, 0)
		require.NoError(t, err)
		assert.Equal(t, "Name", names.Name())
		assert.Equal(t, "a", names.Get(0))
	})

	t.Run("by name", func(t *testing.T) {
		ages, err := FieldByName[int32](v, "Age")
		require.NoError(t, err)
		assert.Equal(t, int32(2), ages.Get(1))
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := Field[string](v, 2)
		var oor *ErrOutOfRange
		require.ErrorAs(t, err, &oor)

		_, err = Field[string](v, -1)
		require.Error(t, err)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := FieldByName[string](v, "Email")
		var nf *ErrFieldNotFound
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "Email", nf.Field)
	})

	t.Run("type mismatch", func(t *testing.T) {
		_, err := Field[int64](v, 1)
		var tm *ErrTypeMismatch
		require.ErrorAs(t, err, &tm)
		assert.Equal(t, "Age", tm.Field)

		assert.Panics(t, func() { MustField[int64](v, 1) })
		assert.Panics(t, func() { MustFieldByName[float32](v, "Age") })
	})
}

func TestSpanTracksLength(t *testing.T) {
	v := MustNew[person]()
	ages := MustFieldByName[int32](v, "Age")
	assert.Equal(t, 0, ages.Len())

	v.Append(person{Name: "a", Age: 1})
	assert.Equal(t, 1, ages.Len())

	v.Pop()
	assert.Equal(t, 0, ages.Len())
}

func TestSpanSurvivesGrowth(t *testing.T) {
	v := MustNew[person]()
	ages := MustFieldByName[int32](v, "Age")

	// Enough appends to force several relocations.
	for i := 0; i < 100; i++ {
		v.Append(person{Name: "p", Age: int32(i)})
	}

	require.Equal(t, 100, ages.Len())
	for i := 0; i < 100; i++ {
		assert.Equal(t, int32(i), ages.Get(i))
	}
}

func TestSpanGetSet(t *testing.T) {
	v := MustNew[person]()
	v.AppendAll(person{Name: "a", Age: 1}, person{Name: "b", Age: 2})

	names := MustField[string](v, 0)
	names.Set(0, "renamed")
	assert.Equal(t, "renamed", names.Get(0))

	got, err := v.Get(0)
	require.NoError(t, err)
	assert.Equal(t, person{Name: "renamed", Age: 1}, got)
}

func TestSpanAt(t *testing.T) {
	v := MustNew[person]()
	v.Append(person{Name: "a", Age: 1})
	ages := MustFieldByName[int32](v, "Age")

	got, err := ages.At(0)
	require.NoError(t, err)
	assert.Equal(t, int32(1), got)

	_, err = ages.At(1)
	var oor *ErrOutOfRange
	require.ErrorAs(t, err, &oor)
	assert.Equal(t, "Age", oor.Name)
	assert.Equal(t, 1, oor.Index)
	assert.Equal(t, 1, oor.Size)
	assert.EqualError(t, err, "soa: out of range: Age.At(1) while size = 1")

	require.NoError(t, ages.SetAt(0, 5))
	require.Error(t, ages.SetAt(-1, 5))
}

func TestSpanPtr(t *testing.T) {
	v := MustNew[person]()
	v.Append(person{Name: "a", Age: 1})

	ages := MustFieldByName[int32](v, "Age")
	*ages.Ptr(0) = 77

	got, err := v.Get(0)
	require.NoError(t, err)
	assert.Equal(t, int32(77), got.Age)
}

func TestSpanFrontBack(t *testing.T) {
	v := MustNew[person]()
	v.AppendAll(person{Name: "x", Age: 10}, person{Name: "y", Age: 20})

	names := MustField[string](v, 0)
	assert.Equal(t, "x", names.Front())
	assert.Equal(t, "y", names.Back())
}

func TestSpanSlice(t *testing.T) {
	v := MustNew[person]()
	assert.Nil(t, MustFieldByName[int32](v, "Age").Slice())

	v.AppendAll(person{Name: "a", Age: 1}, person{Name: "b", Age: 2}, person{Name: "c", Age: 3})

	ages := MustFieldByName[int32](v, "Age")
	s := ages.Slice()
	require.Equal(t, []int32{1, 2, 3}, s)

	// The slice aliases the run: writes are visible both ways.
	s[1] = 99
	assert.Equal(t, int32(99), ages.Get(1))
}

func TestSpanAll(t *testing.T) {
	v := MustNew[person]()
	v.AppendAll(person{Name: "a", Age: 1}, person{Name: "b", Age: 2})

	var got []string
	for i, name := range MustField[string](v, 0).All() {
		assert.Equal(t, len(got), i)
		got = append(got, name)
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

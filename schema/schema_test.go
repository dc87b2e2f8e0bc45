package schema

import (
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name     string
	Age      int
	LikesCpp bool
}

type physics struct {
	Pos   float32
	Speed float32
	Acc   float32
	ID    int32
}

func TestOf(t *testing.T) {
	s, err := Of(reflect.TypeOf(person{}))
	require.NoError(t, err)

	assert.Equal(t, 3, s.Arity())
	assert.Equal(t, reflect.TypeOf(person{}), s.Type())

	names := []string{"Name", "Age", "LikesCpp"}
	for i, want := range names {
		f := s.Field(i)
		assert.Equal(t, want, f.Name)
		assert.Equal(t, i, f.Index)
		assert.Equal(t, f.Type.Size(), f.Size)
		assert.Equal(t, uintptr(f.Type.Align()), f.Align)
	}

	// Offsets must match the compiler's record layout.
	rt := reflect.TypeOf(person{})
	for i := 0; i < rt.NumField(); i++ {
		assert.Equal(t, rt.Field(i).Offset, s.Field(i).Offset)
	}
}

func TestOfCaches(t *testing.T) {
	s1, err := Of(reflect.TypeOf(physics{}))
	require.NoError(t, err)
	s2, err := Of(reflect.TypeOf(physics{}))
	require.NoError(t, err)
	assert.Same(t, s1, s2)
}

func TestOfRejectsInvalidTypes(t *testing.T) {
	type embedded struct {
		person
		X int
	}
	type withArray struct {
		Buf  int // not an array: keep declaration order realistic
		Vals [4]float32
	}
	type empty struct{}

	tests := []struct {
		name string
		typ  reflect.Type
		want error
	}{
		{"non-struct", reflect.TypeOf(42), ErrNotStruct},
		{"nil type", nil, ErrNotStruct},
		{"no fields", reflect.TypeOf(empty{}), ErrNoFields},
		{"embedded", reflect.TypeOf(embedded{}), ErrEmbeddedField},
		{"array field", reflect.TypeOf(withArray{}), ErrArrayField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Of(tt.typ)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFieldByName(t *testing.T) {
	s := MustOf(reflect.TypeOf(person{}))

	f, ok := s.FieldByName("Age")
	require.True(t, ok)
	assert.Equal(t, 1, f.Index)

	_, ok = s.FieldByName("Height")
	assert.False(t, ok)
}

func TestHasPointers(t *testing.T) {
	type inner struct{ S string }
	type outer struct {
		A int
		B inner
	}

	s := MustOf(reflect.TypeOf(outer{}))
	assert.False(t, s.Field(0).HasPointers())
	assert.True(t, s.Field(1).HasPointers())

	p := MustOf(reflect.TypeOf(physics{}))
	for i := 0; i < p.Arity(); i++ {
		assert.False(t, p.Field(i).HasPointers())
	}
}

func TestCopyAndZeroKernels(t *testing.T) {
	s := MustOf(reflect.TypeOf(person{}))
	name, _ := s.FieldByName("Name")
	age, _ := s.FieldByName("Age")

	src := "Alice"
	var dst string
	name.Copy(unsafe.Pointer(&dst), unsafe.Pointer(&src))
	assert.Equal(t, "Alice", dst)

	name.Zero(unsafe.Pointer(&dst))
	assert.Equal(t, "", dst)

	a, b := 13, 0
	age.Copy(unsafe.Pointer(&b), unsafe.Pointer(&a))
	assert.Equal(t, 13, b)
	age.Zero(unsafe.Pointer(&b))
	assert.Equal(t, 0, b)
}

func TestCopyRangeAndZeroRange(t *testing.T) {
	s := MustOf(reflect.TypeOf(person{}))
	name, _ := s.FieldByName("Name")
	age, _ := s.FieldByName("Age")

	srcNames := [3]string{"a", "b", "c"}
	var dstNames [3]string
	name.CopyRange(unsafe.Pointer(&dstNames[0]), unsafe.Pointer(&srcNames[0]), 3)
	assert.Equal(t, srcNames, dstNames)

	name.ZeroRange(unsafe.Pointer(&dstNames[0]), 2)
	assert.Equal(t, [3]string{"", "", "c"}, dstNames)

	srcAges := [4]int{1, 2, 3, 4}
	var dstAges [4]int
	age.CopyRange(unsafe.Pointer(&dstAges[0]), unsafe.Pointer(&srcAges[0]), 4)
	assert.Equal(t, srcAges, dstAges)

	age.ZeroRange(unsafe.Pointer(&dstAges[1]), 2)
	assert.Equal(t, [4]int{1, 0, 0, 4}, dstAges)
}

func TestHashStableAndShapeSensitive(t *testing.T) {
	type a struct {
		X int
		Y string
	}
	type b struct {
		X int
		Y string
	}
	type c struct {
		Y string
		X int
	}

	ha := MustOf(reflect.TypeOf(a{})).Hash()
	hb := MustOf(reflect.TypeOf(b{})).Hash()
	hc := MustOf(reflect.TypeOf(c{})).Hash()

	assert.Equal(t, ha, hb, "same shape must hash equal")
	assert.NotEqual(t, ha, hc, "field order must change the hash")
	assert.Equal(t, ha, MustOf(reflect.TypeOf(a{})).Hash())
}

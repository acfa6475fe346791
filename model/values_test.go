package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValuesEqual(t *testing.T) {
	t.Run("scalars", func(t *testing.T) {
		assert.True(t, ValuesEqual(Null{}, Null{}))
		assert.True(t, ValuesEqual(Boolean(true), Boolean(true)))
		assert.False(t, ValuesEqual(Boolean(true), Boolean(false)))
		assert.True(t, ValuesEqual(String("a"), String("a")))
		assert.False(t, ValuesEqual(String("a"), String("A")))
		assert.False(t, ValuesEqual(String("true"), Boolean(true)))
	})

	t.Run("numbers keep int and float identity", func(t *testing.T) {
		assert.True(t, ValuesEqual(Integer(1), Integer(1)))
		assert.True(t, ValuesEqual(Float(1.5), Float(1.5)))
		assert.False(t, ValuesEqual(Integer(1), Float(1)))
	})

	t.Run("arrays are order-sensitive", func(t *testing.T) {
		assert.True(t, ValuesEqual(Array{String("a"), String("b")}, Array{String("a"), String("b")}))
		assert.False(t, ValuesEqual(Array{String("a"), String("b")}, Array{String("b"), String("a")}))
		assert.False(t, ValuesEqual(Array{String("a")}, Array{String("a"), String("a")}))
	})

	t.Run("objects ignore key order", func(t *testing.T) {
		a := ObjectOf("x", Integer(1), "y", Integer(2))
		b := ObjectOf("y", Integer(2), "x", Integer(1))
		assert.True(t, ValuesEqual(a, b))

		c := ObjectOf("x", Integer(1), "y", Integer(3))
		assert.False(t, ValuesEqual(a, c))

		d := ObjectOf("x", Integer(1))
		assert.False(t, ValuesEqual(a, d))
	})

	t.Run("nested", func(t *testing.T) {
		a := ObjectOf("tags", Array{String("a")}, "meta", ObjectOf("n", Integer(1)))
		b := ObjectOf("meta", ObjectOf("n", Integer(1)), "tags", Array{String("a")})
		assert.True(t, ValuesEqual(a, b))
	})

	t.Run("nil handling", func(t *testing.T) {
		assert.True(t, ValuesEqual(nil, nil))
		assert.False(t, ValuesEqual(nil, Null{}))
	})
}

func TestObjectOrder(t *testing.T) {
	o := NewObject()
	o.Set("b", Integer(1))
	o.Set("a", Integer(2))
	o.Set("b", Integer(3)) // update keeps position

	assert.Equal(t, []string{"b", "a"}, o.Keys())
	v, ok := o.Get("b")
	assert.True(t, ok)
	assert.True(t, ValuesEqual(Integer(3), v))
}

func TestNumberAccessors(t *testing.T) {
	i := Integer(42)
	v, ok := i.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(42), v)
	assert.False(t, i.IsFloat())
	assert.Equal(t, "42", i.String())

	f := Float(2.5)
	_, ok = f.Int()
	assert.False(t, ok)
	assert.Equal(t, 2.5, f.AsFloat())
	assert.Equal(t, "2.5", f.String())
}

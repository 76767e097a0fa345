package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOf(t *testing.T) {
	assert.Equal(t, Null, Of(nil).Type())
	assert.Equal(t, Text, Of("hello").Type())
	assert.Equal(t, Number, Of(42).Type())
	assert.Equal(t, Number, Of(int64(42)).Type())
	assert.Equal(t, Number, Of(float32(0.5)).Type())
	assert.Equal(t, Boolean, Of(true).Type())
	assert.Equal(t, Location, Of(Pos{World: "w", X: 1}).Type())

	list := Of([]interface{}{1, "a", false})
	assert.Equal(t, List, list.Type())
	assert.Equal(t, 3, list.Len())
	first, ok := list.Index(0)
	assert.True(t, ok)
	assert.Equal(t, float64(1), first.Interface())

	m := Of(map[string]interface{}{"name": "steve", "level": 3})
	assert.Equal(t, Map, m.Type())
	name, ok := m.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "steve", name.String())

	assert.Equal(t, List, Of([]int{1, 2}).Type())
	assert.Equal(t, Map, Of(map[string]int{"a": 1}).Type())
}

func TestConversions(t *testing.T) {
	n, err := NewText(" 2.5 ").AsNumber()
	require.NoError(t, err)
	assert.Equal(t, 2.5, n)

	for _, text := range []string{"NaN", "Inf", "-inf", "+Infinity"} {
		_, err = NewText(text).AsNumber()
		assert.Error(t, err, text)
	}

	_, err = NewText("abc").AsNumber()
	var convErr *ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, Text, convErr.From)
	assert.Equal(t, Number, convErr.To)

	n, err = Nil.AsNumber()
	require.NoError(t, err)
	assert.Equal(t, float64(0), n)

	_, err = NewNumber(2.5).AsInt()
	assert.Error(t, err)
	i, err := NewText("7").AsInt()
	require.NoError(t, err)
	assert.Equal(t, 7, i)

	b, err := NewText("yes").AsBoolean()
	require.NoError(t, err)
	assert.True(t, b)
	b, err = NewNumber(0).AsBoolean()
	require.NoError(t, err)
	assert.False(t, b)
	_, err = NewText("maybe").AsBoolean()
	assert.Error(t, err)
	_, err = NewList().AsBoolean()
	assert.Error(t, err)

	l, err := NewNumber(1).AsList()
	require.NoError(t, err)
	assert.Len(t, l, 1)
	l, err = Nil.AsList()
	require.NoError(t, err)
	assert.Len(t, l, 0)
	_, err = NewMap(nil).AsList()
	assert.Error(t, err)

	s, err := NewNumber(3).AsString()
	require.NoError(t, err)
	assert.Equal(t, "3", s)

	_, err = NewText("x").AsLocation()
	assert.Error(t, err)
	ref, err := NewEntity(Ref{ID: "e1"}).AsRef()
	require.NoError(t, err)
	assert.Equal(t, "e1", ref.ID)
}

func TestConvert(t *testing.T) {
	v, err := Convert(NewText("5"), Number)
	require.NoError(t, err)
	assert.True(t, v.Equal(NewNumber(5)))

	v, err = Convert(NewNumber(5), Null)
	require.NoError(t, err)
	assert.Equal(t, Number, v.Type())

	_, err = Convert(NewText("five"), Number)
	assert.Error(t, err)

	_, err = Convert(NewText("x"), Entity)
	assert.Error(t, err)
}

func TestListIsImmutable(t *testing.T) {
	items := []Value{NewNumber(1), NewNumber(2)}
	list := NewList(items...)
	items[0] = NewNumber(100)
	first, _ := list.Index(0)
	assert.Equal(t, float64(1), first.Interface())

	copied, _ := list.AsList()
	copied[1] = NewNumber(200)
	second, _ := list.Index(1)
	assert.Equal(t, float64(2), second.Interface())
}

func TestCompare(t *testing.T) {
	c, err := Compare(NewNumber(2), NewText("10"))
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare(NewText("b"), NewText("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	_, err = Compare(NewList(), NewText("a"))
	assert.Error(t, err)

	assert.True(t, NewText("hello world").Contains(NewText("world")))
	assert.True(t, NewList(NewNumber(1), NewNumber(2)).Contains(NewNumber(2)))
	assert.False(t, NewNumber(1).Contains(NewNumber(1)))
}

func TestString(t *testing.T) {
	assert.Equal(t, "2.5", NewNumber(2.5).String())
	assert.Equal(t, "[1, a]", NewList(NewNumber(1), NewText("a")).String())
	assert.Equal(t, "{a: 1, b: 2}", NewMap(map[string]Value{"b": NewNumber(2), "a": NewNumber(1)}).String())
	assert.Equal(t, "world(1, 2.5, 3)", NewLocation(Pos{World: "world", X: 1, Y: 2.5, Z: 3}).String())
	assert.Equal(t, "", Nil.String())
}

func TestJSON(t *testing.T) {
	values := []Value{
		Nil,
		NewText("hi"),
		NewNumber(3),
		NewBool(true),
		NewList(NewNumber(1), NewText("a"), NewList(NewBool(false))),
		NewMap(map[string]Value{"k": NewText("v"), "n": NewNumber(1)}),
		NewLocation(Pos{World: "nether", X: 1, Y: 2, Z: 3, Yaw: 90}),
		NewItem(Ref{ID: "diamond_sword", Name: "Sword"}),
		NewEntity(Ref{ID: "uuid-1"}),
	}

	for _, v := range values {
		data, err := Encode(v)
		require.NoError(t, err)
		decoded, err := Decode(data)
		require.NoError(t, err, data)
		assert.True(t, v.Equal(decoded), "%s => %s", v.Type(), data)
		assert.Equal(t, v.Type(), decoded.Type())
	}

	data, err := Encode(NewNumber(3))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"number","value":3}`, data)

	_, err = Decode(`{"type":"nonsense","value":1}`)
	assert.Error(t, err)
}

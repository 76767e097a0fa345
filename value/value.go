package value

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/yaoapp/kun/any"
)

// Nil the null value
var Nil = Value{}

// NewText create a text value
func NewText(s string) Value { return Value{t: Text, s: s} }

// NewNumber create a number value
func NewNumber(n float64) Value { return Value{t: Number, n: n} }

// NewBool create a boolean value
func NewBool(b bool) Value { return Value{t: Boolean, b: b} }

// NewList create a list value, the items are copied
func NewList(items ...Value) Value {
	l := make([]Value, len(items))
	copy(l, items)
	return Value{t: List, l: l}
}

// NewMap create a map value, the entries are copied
func NewMap(entries map[string]Value) Value {
	m := make(map[string]Value, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return Value{t: Map, m: m}
}

// NewLocation create a location value
func NewLocation(pos Pos) Value { return Value{t: Location, pos: pos} }

// NewItem create an item reference
func NewItem(ref Ref) Value { return Value{t: Item, ref: ref} }

// NewEntity create an entity reference
func NewEntity(ref Ref) Value { return Value{t: Entity, ref: ref} }

// Of coerce a plain Go value
func Of(v interface{}) Value {
	switch val := v.(type) {
	case nil:
		return Nil
	case Value:
		return val
	case *Value:
		if val == nil {
			return Nil
		}
		return *val
	case string:
		return NewText(val)
	case bool:
		return NewBool(val)
	case int:
		return NewNumber(float64(val))
	case int8:
		return NewNumber(float64(val))
	case int16:
		return NewNumber(float64(val))
	case int32:
		return NewNumber(float64(val))
	case int64:
		return NewNumber(float64(val))
	case uint:
		return NewNumber(float64(val))
	case uint8:
		return NewNumber(float64(val))
	case uint16:
		return NewNumber(float64(val))
	case uint32:
		return NewNumber(float64(val))
	case uint64:
		return NewNumber(float64(val))
	case float32:
		return NewNumber(float64(val))
	case float64:
		return NewNumber(val)
	case Pos:
		return NewLocation(val)
	case *Pos:
		return NewLocation(*val)
	case []Value:
		return NewList(val...)
	case map[string]Value:
		return NewMap(val)
	case []interface{}:
		l := make([]Value, 0, len(val))
		for _, item := range val {
			l = append(l, Of(item))
		}
		return Value{t: List, l: l}
	case []string:
		l := make([]Value, 0, len(val))
		for _, item := range val {
			l = append(l, NewText(item))
		}
		return Value{t: List, l: l}
	case map[string]interface{}:
		m := make(map[string]Value, len(val))
		for k, item := range val {
			m[k] = Of(item)
		}
		return Value{t: Map, m: m}
	}

	if a := any.Of(v); a.IsNumber() {
		return NewNumber(a.CFloat())
	}

	rv := reflect.Indirect(reflect.ValueOf(v))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		l := make([]Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			l = append(l, Of(rv.Index(i).Interface()))
		}
		return Value{t: List, l: l}
	case reflect.Map:
		m := make(map[string]Value, rv.Len())
		for _, key := range rv.MapKeys() {
			m[fmt.Sprintf("%v", key.Interface())] = Of(rv.MapIndex(key).Interface())
		}
		return Value{t: Map, m: m}
	}
	return NewText(fmt.Sprintf("%v", v))
}

// Type the tag
func (v Value) Type() Type { return v.t }

// IsNull check if the value is absent
func (v Value) IsNull() bool { return v.t == Null }

// Len the number of items of a list or map, the length of a text
func (v Value) Len() int {
	switch v.t {
	case List:
		return len(v.l)
	case Map:
		return len(v.m)
	case Text:
		return len(v.s)
	}
	return 0
}

// AsString convert to text, every type has a text form
func (v Value) AsString() (string, error) {
	return v.String(), nil
}

// AsNumber convert to number
func (v Value) AsNumber() (float64, error) {
	switch v.t {
	case Number:
		return v.n, nil
	case Null:
		return 0, nil
	case Boolean:
		if v.b {
			return 1, nil
		}
		return 0, nil
	case Text:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, &ConversionError{From: v.t, To: Number, Value: v.s}
		}
		return n, nil
	}
	return 0, &ConversionError{From: v.t, To: Number, Value: v.String()}
}

// AsInt convert to an integer, fractional numbers are rejected
func (v Value) AsInt() (int, error) {
	n, err := v.AsNumber()
	if err != nil {
		return 0, err
	}
	if n != float64(int(n)) {
		return 0, &ConversionError{From: v.t, To: Number, Value: v.String()}
	}
	return int(n), nil
}

// AsBoolean convert to boolean
func (v Value) AsBoolean() (bool, error) {
	switch v.t {
	case Boolean:
		return v.b, nil
	case Null:
		return false, nil
	case Number:
		return v.n != 0, nil
	case Text:
		switch strings.ToLower(strings.TrimSpace(v.s)) {
		case "true", "yes", "on", "1":
			return true, nil
		case "false", "no", "off", "0", "":
			return false, nil
		}
		return false, &ConversionError{From: v.t, To: Boolean, Value: v.s}
	}
	return false, &ConversionError{From: v.t, To: Boolean, Value: v.String()}
}

// AsList convert to a list, scalars become a one-element list
func (v Value) AsList() ([]Value, error) {
	switch v.t {
	case List:
		l := make([]Value, len(v.l))
		copy(l, v.l)
		return l, nil
	case Null:
		return []Value{}, nil
	case Map:
		return nil, &ConversionError{From: v.t, To: List, Value: v.String()}
	}
	return []Value{v}, nil
}

// AsMap convert to a map
func (v Value) AsMap() (map[string]Value, error) {
	switch v.t {
	case Map:
		m := make(map[string]Value, len(v.m))
		for k, item := range v.m {
			m[k] = item
		}
		return m, nil
	case Null:
		return map[string]Value{}, nil
	}
	return nil, &ConversionError{From: v.t, To: Map, Value: v.String()}
}

// AsLocation the location payload
func (v Value) AsLocation() (Pos, error) {
	if v.t != Location {
		return Pos{}, &ConversionError{From: v.t, To: Location, Value: v.String()}
	}
	return v.pos, nil
}

// AsRef the item or entity reference
func (v Value) AsRef() (Ref, error) {
	if v.t != Item && v.t != Entity {
		return Ref{}, &ConversionError{From: v.t, To: Entity, Value: v.String()}
	}
	return v.ref, nil
}

// Convert coerce the value to the given type, Null means no constraint
func Convert(v Value, t Type) (Value, error) {
	if t == Null || v.t == t {
		return v, nil
	}

	switch t {
	case Text:
		s, _ := v.AsString()
		return NewText(s), nil
	case Number:
		n, err := v.AsNumber()
		if err != nil {
			return Nil, err
		}
		return NewNumber(n), nil
	case Boolean:
		b, err := v.AsBoolean()
		if err != nil {
			return Nil, err
		}
		return NewBool(b), nil
	case List:
		l, err := v.AsList()
		if err != nil {
			return Nil, err
		}
		return Value{t: List, l: l}, nil
	case Map:
		m, err := v.AsMap()
		if err != nil {
			return Nil, err
		}
		return Value{t: Map, m: m}, nil
	}
	return Nil, &ConversionError{From: v.t, To: t, Value: v.String()}
}

// Get look up a map entry
func (v Value) Get(key string) (Value, bool) {
	if v.t != Map {
		return Nil, false
	}
	item, has := v.m[key]
	return item, has
}

// Index look up a list item
func (v Value) Index(i int) (Value, bool) {
	if v.t != List || i < 0 || i >= len(v.l) {
		return Nil, false
	}
	return v.l[i], true
}

// Interface the plain Go form
func (v Value) Interface() interface{} {
	switch v.t {
	case Text:
		return v.s
	case Number:
		return v.n
	case Boolean:
		return v.b
	case List:
		l := make([]interface{}, 0, len(v.l))
		for _, item := range v.l {
			l = append(l, item.Interface())
		}
		return l
	case Map:
		m := make(map[string]interface{}, len(v.m))
		for k, item := range v.m {
			m[k] = item.Interface()
		}
		return m
	case Location:
		return map[string]interface{}{
			"world": v.pos.World, "x": v.pos.X, "y": v.pos.Y, "z": v.pos.Z,
			"yaw": v.pos.Yaw, "pitch": v.pos.Pitch,
		}
	case Item, Entity:
		return map[string]interface{}{"id": v.ref.ID, "name": v.ref.Name}
	}
	return nil
}

// Equal deep equality, numbers compare by value
func (v Value) Equal(other Value) bool {
	if v.t != other.t {
		return false
	}

	switch v.t {
	case Null:
		return true
	case Text:
		return v.s == other.s
	case Number:
		return v.n == other.n
	case Boolean:
		return v.b == other.b
	case List:
		if len(v.l) != len(other.l) {
			return false
		}
		for i := range v.l {
			if !v.l[i].Equal(other.l[i]) {
				return false
			}
		}
		return true
	case Map:
		if len(v.m) != len(other.m) {
			return false
		}
		for k, item := range v.m {
			o, has := other.m[k]
			if !has || !item.Equal(o) {
				return false
			}
		}
		return true
	case Location:
		return v.pos == other.pos
	case Item, Entity:
		return v.ref == other.ref
	}
	return false
}

// Compare order two values, numerically when both sides are numeric
func Compare(a, b Value) (int, error) {
	if a.t == Number || b.t == Number {
		x, err := a.AsNumber()
		if err != nil {
			return 0, err
		}
		y, err := b.AsNumber()
		if err != nil {
			return 0, err
		}
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	}

	if a.t == List || a.t == Map || b.t == List || b.t == Map {
		return 0, fmt.Errorf("cannot order %s and %s", a.t, b.t)
	}
	return strings.Compare(a.String(), b.String()), nil
}

// Contains text containment or list membership
func (v Value) Contains(item Value) bool {
	switch v.t {
	case Text:
		return strings.Contains(v.s, item.String())
	case List:
		for _, elem := range v.l {
			if elem.Equal(item) {
				return true
			}
		}
	case Map:
		_, has := v.m[item.String()]
		return has
	}
	return false
}

// String the display form
func (v Value) String() string {
	switch v.t {
	case Text:
		return v.s
	case Number:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case Boolean:
		return strconv.FormatBool(v.b)
	case List:
		items := make([]string, 0, len(v.l))
		for _, item := range v.l {
			items = append(items, item.String())
		}
		return "[" + strings.Join(items, ", ") + "]"
	case Map:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]string, 0, len(keys))
		for _, k := range keys {
			items = append(items, fmt.Sprintf("%s: %s", k, v.m[k].String()))
		}
		return "{" + strings.Join(items, ", ") + "}"
	case Location:
		return fmt.Sprintf("%s(%s, %s, %s)", v.pos.World,
			strconv.FormatFloat(v.pos.X, 'f', -1, 64),
			strconv.FormatFloat(v.pos.Y, 'f', -1, 64),
			strconv.FormatFloat(v.pos.Z, 'f', -1, 64))
	case Item, Entity:
		if v.ref.Name != "" {
			return v.ref.Name
		}
		return v.ref.ID
	}
	return ""
}

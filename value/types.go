package value

import (
	"fmt"
	"strings"
)

// Type the tag of a Value
type Type int

const (
	// Null absent value, the zero Value
	Null Type = iota

	// Text string payload
	Text

	// Number float64 payload
	Number

	// Boolean bool payload
	Boolean

	// List ordered values
	List

	// Map string keyed values
	Map

	// Location a position in a world
	Location

	// Item reference to an item stack
	Item

	// Entity reference to an entity
	Entity
)

var typeNames = map[Type]string{
	Null:     "null",
	Text:     "text",
	Number:   "number",
	Boolean:  "boolean",
	List:     "list",
	Map:      "map",
	Location: "location",
	Item:     "item",
	Entity:   "entity",
}

var typeAliases = map[string]Type{
	"":         Null,
	"any":      Null,
	"null":     Null,
	"text":     Text,
	"string":   Text,
	"number":   Number,
	"int":      Number,
	"integer":  Number,
	"float":    Number,
	"boolean":  Boolean,
	"bool":     Boolean,
	"list":     List,
	"array":    List,
	"map":      Map,
	"object":   Map,
	"location": Location,
	"item":     Item,
	"entity":   Entity,
}

// String the type name
func (t Type) String() string {
	if name, has := typeNames[t]; has {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

// ParseType parse a type name, "any" and "" yield Null (no constraint)
func ParseType(name string) (Type, error) {
	t, has := typeAliases[strings.ToLower(strings.TrimSpace(name))]
	if !has {
		return Null, fmt.Errorf("unknown value type %q", name)
	}
	return t, nil
}

// Pos a position in a world
type Pos struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float64 `json:"yaw,omitempty"`
	Pitch float64 `json:"pitch,omitempty"`
}

// Ref a reference to a host object (item stack or entity)
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Value the immutable tagged runtime value
type Value struct {
	t   Type
	s   string
	n   float64
	b   bool
	l   []Value
	m   map[string]Value
	pos Pos
	ref Ref
}

// ConversionError a value cannot be converted to the requested type
type ConversionError struct {
	From  Type
	To    Type
	Value string
}

func (err *ConversionError) Error() string {
	return fmt.Sprintf("cannot convert %s %q to %s", err.From, err.Value, err.To)
}

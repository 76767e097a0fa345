package value

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type envelope struct {
	Type  string              `json:"type"`
	Value jsoniter.RawMessage `json:"value,omitempty"`
}

// MarshalJSON encode as {"type": "...", "value": ...}
func (v Value) MarshalJSON() ([]byte, error) {
	var payload interface{}
	switch v.t {
	case Null:
		return []byte(`{"type":"null"}`), nil
	case Text:
		payload = v.s
	case Number:
		payload = v.n
	case Boolean:
		payload = v.b
	case List:
		payload = v.l
	case Map:
		payload = v.m
	case Location:
		payload = v.pos
	case Item, Entity:
		payload = v.ref
	default:
		return nil, fmt.Errorf("unknown value type %d", int(v.t))
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: v.t.String(), Value: raw})
}

// UnmarshalJSON decode the envelope form
func (v *Value) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	t, err := ParseType(env.Type)
	if err != nil {
		return err
	}

	out := Value{t: t}
	switch t {
	case Null:
	case Text:
		err = json.Unmarshal(env.Value, &out.s)
	case Number:
		err = json.Unmarshal(env.Value, &out.n)
	case Boolean:
		err = json.Unmarshal(env.Value, &out.b)
	case List:
		out.l = []Value{}
		err = json.Unmarshal(env.Value, &out.l)
	case Map:
		out.m = map[string]Value{}
		err = json.Unmarshal(env.Value, &out.m)
	case Location:
		err = json.Unmarshal(env.Value, &out.pos)
	case Item, Entity:
		err = json.Unmarshal(env.Value, &out.ref)
	}
	if err != nil {
		return fmt.Errorf("decode %s value: %w", t, err)
	}

	*v = out
	return nil
}

// Encode the JSON string form
func Encode(v Value) (string, error) {
	return json.MarshalToString(v)
}

// Decode parse the JSON string form
func Decode(data string) (Value, error) {
	var v Value
	err := json.UnmarshalFromString(data, &v)
	return v, err
}

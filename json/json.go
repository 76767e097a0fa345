package json

import (
	jsoniter "github.com/json-iterator/go"
)

var codec = jsoniter.ConfigCompatibleWithStandardLibrary

// Encode returns the JSON text of v
func Encode(v interface{}) (string, error) {
	return codec.MarshalToString(v)
}

// Decode parses JSON text into plain Go values
func Decode(data string) (interface{}, error) {
	var res interface{}
	if err := codec.UnmarshalFromString(data, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// DecodeTyped parses JSON text into v
func DecodeTyped(data string, v interface{}) error {
	return codec.UnmarshalFromString(data, v)
}

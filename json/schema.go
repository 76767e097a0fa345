package json

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonschema"
)

// Validator is a compiled JSON schema
type Validator struct {
	schema *jsonschema.Schema
	source []byte
}

// NewValidator compiles a schema given as a map, a JSON string or JSON bytes
func NewValidator(schema interface{}) (*Validator, error) {
	var raw []byte
	switch v := schema.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		data, err := codec.Marshal(schema)
		if err != nil {
			return nil, fmt.Errorf("schema: %w", err)
		}
		raw = data
	}

	compiled, err := jsonschema.NewCompiler().Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON schema: %w", err)
	}
	return &Validator{schema: compiled, source: raw}, nil
}

// Source returns the schema text
func (v *Validator) Source() string {
	return string(v.source)
}

// Validate checks data against the schema. Field messages are sorted so the
// error text is stable.
func (v *Validator) Validate(data interface{}) error {
	result := v.schema.Validate(data)
	if result.IsValid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors))
	for field, err := range result.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", field, err.Message))
	}
	sort.Strings(messages)
	return fmt.Errorf("validation failed: %s", strings.Join(messages, "; "))
}

// ValidateSchema reports whether schema compiles
func ValidateSchema(schema interface{}) error {
	_, err := NewValidator(schema)
	return err
}

// Validate checks data against a schema in one shot
func Validate(data interface{}, schema interface{}) error {
	validator, err := NewValidator(schema)
	if err != nil {
		return err
	}
	return validator.Validate(data)
}

package json

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/kaptinlin/jsonrepair"
	"gopkg.in/yaml.v3"
)

// Format of a source document
type Format string

// Supported formats
const (
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
	FormatYAML  Format = "yaml"
	FormatTOML  Format = "toml"
)

// FormatOf returns the format for a file name, an extension or a format name.
// Unknown hints fall back to json.
func FormatOf(hint string) Format {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if ext := filepath.Ext(hint); ext != "" {
		hint = ext
	}
	switch strings.TrimPrefix(hint, ".") {
	case "yaml", "yml":
		return FormatYAML
	case "toml":
		return FormatTOML
	case "jsonc", "yao":
		return FormatJSONC
	}
	return FormatJSON
}

// Supported reports whether the file extension is a known source format
func Supported(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json", ".jsonc", ".yao", ".yaml", ".yml", ".toml":
		return true
	}
	return false
}

var reTable = regexp.MustCompile(`^\[\[?[A-Za-z_][\w.\-]*\]\]?$`)

// DetectFormat guesses the format of an untagged document
func DetectFormat(data string) Format {
	trimmed := strings.TrimSpace(data)
	if trimmed == "" {
		return FormatJSON
	}

	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if reTable.MatchString(line) {
			return FormatTOML
		}
		if line[0] == '{' || line[0] == '[' {
			break
		}
		if strings.Contains(line, " = ") {
			return FormatTOML
		}
		if strings.Contains(line, ":") {
			return FormatYAML
		}
		break
	}

	if strings.Contains(trimmed, "//") || strings.Contains(trimmed, "/*") {
		return FormatJSONC
	}
	return FormatJSON
}

// Parse decodes data into plain Go values. The optional hint is a file name,
// an extension or a format name; without it the format is detected.
func Parse(data string, hint ...string) (interface{}, error) {
	var res interface{}
	if err := ParseTyped(data, &res, hint...); err != nil {
		return nil, err
	}
	return res, nil
}

// ParseTyped decodes data into v
func ParseTyped(data string, v interface{}, hint ...string) error {
	format := DetectFormat(data)
	if len(hint) > 0 && hint[0] != "" {
		format = FormatOf(hint[0])
	}

	switch format {
	case FormatYAML:
		return yaml.Unmarshal([]byte(data), v)

	case FormatTOML:
		if _, err := toml.Decode(data, v); err != nil {
			return fmt.Errorf("toml: %w", err)
		}
		return nil

	case FormatJSONC:
		return codec.Unmarshal(TrimComments([]byte(data)), v)
	}

	err := codec.UnmarshalFromString(data, v)
	if err == nil {
		return nil
	}

	if e := codec.Unmarshal(TrimComments([]byte(data)), v); e == nil {
		return nil
	}

	repaired, e := jsonrepair.JSONRepair(data)
	if e != nil {
		return err
	}
	return codec.UnmarshalFromString(repaired, v)
}

// ParseFile decodes the content of a file by its extension
func ParseFile(filename string, data []byte, v interface{}) error {
	return ParseTyped(string(data), v, filename)
}

// Repair fixes malformed JSON text
func Repair(data string) (string, error) {
	return jsonrepair.JSONRepair(data)
}

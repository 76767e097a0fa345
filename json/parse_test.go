package json

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatOf("scripts/welcome.yml"))
	assert.Equal(t, FormatYAML, FormatOf("yaml"))
	assert.Equal(t, FormatTOML, FormatOf(".toml"))
	assert.Equal(t, FormatJSONC, FormatOf("main.yao"))
	assert.Equal(t, FormatJSONC, FormatOf("JSONC"))
	assert.Equal(t, FormatJSON, FormatOf("main.json"))
	assert.Equal(t, FormatJSON, FormatOf("unknown"))

	assert.True(t, Supported("a.yaml"))
	assert.True(t, Supported("a.TOML"))
	assert.False(t, Supported("a.txt"))
	assert.False(t, Supported("README"))
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatJSON, DetectFormat(`{"a": 1}`))
	assert.Equal(t, FormatJSON, DetectFormat(`[1, 2]`))
	assert.Equal(t, FormatJSON, DetectFormat(""))
	assert.Equal(t, FormatJSONC, DetectFormat("{\"a\": 1 // one\n}"))
	assert.Equal(t, FormatYAML, DetectFormat("# script\nname: welcome\n"))
	assert.Equal(t, FormatTOML, DetectFormat("name = \"welcome\"\n"))
	assert.Equal(t, FormatTOML, DetectFormat("[task]\nquota = 3\n"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		data string
		hint string
	}{
		{"json", `{"name": "welcome", "count": 2}`, "a.json"},
		{"jsonc", "{\n  // name\n  \"name\": \"welcome\", /* n */ \"count\": 2\n}", "a.jsonc"},
		{"yao", "{\"name\": \"welcome\", \"count\": 2} // tail", ".yao"},
		{"yaml", "name: welcome\ncount: 2\n", "a.yml"},
		{"toml", "name = \"welcome\"\ncount = 2\n", "a.toml"},
		{"detected yaml", "name: welcome\ncount: 2\n", ""},
		{"repaired", `{name: 'welcome', count: 2,}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(tt.data, tt.hint)
			require.NoError(t, err)
			m, ok := res.(map[string]interface{})
			require.True(t, ok, "%T", res)
			assert.Equal(t, "welcome", m["name"])
			assert.EqualValues(t, 2, m["count"])
		})
	}
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("name: [unclosed", "a.yaml")
	assert.Error(t, err)

	_, err = Parse("name = ", "a.toml")
	assert.Error(t, err)

	_, err = Parse(`{"a": }`, "a.jsonc")
	assert.Error(t, err)
}

func TestParseFile(t *testing.T) {
	var target struct {
		Name  string `json:"name" yaml:"name" toml:"name"`
		Count int    `json:"count" yaml:"count" toml:"count"`
	}

	require.NoError(t, ParseFile("a.yaml", []byte("name: welcome\ncount: 2\n"), &target))
	assert.Equal(t, "welcome", target.Name)
	assert.Equal(t, 2, target.Count)

	require.NoError(t, ParseFile("a.toml", []byte("name = \"toml\"\ncount = 4\n"), &target))
	assert.Equal(t, "toml", target.Name)
	assert.Equal(t, 4, target.Count)

	require.NoError(t, ParseFile("a.jsonc", []byte("{\"name\": \"jsonc\" /* c */}"), &target))
	assert.Equal(t, "jsonc", target.Name)
}

func TestRepair(t *testing.T) {
	repaired, err := Repair(`{"name": "welcome", "tags": ["a", "b"`)
	require.NoError(t, err)

	res, err := Decode(repaired)
	require.NoError(t, err)
	assert.Equal(t, "welcome", res.(map[string]interface{})["name"])
}

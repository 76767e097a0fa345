package json

import "bytes"

// TrimComments strips // and /* */ comments outside of string literals.
func TrimComments(data []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(data))

	quoted, escaped := false, false
	line, block := false, false

	for i := 0; i < len(data); i++ {
		c := data[i]
		switch {
		case line:
			if c == '\n' {
				line = false
				out.WriteByte(c)
			}

		case block:
			if c == '*' && i+1 < len(data) && data[i+1] == '/' {
				block = false
				i++
			}

		case quoted:
			out.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				quoted = false
			}

		case c == '"':
			quoted = true
			out.WriteByte(c)

		case c == '/' && i+1 < len(data) && data[i+1] == '/':
			line = true
			i++

		case c == '/' && i+1 < len(data) && data[i+1] == '*':
			block = true
			i++

		default:
			out.WriteByte(c)
		}
	}
	return out.Bytes()
}

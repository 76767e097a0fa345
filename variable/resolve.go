package variable

import (
	"regexp"
	"strings"

	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/blocks/value"
)

// DefaultDepth the default placeholder resolution depth
const DefaultDepth = 16

var reVar = regexp.MustCompile(`{{[ ]*([^\s{}]+)[ ]*}}`) // {{global.score}}
var reVarStyle2 = regexp.MustCompile(`\?:([^\s{}]+)`)    // ?:global.score

// HasPlaceholder check if the text holds at least one placeholder
func HasPlaceholder(text string) bool {
	return reVar.MatchString(text) || reVarStyle2.MatchString(text)
}

// Resolve substitute the placeholders of a text. A text made of a single
// placeholder resolves to the typed value of the variable, anything else
// resolves to text. Resolved values holding placeholders are resolved again
// until depth is exhausted.
func (s *Store) Resolve(frame Frame, text string, depth int) (value.Value, error) {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return s.resolve(frame, text, depth)
}

// ResolveRef the typed value of a reference, resolving placeholders held by text values
func (s *Store) ResolveRef(frame Frame, ref Ref, depth int) (value.Value, error) {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return s.resolveRef(frame, ref, depth)
}

func (s *Store) resolve(frame Frame, text string, depth int) (value.Value, error) {
	for _, re := range []*regexp.Regexp{reVar, reVarStyle2} {
		matches := re.FindAllStringSubmatchIndex(text, -1)
		if len(matches) == 0 {
			continue
		}

		// "{{name}}"
		if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(text) {
			return s.resolveRef(frame, ParseRef(text[matches[0][2]:matches[0][3]]), depth)
		}

		var sb strings.Builder
		last := 0
		for _, match := range matches {
			v, err := s.resolveRef(frame, ParseRef(text[match[2]:match[3]]), depth)
			if err != nil {
				return value.Nil, err
			}
			sb.WriteString(text[last:match[0]])
			sb.WriteString(v.String())
			last = match[1]
		}
		sb.WriteString(text[last:])
		text = sb.String()
	}
	return value.NewText(text), nil
}

func (s *Store) resolveRef(frame Frame, ref Ref, depth int) (value.Value, error) {
	if depth <= 0 {
		return value.Nil, errs.New(errs.Resolution, "resolution depth exceeded at %s", ref)
	}

	v, _, ok, err := s.Lookup(frame, ref)
	if err != nil {
		return value.Nil, errs.Wrap(errs.Resolution, err, "cannot resolve %s", ref)
	}
	if !ok {
		return value.Nil, errs.New(errs.Resolution, "variable %s is not defined", ref)
	}

	if v.Type() == value.Text && HasPlaceholder(v.String()) {
		return s.resolve(frame, v.String(), depth-1)
	}
	return v, nil
}

package block

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Compile build the block graph of a script definition
func Compile(def ScriptDefinition) (*Script, error) {
	if def.Name == "" && def.ID == "" {
		return nil, fmt.Errorf("script name is required")
	}

	script := &Script{ID: def.ID, Name: def.Name, Namespace: def.Namespace}
	if script.ID == "" {
		script.ID = def.Name
	}
	if script.Name == "" {
		script.Name = script.ID
	}

	c := &compiler{prefix: script.ID}
	for i, root := range def.Roots {
		head, err := c.chain([]Definition{root}, fmt.Sprintf("roots[%d]", i))
		if err != nil {
			return nil, fmt.Errorf("script %s: %w", script.ID, err)
		}
		script.Roots = append(script.Roots, head)
	}

	if err := script.Validate(); err != nil {
		return nil, err
	}
	return script, nil
}

// Build compile one declared chain
func Build(defs ...Definition) (*Block, error) {
	c := &compiler{prefix: uuid.NewString()[:8]}
	head, err := c.chain(defs, "blocks")
	if err != nil {
		return nil, err
	}
	return head, Validate(head)
}

type compiler struct {
	prefix string
	seq    int
}

func (c *compiler) chain(defs []Definition, path string) (*Block, error) {
	blocks := []*Block{}
	for i, def := range defs {
		b, err := c.block(def, fmt.Sprintf("%s[%d]", path, i))
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)

		if len(def.Then) > 0 {
			next, err := c.chain(def.Then, fmt.Sprintf("%s[%d].then", path, i))
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, next)
		}
	}
	return Chain(blocks...), nil
}

func (c *compiler) block(def Definition, path string) (*Block, error) {
	kind := strings.TrimSpace(def.Kind)
	if kind == "" {
		return nil, fmt.Errorf("%s: kind is required", path)
	}

	c.seq++
	b := New(kind)
	b.ID = def.ID
	if b.ID == "" {
		b.ID = fmt.Sprintf("%s#%d", c.prefix, c.seq)
	}
	b.Config = def.Config

	for name, v := range def.Params {
		b.Params[name] = ParamOf(v)
	}

	if len(def.Body) > 0 {
		body, err := c.chain(def.Body, path+".body")
		if err != nil {
			return nil, err
		}
		b.Children = append(b.Children, body)
	}

	if len(def.Else) > 0 {
		alt, err := c.chain(def.Else, path+".else")
		if err != nil {
			return nil, err
		}
		b.Children = append(b.Children, New(ElseKind).Body(alt))
	}
	return b, nil
}

package block

import (
	"github.com/yaoapp/blocks/value"
	"github.com/yaoapp/blocks/variable"
)

// ParamKind the kind of a block parameter
type ParamKind int

const (
	// Literal a constant value
	Literal ParamKind = iota

	// Reference a variable reference, resolved to the typed value
	Reference

	// Template text holding {{ scope.name }} placeholders
	Template
)

// Param a block parameter
type Param struct {
	Kind     ParamKind
	Value    value.Value
	Ref      variable.Ref
	Template string
}

// Block one node of the program graph. Children hold the heads of the body
// chains, Next the straight-line continuation.
type Block struct {
	ID       string
	Kind     string
	Params   map[string]Param
	Children []*Block
	Next     *Block
	Config   map[string]interface{}
}

// Script a named collection of root chains
type Script struct {
	ID        string
	Name      string
	Namespace string
	File      string
	Roots     []*Block
}

// Definition the declarative form of a block (json, yaml)
type Definition struct {
	ID     string                 `json:"id,omitempty" yaml:"id,omitempty"`
	Kind   string                 `json:"kind" yaml:"kind"`
	Params map[string]interface{} `json:"params,omitempty" yaml:"params,omitempty"`
	Body   []Definition           `json:"body,omitempty" yaml:"body,omitempty"`
	Else   []Definition           `json:"else,omitempty" yaml:"else,omitempty"`
	Then   []Definition           `json:"then,omitempty" yaml:"then,omitempty"`
	Config map[string]interface{} `json:"config,omitempty" yaml:"config,omitempty"`
}

// ScriptDefinition the declarative form of a script
type ScriptDefinition struct {
	ID        string       `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string       `json:"name" yaml:"name"`
	Namespace string       `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Roots     []Definition `json:"roots" yaml:"roots"`
}

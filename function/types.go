package function

import (
	"sync"
	"time"

	"github.com/yaoapp/blocks/block"
	"github.com/yaoapp/blocks/value"
)

// Scope the visibility of a function
type Scope int

const (
	// Player callable by its owner only
	Player Scope = iota + 1

	// World callable from scripts of the same namespace
	World

	// Global callable from everywhere
	Global

	// Shared callable from everywhere, kept apart from Global
	Shared
)

var scopeNames = map[Scope]string{
	Player: "player",
	World:  "world",
	Global: "global",
	Shared: "shared",
}

// Param a declared parameter
type Param struct {
	Name     string      `json:"name"`
	Type     value.Type  `json:"-"`
	Required bool        `json:"required"`
	Default  value.Value `json:"default"`
}

// Definition a named reusable body of blocks
type Definition struct {
	Name              string
	Owner             string // actor for Player, namespace for World
	Params            []Param
	Body              []*block.Block
	Scope             Scope
	MaxRecursionDepth int
	MaxExecutionTime  time.Duration
	Enabled           bool
	ScriptID          string
}

// Caller the identity a function is looked up for
type Caller struct {
	Actor     string
	Namespace string
}

// Arguments the call arguments
type Arguments struct {
	Positional []value.Value
	Named      map[string]value.Value
}

// Info a registered function
type Info struct {
	Name     string `json:"name"`
	Scope    string `json:"scope"`
	Owner    string `json:"owner,omitempty"`
	Params   int    `json:"params"`
	Enabled  bool   `json:"enabled"`
	ScriptID string `json:"script,omitempty"`
}

// Option the registry defaults
type Option struct {
	MaxRecursionDepth int
	MaxExecutionTime  time.Duration
}

// Registry the function registry
type Registry struct {
	functions map[key]*Definition
	option    Option
	mutex     sync.RWMutex
}

type key struct {
	scope Scope
	owner string
	name  string
}

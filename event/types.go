package event

import (
	"sync"

	"github.com/yaoapp/blocks/actor"
	"github.com/yaoapp/blocks/block"
	"github.com/yaoapp/blocks/engine"
	"github.com/yaoapp/blocks/json"
	"github.com/yaoapp/blocks/task"
	"github.com/yaoapp/blocks/value"
)

// FilterKind the audience of a handler
type FilterKind int

const (
	// Global accepts every trigger
	Global FilterKind = iota

	// World accepts triggers of one scope key
	World

	// Actor accepts triggers caused by one actor
	Actor
)

var filterNames = map[FilterKind]string{
	Global: "global",
	World:  "world",
	Actor:  "actor",
}

// Filter the scope filter of a registration
type Filter struct {
	Kind FilterKind
	Key  string
}

// Registration an event handler
type Registration struct {
	ID        string
	Event     string
	Body      []*block.Block
	Filter    Filter
	Priority  int
	ScriptID  string
	Namespace string
	seq       uint64
}

// Field a typed payload field
type Field struct {
	Name     string
	Type     value.Type
	Required bool
}

// Schema the payload contract of an event. JSON is an optional JSON schema
// (map, string or bytes) checked against the plain payload.
type Schema struct {
	Fields []Field
	JSON   interface{}
}

// Event one trigger
type Event struct {
	Name     string
	Payload  map[string]value.Value
	Actor    actor.Actor
	Scope    string
	ScriptID string
	Debug    bool
	Depth    int
}

// Outcome the result of one handler
type Outcome struct {
	Registration string
	ScriptID     string
	Priority     int
	Result       engine.Result
}

// Info a registration summary
type Info struct {
	ID       string `json:"id"`
	Event    string `json:"event"`
	Filter   string `json:"filter"`
	Key      string `json:"key,omitempty"`
	Priority int    `json:"priority"`
	ScriptID string `json:"script,omitempty"`
}

// Option the dispatcher option
type Option struct {
	MaxDepth int
}

// Dispatcher routes triggers to the registered handlers
type Dispatcher struct {
	engine      *engine.Engine
	coordinator *task.Coordinator
	handlers    map[string][]*Registration
	schemas     map[string]*schema
	option      Option
	seq         uint64
	mutex       sync.RWMutex
}

type schema struct {
	fields    []Field
	validator *json.Validator
}

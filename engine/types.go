package engine

import (
	"context"
	"sync"

	"github.com/yaoapp/blocks/actor"
	"github.com/yaoapp/blocks/block"
	"github.com/yaoapp/blocks/value"
	"github.com/yaoapp/blocks/variable"
)

// Status the outcome of a block
type Status int

const (
	// StatusSuccess advance to the next block
	StatusSuccess Status = iota

	// StatusError stop the chain
	StatusError

	// StatusTerminated unwind to the function or script boundary
	StatusTerminated
)

// Signal the loop control signal carried by a result
type Signal int

const (
	// SignalNone no signal
	SignalNone Signal = iota

	// SignalBreak stop the nearest enclosing loop
	SignalBreak

	// SignalContinue skip to the next iteration of the nearest enclosing loop
	SignalContinue
)

// Policy what a chain does after an Error result
type Policy string

const (
	// PolicyStop the chain stops at the first error
	PolicyStop Policy = "stop"

	// PolicyContinue the error is reported and the chain advances
	PolicyContinue Policy = "continue"
)

// Result the outcome of executing a block or a chain
type Result struct {
	Status   Status
	Message  string
	Value    value.Value
	Err      error
	Signal   Signal
	reported bool
}

// Handler the implementation of a block kind
type Handler interface {
	Handle(ctx *Context, args *Args) Result
}

// HandlerFunc a function handler
type HandlerFunc func(ctx *Context, args *Args) Result

// Handle call the function
func (fn HandlerFunc) Handle(ctx *Context, args *Args) Result {
	return fn(ctx, args)
}

// Option the engine option
type Option struct {
	Policy       Policy
	ResolveDepth int
	RepeatLimit  int
	WhileLimit   int
	ForeachLimit int
}

// Engine the block interpreter
type Engine struct {
	handlers map[string]Handler
	mutex    sync.RWMutex
	vars     *variable.Store
	option   Option
}

// Context the activation record of one invocation
type Context struct {
	Context   context.Context
	ID        string
	Actor     actor.Actor
	Block     *block.Block
	ScriptID  string
	Namespace string
	Debug     bool
	Vars      *variable.Store
	CallDepth int

	// EventDepth counts nested event triggers, apart from function calls
	EventDepth int

	Data   map[string]interface{}
	engine *Engine
	loops  int
}

// Invocation the options of a new invocation
type Invocation struct {
	Context    context.Context
	ID         string
	Actor      actor.Actor
	ScriptID   string
	Namespace  string
	Debug      bool
	CallDepth  int
	EventDepth int
	Data       map[string]interface{}
	Locals     map[string]value.Value
}

// Args the parameters of the block being executed, resolved on access
type Args struct {
	ctx   *Context
	block *block.Block
}

package engine

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/yaoapp/blocks/block"
	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/blocks/value"
	"github.com/yaoapp/blocks/variable"
	"github.com/yaoapp/kun/log"
)

// NewContext create the context of a new invocation, the caller releases it
func (e *Engine) NewContext(inv Invocation) *Context {
	ctx := &Context{
		Context:    inv.Context,
		ID:         inv.ID,
		Actor:      inv.Actor,
		ScriptID:   inv.ScriptID,
		Namespace:  inv.Namespace,
		Debug:      inv.Debug,
		CallDepth:  inv.CallDepth,
		EventDepth: inv.EventDepth,
		Vars:       e.vars,
		Data:       inv.Data,
		engine:     e,
	}

	if ctx.Context == nil {
		ctx.Context = context.Background()
	}
	if ctx.ID == "" {
		ctx.ID = uuid.NewString()
	}
	if ctx.Data == nil {
		ctx.Data = map[string]interface{}{}
	}

	for name, v := range inv.Locals {
		ctx.SetLocal(name, v)
	}
	return ctx
}

// Engine the engine executing the context
func (ctx *Context) Engine() *Engine {
	return ctx.engine
}

// ActorID the id of the actor, empty for actor-less invocations
func (ctx *Context) ActorID() string {
	if ctx.Actor == nil {
		return ""
	}
	return ctx.Actor.ID()
}

// Frame the variable owners of the context
func (ctx *Context) Frame() variable.Frame {
	return variable.Frame{Invocation: ctx.ID, Actor: ctx.ActorID()}
}

// Derive a child context sharing the LOCAL scope (loop iterations, branches)
func (ctx *Context) Derive() *Context {
	child := *ctx
	return &child
}

// Isolate a child context with a fresh LOCAL scope (function calls), the
// caller releases it
func (ctx *Context) Isolate() *Context {
	child := *ctx
	child.ID = uuid.NewString()
	child.CallDepth = ctx.CallDepth + 1
	child.loops = 0
	child.Data = map[string]interface{}{}
	for k, v := range ctx.Data {
		child.Data[k] = v
	}
	return &child
}

// Detach a context for a continuation outliving its invocation: the LOCAL
// scope is copied into a new invocation and loop signals start over. The
// caller releases it.
func (ctx *Context) Detach() *Context {
	child := *ctx
	child.ID = uuid.NewString()
	child.Context = context.Background()
	child.loops = 0
	child.Data = map[string]interface{}{}
	for k, v := range ctx.Data {
		child.Data[k] = v
	}
	ctx.Vars.Fork(ctx.ID, child.ID)
	return &child
}

// WithContext a derived context bound to a Go context
func (ctx *Context) WithContext(c context.Context) *Context {
	child := ctx.Derive()
	child.Context = c
	return child
}

// Release drop the LOCAL scope of the invocation
func (ctx *Context) Release() {
	ctx.Vars.Release(variable.Local, ctx.ID)
}

// Err the timeout error once the Go context is done
func (ctx *Context) Err() error {
	err := ctx.Context.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.New(errs.Timeout, "execution timeout")
	}
	return errs.Wrap(errs.Timeout, err, "execution cancelled")
}

// Get the value of a variable reference
func (ctx *Context) Get(ref variable.Ref) (value.Value, bool, error) {
	v, _, ok, err := ctx.Vars.Lookup(ctx.Frame(), ref)
	return v, ok, err
}

// Set a variable, unscoped names are written to LOCAL
func (ctx *Context) Set(ref variable.Ref, v value.Value) error {
	key, err := ctx.Vars.Key(ctx.Frame(), ref)
	if err != nil {
		return err
	}
	return ctx.Vars.Set(key, v)
}

// Delete a variable, unscoped names are deleted where Lookup finds them
func (ctx *Context) Delete(ref variable.Ref) error {
	_, key, ok, err := ctx.Vars.Lookup(ctx.Frame(), ref)
	if err != nil || !ok {
		return err
	}
	return ctx.Vars.Delete(key)
}

// SetLocal write a LOCAL variable
func (ctx *Context) SetLocal(name string, v value.Value) {
	ctx.Vars.Set(variable.Key{Scope: variable.Local, Owner: ctx.ID, Name: name}, v)
}

// Local read a LOCAL variable
func (ctx *Context) Local(name string) (value.Value, bool) {
	v, ok, _ := ctx.Vars.Get(variable.Key{Scope: variable.Local, Owner: ctx.ID, Name: name})
	return v, ok
}

// Resolve substitute the placeholders of a text
func (ctx *Context) Resolve(text string) (value.Value, error) {
	return ctx.Vars.Resolve(ctx.Frame(), text, ctx.engine.option.ResolveDepth)
}

// ExecuteChain execute a chain in this context
func (ctx *Context) ExecuteChain(start *block.Block) Result {
	return ctx.engine.ExecuteChain(start, ctx)
}

// ExecuteBody execute body chains in this context
func (ctx *Context) ExecuteBody(children []*block.Block) Result {
	return ctx.engine.ExecuteBody(children, ctx)
}

// Send a message to the actor, actor-less messages are logged
func (ctx *Context) Send(message string) {
	if ctx.Actor == nil {
		log.Info("[%s] %s", ctx.ScriptID, message)
		return
	}
	if err := ctx.Actor.SendMessage(message); err != nil {
		log.Warn("[%s] send message to %s: %s", ctx.ScriptID, ctx.Actor.ID(), err.Error())
	}
}

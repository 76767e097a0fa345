package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	goerrors "github.com/go-errors/errors"
	"github.com/yaoapp/blocks/block"
	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/blocks/variable"
	"github.com/yaoapp/kun/exception"
	"github.com/yaoapp/kun/log"
)

// New create an engine with the built-in blocks registered
func New(vars *variable.Store, option Option) *Engine {
	if option.Policy == "" {
		option.Policy = PolicyStop
	}
	if option.ResolveDepth <= 0 {
		option.ResolveDepth = variable.DefaultDepth
	}
	if option.RepeatLimit <= 0 {
		option.RepeatLimit = 1000
	}
	if option.WhileLimit <= 0 {
		option.WhileLimit = 10000
	}
	if option.ForeachLimit <= 0 {
		option.ForeachLimit = 10000
	}

	e := &Engine{handlers: map[string]Handler{}, vars: vars, option: option}
	e.RegisterGroup("control", controlHandlers)
	e.RegisterGroup("variable", variableHandlers)
	e.RegisterGroup("message", messageHandlers)
	return e
}

// ParsePolicy parse an error policy name
func ParsePolicy(name string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(name))) {
	case "", PolicyStop:
		return PolicyStop, nil
	case PolicyContinue:
		return PolicyContinue, nil
	}
	return "", fmt.Errorf("unknown error policy %q", name)
}

// Option the engine option
func (e *Engine) Option() Option {
	return e.option
}

// Vars the variable store
func (e *Engine) Vars() *variable.Store {
	return e.vars
}

// Register a block kind handler
func (e *Engine) Register(kind string, handler Handler) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if kind == "" || handler == nil {
		exception.New("block kind and handler are required", 400).Throw()
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.handlers[kind] = handler
}

// RegisterGroup register the handlers of a group as group.name
func (e *Engine) RegisterGroup(group string, handlers map[string]Handler) {
	for name, handler := range handlers {
		e.Register(fmt.Sprintf("%s.%s", group, name), handler)
	}
}

// Alias register an existing kind under another name
func (e *Engine) Alias(kind string, alias string) {
	handler, has := e.handler(kind)
	if !has {
		exception.New("block kind %s does not exist", 404, kind).Throw()
	}
	e.Register(alias, handler)
}

// Unregister a block kind
func (e *Engine) Unregister(kind string) bool {
	kind = strings.ToLower(kind)
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if _, has := e.handlers[kind]; has {
		delete(e.handlers, kind)
		return true
	}
	return false
}

// Has check if the kind is registered
func (e *Engine) Has(kind string) bool {
	_, has := e.handler(kind)
	return has
}

// Kinds the registered kinds, sorted
func (e *Engine) Kinds() []string {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	kinds := make([]string, 0, len(e.handlers))
	for kind := range e.handlers {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Run execute a chain as a new invocation: the LOCAL scope is released and
// stray loop signals are cleared at the script boundary
func (e *Engine) Run(start *block.Block, inv Invocation) Result {
	return e.RunBody([]*block.Block{start}, inv)
}

// RunBody execute body chains as a new invocation
func (e *Engine) RunBody(children []*block.Block, inv Invocation) Result {
	ctx := e.NewContext(inv)
	defer ctx.Release()
	return Settle(ctx, e.ExecuteBody(children, ctx))
}

// Settle clear a loop signal escaping a function or script boundary
func Settle(ctx *Context, res Result) Result {
	if res.Signal != SignalNone {
		log.Trace("[%s] %s escaped to %s, cleared", ctx.ScriptID, signalName(res.Signal), ctx.ID)
		res.Signal = SignalNone
	}
	return res
}

// ExecuteBody execute body chains in order, stop at the first chain that does
// not complete normally
func (e *Engine) ExecuteBody(children []*block.Block, ctx *Context) Result {
	res := Success("")
	for _, head := range children {
		res = e.ExecuteChain(head, ctx)
		if !res.OK() {
			return res
		}
	}
	return res
}

// ExecuteChain walk the chain through Next links
func (e *Engine) ExecuteChain(start *block.Block, ctx *Context) Result {
	res := Success("")
	for b := start; b != nil; b = b.Next {
		if err := ctx.Err(); err != nil {
			return e.report(ctx, b, Fail(err))
		}

		res = e.dispatch(b, ctx)
		switch {
		case res.Status == StatusTerminated:
			return res

		case res.Status == StatusError:
			if e.option.Policy != PolicyContinue || errs.Is(res.Err, errs.Timeout) {
				return res
			}
			res = Success("")
			continue

		case res.Signal != SignalNone:
			return res
		}
	}
	return res
}

func (e *Engine) dispatch(b *block.Block, ctx *Context) (res Result) {
	handler, has := e.handler(b.Kind)
	if !has {
		return e.report(ctx, b, Failf(errs.UnknownKind, "unknown action: %s", b.Kind))
	}

	child := ctx.Derive()
	child.Block = b

	defer func() {
		if r := recover(); r != nil {
			err := recovered(r)
			log.Error("[%s] %s panic: %s\n%s", ctx.ScriptID, b.Label(), err.Error(), goerrors.Wrap(r, 2).ErrorStack())
			res = e.report(ctx, b, Fail(err))
		}
	}()

	if ctx.Debug {
		trace(child, b)
	}

	res = handler.Handle(child, NewArgs(child, b))
	if res.Status == StatusError {
		res = e.report(ctx, b, res)
	}
	return res
}

// report log an error and tell the actor, once per error
func (e *Engine) report(ctx *Context, b *block.Block, res Result) Result {
	if res.reported {
		return res
	}
	res.reported = true

	log.With(log.F{
		"script": ctx.ScriptID,
		"block":  b.Label(),
		"kind":   b.Kind,
		"actor":  ctx.ActorID(),
		"code":   res.Code().String(),
	}).Error("%s", res.Message)

	ctx.Send(res.Message)
	return res
}

func (e *Engine) handler(kind string) (Handler, bool) {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	handler, has := e.handlers[strings.ToLower(kind)]
	return handler, has
}

func recovered(r interface{}) error {
	switch v := r.(type) {
	case exception.Exception:
		return fmt.Errorf("%s", v.Message)
	case *exception.Exception:
		return fmt.Errorf("%s", v.Message)
	case error:
		return v
	}
	return exception.Catch(r)
}

func trace(ctx *Context, b *block.Block) {
	params := make([]string, 0, len(b.Params))
	for name := range b.Params {
		params = append(params, name)
	}
	sort.Strings(params)

	fmt.Fprintln(color.Output,
		color.YellowString("Block: "),
		color.WhiteString(b.Kind),
		color.YellowString("Id: "),
		color.WhiteString(b.Label()),
		color.YellowString("Invocation: "),
		color.WhiteString(ctx.ID),
		color.YellowString("Params: "),
		color.WhiteString(strings.Join(params, ", ")),
	)
}

func signalName(signal Signal) string {
	if signal == SignalBreak {
		return "break"
	}
	return "continue"
}

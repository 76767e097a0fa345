package engine

import (
	"github.com/yaoapp/blocks/block"
	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/blocks/value"
	"github.com/yaoapp/blocks/variable"
	"github.com/yaoapp/kun/log"
)

var controlHandlers = map[string]Handler{
	"if":       HandlerFunc(handleIf),
	"else":     HandlerFunc(handleElse),
	"repeat":   HandlerFunc(handleRepeat),
	"while":    HandlerFunc(handleWhile),
	"foreach":  HandlerFunc(handleForeach),
	"break":    HandlerFunc(handleBreak),
	"continue": HandlerFunc(handleContinue),
	"stop":     HandlerFunc(handleStop),
}

var variableHandlers = map[string]Handler{
	"set":    HandlerFunc(handleSet),
	"add":    HandlerFunc(handleAdd),
	"delete": HandlerFunc(handleDelete),
}

var messageHandlers = map[string]Handler{
	"send": HandlerFunc(handleSend),
}

// control.if
func handleIf(ctx *Context, args *Args) Result {
	ok, err := Evaluate(ctx, args)
	if err != nil {
		return Fail(err)
	}

	then, alt := block.Split(ctx.Block.Children)
	if ok {
		return ctx.ExecuteBody(then)
	}
	return ctx.ExecuteBody(alt)
}

// control.else, its body runs through the enclosing control.if
func handleElse(ctx *Context, args *Args) Result {
	return Success("")
}

// control.repeat
func handleRepeat(ctx *Context, args *Args) Result {
	count, err := args.Int("count")
	if err != nil {
		return Fail(err)
	}

	limit := ctx.engine.option.RepeatLimit
	if count < 1 {
		count = 1
	}
	if count > limit {
		log.Warn("[%s] %s: repeat count %d clamped to %d", ctx.ScriptID, ctx.Block.Label(), count, limit)
		count = limit
	}

	return NewLoop(ctx, ctx.Block.Children, 0, func(_ *Context, index int) (bool, error) {
		return index < count, nil
	}).Run()
}

// control.while
func handleWhile(ctx *Context, args *Args) Result {
	return NewLoop(ctx, ctx.Block.Children, ctx.engine.option.WhileLimit, func(_ *Context, _ int) (bool, error) {
		return Evaluate(ctx, args)
	}).Run()
}

// control.foreach
func handleForeach(ctx *Context, args *Args) Result {
	loop, err := NewForeach(ctx, args)
	if err != nil {
		return Fail(err)
	}
	return loop.Run()
}

// NewForeach the loop frame of a foreach block: "list" is iterated, each item
// bound to "item" (default item) and its position to the optional "index"
// variable. Both variables get their prior values back when the loop is done.
func NewForeach(ctx *Context, args *Args) (*Loop, error) {
	list, err := args.List("list")
	if err != nil {
		return nil, err
	}

	limit := ctx.engine.option.ForeachLimit
	if len(list) > limit {
		return nil, errs.New(errs.Quota, "%s: list of %d items exceeds %d", ctx.Block.Kind, len(list), limit)
	}

	item := variable.Ref{Name: "item"}
	if args.Has("item") {
		if item, err = args.Ref("item"); err != nil {
			return nil, err
		}
	}

	bindings := []variable.Ref{item}
	var index *variable.Ref
	if args.Has("index") {
		ref, err := args.Ref("index")
		if err != nil {
			return nil, err
		}
		index = &ref
		bindings = append(bindings, ref)
	}

	restore, err := save(ctx, bindings...)
	if err != nil {
		return nil, err
	}

	loop := NewLoop(ctx, ctx.Block.Children, 0, func(c *Context, i int) (bool, error) {
		if i >= len(list) {
			return false, nil
		}
		if err := c.Set(item, list[i]); err != nil {
			return false, err
		}
		if index != nil {
			if err := c.Set(*index, value.NewNumber(float64(i))); err != nil {
				return false, err
			}
		}
		return true, nil
	})
	return loop.Finally(restore), nil
}

// save the current values of the variables a loop binds
func save(ctx *Context, refs ...variable.Ref) (func(), error) {
	type saved struct {
		key variable.Key
		v   value.Value
		ok  bool
	}

	prior := make([]saved, 0, len(refs))
	for _, ref := range refs {
		key, err := ctx.Vars.Key(ctx.Frame(), ref)
		if err != nil {
			return nil, err
		}
		v, ok, err := ctx.Vars.Get(key)
		if err != nil {
			return nil, err
		}
		prior = append(prior, saved{key: key, v: v, ok: ok})
	}

	return func() {
		for _, p := range prior {
			var err error
			if p.ok {
				err = ctx.Vars.Set(p.key, p.v)
			} else {
				err = ctx.Vars.Delete(p.key)
			}
			if err != nil {
				log.Warn("[%s] restore %s: %s", ctx.ScriptID, p.key, err.Error())
			}
		}
	}, nil
}

// control.break
func handleBreak(ctx *Context, args *Args) Result {
	if ctx.loops == 0 {
		log.Warn("[%s] %s: break outside of a loop, ignored", ctx.ScriptID, ctx.Block.Label())
		return Success("")
	}
	return Break()
}

// control.continue
func handleContinue(ctx *Context, args *Args) Result {
	if ctx.loops == 0 {
		log.Warn("[%s] %s: continue outside of a loop, ignored", ctx.ScriptID, ctx.Block.Label())
		return Success("")
	}
	return Continue()
}

// control.stop
func handleStop(ctx *Context, args *Args) Result {
	v, err := args.Value("value")
	if err != nil {
		return Fail(err)
	}
	return Terminate(v)
}

// variable.set
func handleSet(ctx *Context, args *Args) Result {
	ref, err := args.Ref("name")
	if err != nil {
		return Fail(err)
	}

	v, err := args.Value("value")
	if err != nil {
		return Fail(err)
	}

	if args.Has("type") {
		name, err := args.Text("type")
		if err != nil {
			return Fail(err)
		}
		t, err := value.ParseType(name)
		if err != nil {
			return Fail(errs.Wrap(errs.Parameter, err, "%s: parameter type", ctx.Block.Kind))
		}
		if v, err = value.Convert(v, t); err != nil {
			return Fail(errs.Wrap(errs.Parameter, err, "%s: parameter value", ctx.Block.Kind))
		}
	}

	if err := ctx.Set(ref, v); err != nil {
		return Fail(err)
	}
	return Success("").WithValue(v)
}

// variable.add, an unscoped name increments the variable Lookup finds
func handleAdd(ctx *Context, args *Args) Result {
	ref, err := args.Ref("name")
	if err != nil {
		return Fail(err)
	}

	delta := 1.0
	if args.Has("value") {
		if delta, err = args.Number("value"); err != nil {
			return Fail(err)
		}
	}

	_, key, ok, err := ctx.Vars.Lookup(ctx.Frame(), ref)
	if err != nil {
		return Fail(err)
	}
	if !ok {
		if key, err = ctx.Vars.Key(ctx.Frame(), ref); err != nil {
			return Fail(err)
		}
	}

	v, err := ctx.Vars.Add(key, delta)
	if err != nil {
		return Fail(err)
	}
	return Success("").WithValue(v)
}

// variable.delete
func handleDelete(ctx *Context, args *Args) Result {
	ref, err := args.Ref("name")
	if err != nil {
		return Fail(err)
	}
	if err := ctx.Delete(ref); err != nil {
		return Fail(err)
	}
	return Success("")
}

// message.send
func handleSend(ctx *Context, args *Args) Result {
	text, err := args.Text("text")
	if err != nil {
		return Fail(err)
	}
	ctx.Send(text)
	return Success("%s", text)
}

package function

import (
	"time"

	"github.com/yaoapp/blocks/engine"
	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/blocks/value"
)

type blocks struct {
	registry *Registry
}

// Register the function blocks: function.define, function.call and function.return
func Register(e *engine.Engine, r *Registry) {
	b := blocks{registry: r}
	e.RegisterGroup("function", map[string]engine.Handler{
		"define": engine.HandlerFunc(b.define),
		"call":   engine.HandlerFunc(b.call),
		"return": engine.HandlerFunc(handleReturn),
	})
}

// function.define
func (b blocks) define(ctx *engine.Context, args *engine.Args) engine.Result {
	def, err := Define(ctx, args)
	if err != nil {
		return engine.Fail(err)
	}

	if !b.registry.Register(def) {
		return engine.Failf(errs.Parameter, "function %s is already defined in %s scope", def.Name, def.Scope)
	}
	return engine.Success("function %s defined", def.Name)
}

// Define the definition a function.define block declares: "name", "params"
// (names or {name, type, required, default} maps), "scope", "maxDepth",
// "maxTime" in milliseconds and "enabled"
func Define(ctx *engine.Context, args *engine.Args) (*Definition, error) {
	if err := args.Require("name"); err != nil {
		return nil, err
	}

	name, err := args.Text("name")
	if err != nil {
		return nil, err
	}

	scopeName, err := args.Text("scope")
	if err != nil {
		return nil, err
	}
	scope, err := ParseScope(scopeName)
	if err != nil {
		return nil, errs.Wrap(errs.Parameter, err, "%s: parameter scope", ctx.Block.Kind)
	}

	params, err := args.List("params")
	if err != nil {
		return nil, err
	}

	def := &Definition{
		Name:     name,
		Body:     ctx.Block.Children,
		Scope:    scope,
		Enabled:  true,
		ScriptID: ctx.ScriptID,
	}

	switch scope {
	case Player:
		def.Owner = ctx.ActorID()
		if def.Owner == "" {
			return nil, errs.New(errs.Parameter, "player function %s needs an actor", name)
		}
	case World:
		def.Owner = ctx.Namespace
	}

	for _, p := range params {
		param, err := paramOf(p)
		if err != nil {
			return nil, errs.Wrap(errs.Parameter, err, "function %s", name)
		}
		def.Params = append(def.Params, param)
	}

	if def.MaxRecursionDepth, err = args.Int("maxDepth"); err != nil {
		return nil, err
	}

	ms, err := args.Number("maxTime")
	if err != nil {
		return nil, err
	}
	def.MaxExecutionTime = time.Duration(ms * float64(time.Millisecond))

	if args.Has("enabled") {
		if def.Enabled, err = args.Bool("enabled"); err != nil {
			return nil, err
		}
	}
	return def, nil
}

// function.call, "args" positional arguments, "named" named arguments, the
// return value goes to the optional "var" variable. A return inside the
// function never stops the calling chain.
func (b blocks) call(ctx *engine.Context, args *engine.Args) engine.Result {
	if err := args.Require("name"); err != nil {
		return engine.Fail(err)
	}

	name, err := args.Text("name")
	if err != nil {
		return engine.Fail(err)
	}

	positional, err := args.List("args")
	if err != nil {
		return engine.Fail(err)
	}

	named := map[string]value.Value{}
	if args.Has("named") {
		v, err := args.Value("named")
		if err != nil {
			return engine.Fail(err)
		}
		if named, err = v.AsMap(); err != nil {
			return engine.Fail(errs.Wrap(errs.Parameter, err, "%s: parameter named", ctx.Block.Kind))
		}
	}

	res := b.registry.Call(ctx, name, Arguments{Positional: positional, Named: named})
	if res.IsError() {
		return res
	}

	if args.Has("var") {
		ref, err := args.Ref("var")
		if err != nil {
			return engine.Fail(err)
		}
		if err := ctx.Set(ref, res.Value); err != nil {
			return engine.Fail(err)
		}
	}
	return engine.Success("").WithValue(res.Value)
}

// function.return
func handleReturn(ctx *engine.Context, args *engine.Args) engine.Result {
	v, err := args.Value("value")
	if err != nil {
		return engine.Fail(err)
	}
	return engine.Terminate(v)
}

func paramOf(v value.Value) (Param, error) {
	if v.Type() != value.Map {
		if v.String() == "" {
			return Param{}, errs.New(errs.Parameter, "parameter name is required")
		}
		return Param{Name: v.String(), Required: true}, nil
	}

	m, _ := v.AsMap()
	name, has := m["name"]
	if !has || name.String() == "" {
		return Param{}, errs.New(errs.Parameter, "parameter name is required")
	}

	p := Param{Name: name.String(), Required: true}
	if t, has := m["type"]; has {
		typ, err := value.ParseType(t.String())
		if err != nil {
			return Param{}, err
		}
		p.Type = typ
	}
	if d, has := m["default"]; has {
		p.Default = d
		p.Required = false
	}
	if req, has := m["required"]; has {
		required, err := req.AsBoolean()
		if err != nil {
			return Param{}, err
		}
		p.Required = required
	}
	return p, nil
}

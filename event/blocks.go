package event

import (
	"github.com/yaoapp/blocks/engine"
	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/blocks/value"
	"github.com/yaoapp/blocks/variable"
)

type blocks struct {
	dispatcher *Dispatcher
}

// Register the event blocks: event.handle, event.trigger and event.define
func Register(e *engine.Engine, d *Dispatcher) {
	b := blocks{dispatcher: d}
	e.RegisterGroup("event", map[string]engine.Handler{
		"handle":  engine.HandlerFunc(b.handle),
		"trigger": engine.HandlerFunc(b.trigger),
		"define":  engine.HandlerFunc(b.define),
	})
}

// event.handle, registers its body for "event". "filter" is global, world
// or actor; a world filter defaults to the script namespace and an actor
// filter to the current actor.
func (b blocks) handle(ctx *engine.Context, args *engine.Args) engine.Result {
	if err := args.Require("event"); err != nil {
		return engine.Fail(err)
	}

	name, err := args.Text("event")
	if err != nil {
		return engine.Fail(err)
	}

	priority, err := args.Int("priority")
	if err != nil {
		return engine.Fail(err)
	}

	filterName, err := args.Text("filter")
	if err != nil {
		return engine.Fail(err)
	}
	kind, err := ParseFilter(filterName)
	if err != nil {
		return engine.Fail(errs.Wrap(errs.Parameter, err, "%s: parameter filter", ctx.Block.Kind))
	}

	key, err := args.Text("key")
	if err != nil {
		return engine.Fail(err)
	}
	if key == "" {
		switch kind {
		case World:
			key = ctx.Namespace
		case Actor:
			key = ctx.ActorID()
		}
	}

	id, err := b.dispatcher.RegisterHandler(&Registration{
		Event:     name,
		Body:      ctx.Block.Children,
		Filter:    Filter{Kind: kind, Key: key},
		Priority:  priority,
		ScriptID:  ctx.ScriptID,
		Namespace: ctx.Namespace,
	})
	if err != nil {
		return engine.Fail(err)
	}
	return engine.Success("handler %s registered for %s", id, name).WithValue(value.NewText(id))
}

// event.trigger, "payload" is a map whose text entries may hold placeholders.
// "scope" defaults to the script namespace. With "async" the handlers run as
// a task and the task id goes to the optional "var" variable.
func (b blocks) trigger(ctx *engine.Context, args *engine.Args) engine.Result {
	if err := args.Require("event"); err != nil {
		return engine.Fail(err)
	}

	name, err := args.Text("event")
	if err != nil {
		return engine.Fail(err)
	}

	payload, err := b.payload(ctx, args)
	if err != nil {
		return engine.Fail(err)
	}

	scope := ctx.Namespace
	if args.Has("scope") {
		if scope, err = args.Text("scope"); err != nil {
			return engine.Fail(err)
		}
	}

	async, err := args.Bool("async")
	if err != nil {
		return engine.Fail(err)
	}

	ev := Event{
		Name:     name,
		Payload:  payload,
		Actor:    ctx.Actor,
		Scope:    scope,
		ScriptID: ctx.ScriptID,
		Debug:    ctx.Debug,
		Depth:    ctx.EventDepth + 1,
	}

	if async {
		h, err := b.dispatcher.TriggerAsync(ev)
		if err != nil {
			return engine.Fail(err)
		}
		id := value.NewText(h.ID)
		if args.Has("var") {
			ref, err := args.Ref("var")
			if err != nil {
				return engine.Fail(err)
			}
			if err := ctx.Set(ref, id); err != nil {
				return engine.Fail(err)
			}
		}
		return engine.Success("event %s queued", name).WithValue(id)
	}

	outcomes, err := b.dispatcher.Trigger(ctx.Context, ev)
	if err != nil {
		return engine.Fail(err)
	}
	return engine.Success("event %s handled by %d", name, len(outcomes)).WithValue(value.NewNumber(float64(len(outcomes))))
}

// event.define, "fields" is a list of {name, type, required} maps and
// "schema" an optional JSON schema
func (b blocks) define(ctx *engine.Context, args *engine.Args) engine.Result {
	if err := args.Require("event"); err != nil {
		return engine.Fail(err)
	}

	name, err := args.Text("event")
	if err != nil {
		return engine.Fail(err)
	}

	fields, err := args.List("fields")
	if err != nil {
		return engine.Fail(err)
	}

	s := Schema{}
	for _, f := range fields {
		field, err := fieldOf(f)
		if err != nil {
			return engine.Fail(errs.Wrap(errs.Parameter, err, "event %s", name))
		}
		s.Fields = append(s.Fields, field)
	}

	if args.Has("schema") {
		v, err := args.Value("schema")
		if err != nil {
			return engine.Fail(err)
		}
		s.JSON = v.Interface()
	}

	if err := b.dispatcher.Define(name, s); err != nil {
		return engine.Fail(err)
	}
	return engine.Success("event %s defined", name)
}

func (b blocks) payload(ctx *engine.Context, args *engine.Args) (map[string]value.Value, error) {
	if !args.Has("payload") {
		return map[string]value.Value{}, nil
	}

	v, err := args.Value("payload")
	if err != nil {
		return nil, err
	}

	m, err := v.AsMap()
	if err != nil {
		return nil, errs.Wrap(errs.Parameter, err, "%s: parameter payload", ctx.Block.Kind)
	}

	res := make(map[string]value.Value, len(m))
	for key, item := range m {
		if item.Type() == value.Text && variable.HasPlaceholder(item.String()) {
			if item, err = ctx.Resolve(item.String()); err != nil {
				return nil, err
			}
		}
		res[key] = item
	}
	return res, nil
}

func fieldOf(v value.Value) (Field, error) {
	if v.Type() != value.Map {
		if v.String() == "" {
			return Field{}, errs.New(errs.Parameter, "field name is required")
		}
		return Field{Name: v.String(), Required: true}, nil
	}

	m, _ := v.AsMap()
	name, has := m["name"]
	if !has || name.String() == "" {
		return Field{}, errs.New(errs.Parameter, "field name is required")
	}

	field := Field{Name: name.String(), Required: true}
	if t, has := m["type"]; has {
		typ, err := value.ParseType(t.String())
		if err != nil {
			return Field{}, err
		}
		field.Type = typ
	}
	if req, has := m["required"]; has {
		required, err := req.AsBoolean()
		if err != nil {
			return Field{}, err
		}
		field.Required = required
	}
	return field, nil
}

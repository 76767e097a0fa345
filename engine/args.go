package engine

import (
	"github.com/yaoapp/blocks/block"
	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/blocks/value"
	"github.com/yaoapp/blocks/variable"
)

// NewArgs the parameters of a block in a context
func NewArgs(ctx *Context, b *block.Block) *Args {
	return &Args{ctx: ctx, block: b}
}

// Has check if the parameter is declared
func (args *Args) Has(name string) bool {
	_, has := args.block.Params[name]
	return has
}

// Value the resolved value of a parameter, a missing parameter is Null
func (args *Args) Value(name string) (value.Value, error) {
	p, has := args.block.Params[name]
	if !has {
		return value.Nil, nil
	}

	depth := args.ctx.engine.option.ResolveDepth
	switch p.Kind {
	case block.Reference:
		return args.ctx.Vars.ResolveRef(args.ctx.Frame(), p.Ref, depth)
	case block.Template:
		return args.ctx.Vars.Resolve(args.ctx.Frame(), p.Template, depth)
	}
	return p.Value, nil
}

// Text a text parameter
func (args *Args) Text(name string) (string, error) {
	v, err := args.Value(name)
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// Number a number parameter
func (args *Args) Number(name string) (float64, error) {
	v, err := args.Value(name)
	if err != nil {
		return 0, err
	}
	n, err := v.AsNumber()
	if err != nil {
		return 0, args.mistyped(name, err)
	}
	return n, nil
}

// Int an integer parameter
func (args *Args) Int(name string) (int, error) {
	v, err := args.Value(name)
	if err != nil {
		return 0, err
	}
	n, err := v.AsInt()
	if err != nil {
		return 0, args.mistyped(name, err)
	}
	return n, nil
}

// Bool a boolean parameter
func (args *Args) Bool(name string) (bool, error) {
	v, err := args.Value(name)
	if err != nil {
		return false, err
	}
	b, err := v.AsBoolean()
	if err != nil {
		return false, args.mistyped(name, err)
	}
	return b, nil
}

// List a list parameter
func (args *Args) List(name string) ([]value.Value, error) {
	v, err := args.Value(name)
	if err != nil {
		return nil, err
	}
	l, err := v.AsList()
	if err != nil {
		return nil, args.mistyped(name, err)
	}
	return l, nil
}

// Ref the variable a parameter names: a reference parameter names its
// variable, text names "scope.name"
func (args *Args) Ref(name string) (variable.Ref, error) {
	p, has := args.block.Params[name]
	if !has {
		return variable.Ref{}, errs.New(errs.Parameter, "%s: parameter %s is required", args.block.Kind, name)
	}

	if p.Kind == block.Reference {
		return p.Ref, nil
	}

	text, err := args.Text(name)
	if err != nil {
		return variable.Ref{}, err
	}

	ref := variable.ParseRef(text)
	if ref.Name == "" {
		return variable.Ref{}, errs.New(errs.Parameter, "%s: parameter %s is empty", args.block.Kind, name)
	}
	return ref, nil
}

// Require fail unless every parameter is declared
func (args *Args) Require(names ...string) error {
	for _, name := range names {
		if !args.Has(name) {
			return errs.New(errs.Parameter, "%s: parameter %s is required", args.block.Kind, name)
		}
	}
	return nil
}

func (args *Args) mistyped(name string, err error) error {
	return errs.Wrap(errs.Parameter, err, "%s: parameter %s", args.block.Kind, name)
}

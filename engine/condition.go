package engine

import (
	"strings"

	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/blocks/value"
)

// Evaluate the condition of a conditional or loop block. A condition is a
// "condition" parameter, a "left" "op" "right" comparison, or a "test" naming
// a block kind whose result value is the condition. "negate" inverts it.
func Evaluate(ctx *Context, args *Args) (bool, error) {
	ok, err := evaluate(ctx, args)
	if err != nil || !args.Has("negate") {
		return ok, err
	}

	negate, err := args.Bool("negate")
	if err != nil {
		return false, err
	}
	return ok != negate, nil
}

func evaluate(ctx *Context, args *Args) (bool, error) {
	switch {
	case args.Has("condition"):
		return args.Bool("condition")

	case args.Has("left") || args.Has("op"):
		left, err := args.Value("left")
		if err != nil {
			return false, err
		}
		right, err := args.Value("right")
		if err != nil {
			return false, err
		}
		op := "=="
		if args.Has("op") {
			if op, err = args.Text("op"); err != nil {
				return false, err
			}
		}
		return Compare(op, left, right)

	case args.Has("test"):
		kind, err := args.Text("test")
		if err != nil {
			return false, err
		}
		handler, has := ctx.engine.handler(kind)
		if !has {
			return false, errs.New(errs.UnknownKind, "unknown condition: %s", kind)
		}
		res := handler.Handle(ctx, args)
		if res.IsError() {
			return false, res.Err
		}
		return res.Value.AsBoolean()
	}

	return false, errs.New(errs.Parameter, "%s: condition is required", ctx.Block.Kind)
}

// Compare apply a comparison operator
func Compare(op string, left, right value.Value) (bool, error) {
	op = strings.TrimSpace(op)
	switch op {
	case "==", "=":
		return equal(left, right), nil
	case "!=", "<>":
		return !equal(left, right), nil
	case "contains":
		return left.Contains(right), nil
	case ">", ">=", "<", "<=":
		c, err := value.Compare(left, right)
		if err != nil {
			return false, errs.Wrap(errs.Parameter, err, "cannot compare %s %s %s", left, op, right)
		}
		switch op {
		case ">":
			return c > 0, nil
		case ">=":
			return c >= 0, nil
		case "<":
			return c < 0, nil
		}
		return c <= 0, nil
	}
	return false, errs.New(errs.Parameter, "unknown operator %q", op)
}

func equal(left, right value.Value) bool {
	if left.Type() == right.Type() {
		return left.Equal(right)
	}
	if left.IsNull() || right.IsNull() {
		return false
	}
	c, err := value.Compare(left, right)
	return err == nil && c == 0
}

package json

import (
	"github.com/yaoapp/blocks/engine"
	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/blocks/value"
)

// Register the json blocks: json.encode, json.decode, json.parse, json.repair
// and json.validate. Each writes its result to the optional "var" variable.
func Register(e *engine.Engine) {
	e.RegisterGroup("json", map[string]engine.Handler{
		"encode":   engine.HandlerFunc(handleEncode),
		"decode":   engine.HandlerFunc(handleDecode),
		"parse":    engine.HandlerFunc(handleParse),
		"repair":   engine.HandlerFunc(handleRepair),
		"validate": engine.HandlerFunc(handleValidate),
	})
}

// json.encode
func handleEncode(ctx *engine.Context, args *engine.Args) engine.Result {
	v, err := args.Value("value")
	if err != nil {
		return engine.Fail(err)
	}

	text, err := Encode(v.Interface())
	if err != nil {
		return engine.Fail(errs.Wrap(errs.Parameter, err, "json.encode"))
	}
	return output(ctx, args, value.NewText(text))
}

// json.decode
func handleDecode(ctx *engine.Context, args *engine.Args) engine.Result {
	text, err := args.Text("text")
	if err != nil {
		return engine.Fail(err)
	}

	res, err := Decode(text)
	if err != nil {
		return engine.Fail(errs.Wrap(errs.Parameter, err, "json.decode"))
	}
	return output(ctx, args, value.Of(res))
}

// json.parse, the optional "format" is json, jsonc, yaml or toml
func handleParse(ctx *engine.Context, args *engine.Args) engine.Result {
	text, err := args.Text("text")
	if err != nil {
		return engine.Fail(err)
	}

	format, err := args.Text("format")
	if err != nil {
		return engine.Fail(err)
	}

	res, err := Parse(text, format)
	if err != nil {
		return engine.Fail(errs.Wrap(errs.Parameter, err, "json.parse"))
	}
	return output(ctx, args, value.Of(res))
}

// json.repair
func handleRepair(ctx *engine.Context, args *engine.Args) engine.Result {
	text, err := args.Text("text")
	if err != nil {
		return engine.Fail(err)
	}

	repaired, err := Repair(text)
	if err != nil {
		return engine.Fail(errs.Wrap(errs.Parameter, err, "json.repair"))
	}
	return output(ctx, args, value.NewText(repaired))
}

// json.validate, the result is a boolean. An invalid schema is an error.
func handleValidate(ctx *engine.Context, args *engine.Args) engine.Result {
	if err := args.Require("value", "schema"); err != nil {
		return engine.Fail(err)
	}

	v, err := args.Value("value")
	if err != nil {
		return engine.Fail(err)
	}

	schema, err := args.Value("schema")
	if err != nil {
		return engine.Fail(err)
	}

	source := schema.Interface()
	if schema.Type() == value.Text {
		source, _ = schema.AsString()
	}

	validator, err := NewValidator(source)
	if err != nil {
		return engine.Fail(errs.Wrap(errs.Parameter, err, "json.validate: schema"))
	}

	valid := validator.Validate(v.Interface()) == nil
	return output(ctx, args, value.NewBool(valid))
}

func output(ctx *engine.Context, args *engine.Args, v value.Value) engine.Result {
	if args.Has("var") {
		ref, err := args.Ref("var")
		if err != nil {
			return engine.Fail(err)
		}
		if err := ctx.Set(ref, v); err != nil {
			return engine.Fail(err)
		}
	}
	return engine.Success("").WithValue(v)
}

package schedule

import (
	"github.com/yaoapp/blocks/engine"
	"github.com/yaoapp/blocks/errs"
)

// Register the schedule blocks: schedule.enable, schedule.disable and
// schedule.fire, each taking the schedule "name"
func Register(e *engine.Engine, s *Scheduler) {
	e.RegisterGroup("schedule", map[string]engine.Handler{
		"enable":  apply(s.Enable, "schedule %s enabled"),
		"disable": apply(s.Disable, "schedule %s disabled"),
		"fire":    apply(s.Fire, "schedule %s fired"),
	})
}

func apply(fn func(name string) error, message string) engine.Handler {
	return engine.HandlerFunc(func(ctx *engine.Context, args *engine.Args) engine.Result {
		if err := args.Require("name"); err != nil {
			return engine.Fail(err)
		}
		name, err := args.Text("name")
		if err != nil {
			return engine.Fail(err)
		}
		if err := fn(name); err != nil {
			if errs.CodeOf(err) == 0 {
				err = errs.Wrap(errs.Parameter, err, "%s", ctx.Block.Kind)
			}
			return engine.Fail(err)
		}
		return engine.Success(message, name)
	})
}

package task

import (
	"time"

	"github.com/yaoapp/blocks/engine"
	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/blocks/value"
)

type blocks struct {
	coordinator *Coordinator
}

// Register the async blocks: async.run, async.delay, async.loop and async.cancel
func Register(e *engine.Engine, c *Coordinator) {
	b := blocks{coordinator: c}
	e.RegisterGroup("async", map[string]engine.Handler{
		"run":    engine.HandlerFunc(b.run),
		"delay":  engine.HandlerFunc(b.delay),
		"loop":   engine.HandlerFunc(b.loop),
		"cancel": engine.HandlerFunc(b.cancel),
	})
}

// async.run
func (b blocks) run(ctx *engine.Context, args *engine.Args) engine.Result {
	return b.schedule(ctx, args, Request{Kind: Async})
}

// async.delay, "delay" in milliseconds
func (b blocks) delay(ctx *engine.Context, args *engine.Args) engine.Result {
	delay, err := milliseconds(args, "delay")
	if err != nil {
		return engine.Fail(err)
	}
	return b.schedule(ctx, args, Request{Kind: Delay, Delay: delay})
}

// async.loop, "interval" and the initial "delay" in milliseconds, "count"
// iterations or 0 for an infinite loop
func (b blocks) loop(ctx *engine.Context, args *engine.Args) engine.Result {
	if err := args.Require("interval"); err != nil {
		return engine.Fail(err)
	}

	interval, err := milliseconds(args, "interval")
	if err != nil {
		return engine.Fail(err)
	}

	delay, err := milliseconds(args, "delay")
	if err != nil {
		return engine.Fail(err)
	}

	count, err := args.Int("count")
	if err != nil {
		return engine.Fail(err)
	}
	if count < 0 {
		return engine.Failf(errs.Parameter, "%s: count must not be negative", ctx.Block.Kind)
	}

	return b.schedule(ctx, args, Request{Kind: Loop, Delay: delay, Interval: interval, Count: count})
}

// async.cancel, "task" cancels one of the actor's tasks, "all" every one
func (b blocks) cancel(ctx *engine.Context, args *engine.Args) engine.Result {
	owner := ctx.ActorID()

	if args.Has("task") {
		id, err := args.Text("task")
		if err != nil {
			return engine.Fail(err)
		}
		if h, has := b.coordinator.Get(id); has && h.Owner != owner {
			return engine.Failf(errs.Parameter, "task %s belongs to another owner", id)
		}
		n := 0
		if b.coordinator.Cancel(id) {
			n = 1
		}
		return engine.Success("%d tasks cancelled", n).WithValue(value.NewNumber(float64(n)))
	}

	all, err := args.Bool("all")
	if err != nil {
		return engine.Fail(err)
	}
	if !all {
		return engine.Failf(errs.Parameter, "%s: task or all is required", ctx.Block.Kind)
	}

	n := b.coordinator.CancelAll(owner)
	return engine.Success("%d tasks cancelled", n).WithValue(value.NewNumber(float64(n)))
}

func (b blocks) schedule(ctx *engine.Context, args *engine.Args, req Request) engine.Result {
	body := ctx.Block.Children
	detached := ctx.Detach()

	req.Owner = ctx.ActorID()
	req.ScriptID = ctx.ScriptID
	req.Done = detached.Release

	if req.Kind == Loop {
		count := req.Count
		loop := engine.NewLoop(detached, body, 0, func(_ *engine.Context, index int) (bool, error) {
			return count == 0 || index < count, nil
		})
		req.Fire = func(int) bool {
			loop.Step()
			return !loop.Done()
		}
	} else {
		req.Fire = func(int) bool {
			engine.Settle(detached, detached.ExecuteBody(body))
			return false
		}
	}

	h, err := b.coordinator.Schedule(req)
	if err != nil {
		detached.Release()
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
	return engine.Success("task %s scheduled", h.ID).WithValue(id)
}

func milliseconds(args *engine.Args, name string) (time.Duration, error) {
	ms, err := args.Number(name)
	if err != nil {
		return 0, err
	}
	if ms < 0 {
		return 0, errs.New(errs.Parameter, "parameter %s must not be negative", name)
	}
	return time.Duration(ms * float64(time.Millisecond)), nil
}

package engine

import (
	"github.com/yaoapp/blocks/block"
	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/blocks/value"
	"github.com/yaoapp/blocks/variable"
	"github.com/yaoapp/kun/log"
)

// LoopState the state of a loop frame
type LoopState int

const (
	// LoopPending not started
	LoopPending LoopState = iota

	// LoopRunning the last iteration settled normally
	LoopRunning

	// LoopContinuing the last iteration was cut short by continue
	LoopContinuing

	// LoopBreaking the loop was stopped by break
	LoopBreaking

	// LoopCompleted the loop ran out of iterations or was terminated
	LoopCompleted

	// LoopFailed an iteration or the loop itself failed
	LoopFailed
)

var loopStates = map[LoopState]string{
	LoopPending:    "pending",
	LoopRunning:    "running",
	LoopContinuing: "continuing",
	LoopBreaking:   "breaking",
	LoopCompleted:  "completed",
	LoopFailed:     "failed",
}

func (state LoopState) String() string {
	return loopStates[state]
}

// Iterator decide whether iteration index runs and bind its variables
type Iterator func(ctx *Context, index int) (bool, error)

// Loop a loop frame. Each Step runs one iteration, so a loop can be driven
// by a plain for statement or by a scheduler without growing the stack.
type Loop struct {
	ctx     *Context
	body    []*block.Block
	iterate Iterator
	limit   int
	index   int
	state   LoopState
	result  Result
	restore func()
	finally func()
}

// NewLoop create a loop frame, limit 0 means no iteration ceiling. The
// loopIndex and loopCount variables get their prior values back when the
// loop is done.
func NewLoop(ctx *Context, body []*block.Block, limit int, iterate Iterator) *Loop {
	child := ctx.Derive()
	child.loops++

	restore, err := save(child, variable.Ref{Name: "loopIndex"}, variable.Ref{Name: "loopCount"})
	if err != nil {
		log.Warn("[%s] %s: loop variables not saved: %s", ctx.ScriptID, child.kindOf(), err.Error())
		restore = nil
	}

	return &Loop{
		ctx:     child,
		body:    body,
		iterate: iterate,
		limit:   limit,
		state:   LoopPending,
		result:  Success(""),
		restore: restore,
	}
}

// Finally run fn once when the loop is done
func (loop *Loop) Finally(fn func()) *Loop {
	loop.finally = fn
	return loop
}

// State the current state
func (loop *Loop) State() LoopState {
	return loop.state
}

// Index the number of iterations started
func (loop *Loop) Index() int {
	return loop.index
}

// Result the outcome once done
func (loop *Loop) Result() Result {
	return loop.result
}

// Done check if the loop is finished
func (loop *Loop) Done() bool {
	return loop.state == LoopBreaking || loop.state == LoopCompleted || loop.state == LoopFailed
}

// Run drive the loop to the end
func (loop *Loop) Run() Result {
	for !loop.Done() {
		loop.Step()
	}
	return loop.result
}

// Step run one iteration
func (loop *Loop) Step() LoopState {
	if loop.Done() {
		return loop.state
	}

	if err := loop.ctx.Err(); err != nil {
		return loop.finish(LoopFailed, Fail(err))
	}

	ok, err := loop.iterate(loop.ctx, loop.index)
	if err != nil {
		return loop.finish(LoopFailed, Fail(err))
	}
	if !ok {
		return loop.finish(LoopCompleted, Success(""))
	}

	if loop.limit > 0 && loop.index >= loop.limit {
		return loop.finish(LoopFailed, Failf(errs.Quota, "%s exceeded %d iterations", loop.kind(), loop.limit))
	}

	loop.ctx.SetLocal("loopIndex", value.NewNumber(float64(loop.index)))
	loop.ctx.SetLocal("loopCount", value.NewNumber(float64(loop.index+1)))
	loop.index++

	res := loop.ctx.ExecuteBody(loop.body)
	switch {
	case res.IsTerminated():
		return loop.finish(LoopCompleted, res)
	case res.IsError():
		return loop.finish(LoopFailed, res)
	case res.Signal == SignalBreak:
		return loop.finish(LoopBreaking, Success(""))
	case res.Signal == SignalContinue:
		loop.state = LoopContinuing
		return loop.state
	}

	loop.state = LoopRunning
	return loop.state
}

func (loop *Loop) finish(state LoopState, res Result) LoopState {
	loop.state = state
	loop.result = res
	if loop.restore != nil {
		loop.restore()
		loop.restore = nil
	}
	if loop.finally != nil {
		loop.finally()
		loop.finally = nil
	}
	return state
}

func (loop *Loop) kind() string {
	return loop.ctx.kindOf()
}

func (ctx *Context) kindOf() string {
	if ctx.Block != nil {
		return ctx.Block.Kind
	}
	return "loop"
}

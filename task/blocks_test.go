package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaoapp/blocks/actor"
	"github.com/yaoapp/blocks/block"
	"github.com/yaoapp/blocks/engine"
	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/blocks/value"
	"github.com/yaoapp/blocks/variable"
)

func prepare(t *testing.T, option Option) (*engine.Engine, *Coordinator, *variable.Store) {
	vars := variable.New(variable.Option{})
	e := engine.New(vars, engine.Option{})
	c := New(option)
	Register(e, c)
	c.Start()
	t.Cleanup(func() {
		c.Shutdown()
		vars.Close()
	})
	return e, c, vars
}

func globalOf(vars *variable.Store, name string) value.Value {
	v, _, _ := vars.Get(variable.Key{Scope: variable.Global, Name: name})
	return v
}

func TestAsyncDelayBlock(t *testing.T) {
	e, c, vars := prepare(t, Option{})

	head := block.Chain(
		block.New("variable.set").With("name", "greeting").With("value", "hello"),
		block.New("async.delay").With("delay", 5).Body(
			block.New("variable.set").With("name", "global.seen").Ref("value", "greeting"),
		),
	)
	res := e.Run(head, engine.Invocation{ScriptID: "greeter"})
	require.True(t, res.OK(), res.String())
	assert.Equal(t, value.Text, res.Value.Type())

	require.Eventually(t, func() bool { return c.Total() == 0 }, time.Second, time.Millisecond)
	assert.Equal(t, value.NewText("hello"), globalOf(vars, "seen"))
	assert.Eventually(t, func() bool { return vars.Locals() == 0 }, time.Second, time.Millisecond)
}

func TestAsyncLoopBlock(t *testing.T) {
	e, c, vars := prepare(t, Option{})

	loop := block.New("async.loop").With("interval", 1).With("count", 3).With("var", "global.task").Body(
		block.New("variable.add").With("name", "global.n"),
	)
	res := e.Run(loop, engine.Invocation{})
	require.True(t, res.OK(), res.String())
	assert.Equal(t, res.Value, globalOf(vars, "task"))

	require.Eventually(t, func() bool { return c.Total() == 0 }, time.Second, time.Millisecond)
	assert.Equal(t, value.NewNumber(3), globalOf(vars, "n"))
}

func TestAsyncLoopBreak(t *testing.T) {
	e, c, vars := prepare(t, Option{})

	loop := block.New("async.loop").With("interval", 1).Body(
		block.New("variable.add").With("name", "global.n"),
		block.New("control.if").Ref("left", "global.n").With("op", "==").With("right", 4).Body(
			block.New("control.break"),
		),
	)
	res := e.Run(loop, engine.Invocation{})
	require.True(t, res.OK(), res.String())

	require.Eventually(t, func() bool { return c.Total() == 0 }, time.Second, time.Millisecond)
	assert.Equal(t, value.NewNumber(4), globalOf(vars, "n"))
}

func TestAsyncCancelBlock(t *testing.T) {
	e, c, _ := prepare(t, Option{})
	steve := actor.NewBasic("steve", "")

	head := block.Chain(
		block.New("async.delay").With("delay", 60000).With("var", "task"),
		block.New("async.cancel").Ref("task", "task"),
	)
	res := e.Run(head, engine.Invocation{Actor: steve})
	require.True(t, res.OK(), res.String())
	assert.Equal(t, value.NewNumber(1), res.Value)
	assert.Equal(t, 0, c.Count("steve"))

	for i := 0; i < 3; i++ {
		e.Run(block.New("async.delay").With("delay", 60000), engine.Invocation{Actor: steve})
	}
	res = e.Run(block.New("async.cancel").With("all", true), engine.Invocation{Actor: steve})
	assert.Equal(t, value.NewNumber(3), res.Value)

	res = e.Run(block.New("async.cancel"), engine.Invocation{Actor: steve})
	assert.Equal(t, errs.Parameter, res.Code())
}

func TestAsyncCancelOthers(t *testing.T) {
	e, c, _ := prepare(t, Option{})
	res := e.Run(block.New("async.delay").With("delay", 60000), engine.Invocation{Actor: actor.NewBasic("alex", "")})
	require.True(t, res.OK())

	res = e.Run(block.New("async.cancel").With("task", res.Value.String()), engine.Invocation{Actor: actor.NewBasic("steve", "")})
	assert.Equal(t, errs.Parameter, res.Code())
	assert.Equal(t, 1, c.Count("alex"))
}

func TestAsyncQuotaBlock(t *testing.T) {
	e, _, _ := prepare(t, Option{Quota: 2})
	steve := actor.NewBasic("steve", "")

	delay := block.New("async.delay").With("delay", 60000)
	assert.True(t, e.Run(delay, engine.Invocation{Actor: steve}).OK())
	assert.True(t, e.Run(delay, engine.Invocation{Actor: steve}).OK())

	res := e.Run(delay, engine.Invocation{Actor: steve})
	assert.Equal(t, errs.Quota, res.Code())
	assert.Len(t, steve.Messages(), 1)
}

func TestAsyncLoopParams(t *testing.T) {
	e, _, _ := prepare(t, Option{})
	res := e.Run(block.New("async.loop"), engine.Invocation{})
	assert.Equal(t, errs.Parameter, res.Code())

	res = e.Run(block.New("async.loop").With("interval", 10).With("count", -1), engine.Invocation{})
	assert.Equal(t, errs.Parameter, res.Code())

	res = e.Run(block.New("async.delay").With("delay", -1), engine.Invocation{})
	assert.Equal(t, errs.Parameter, res.Code())
}

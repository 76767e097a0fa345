package event

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
)

func TestHandleAndTriggerBlocks(t *testing.T) {
	e, d, vars, rec := prepare(t)

	define := block.Chain(
		block.New("event.handle").With("event", "ping").With("priority", 5).Body(
			block.New("test.record").Named("low"),
		),
		block.New("event.handle").With("event", "ping").With("priority", 10).Body(
			block.New("test.record").Named("high"),
			block.New("variable.set").With("name", "global.from").With("value", "{{ from }}"),
		),
	)
	res := e.Run(define, engine.Invocation{ScriptID: "pinger", Namespace: "lobby"})
	require.True(t, res.OK(), res.String())
	assert.Len(t, d.Handlers("ping"), 2)

	res = e.Run(block.Chain(
		block.New("variable.set").With("name", "me").With("value", "steve"),
		block.New("event.trigger").With("event", "ping").With("payload", map[string]interface{}{"from": "{{ me }}"}),
	), engine.Invocation{})
	require.True(t, res.OK(), res.String())
	assert.Equal(t, value.NewNumber(2), res.Value)
	assert.Equal(t, []string{"high", "low"}, rec.list())
	assert.Equal(t, value.NewText("steve"), global(t, vars, "from"))

	assert.Equal(t, 2, d.UnregisterScript("pinger"))
}

func TestHandleFilterBlocks(t *testing.T) {
	e, d, _, rec := prepare(t)
	steve := actor.NewBasic("steve", "Steve")

	res := e.Run(block.Chain(
		block.New("event.handle").With("event", "spawn").With("filter", "world").Body(
			block.New("test.record").Named("world"),
		),
		block.New("event.handle").With("event", "spawn").With("filter", "actor").Body(
			block.New("test.record").Named("actor"),
		),
	), engine.Invocation{Actor: steve, Namespace: "lobby", ScriptID: "spawn"})
	require.True(t, res.OK(), res.String())

	infos := d.Handlers("spawn")
	require.Len(t, infos, 2)
	assert.Equal(t, "lobby", infos[0].Key)
	assert.Equal(t, "steve", infos[1].Key)

	res = e.Run(block.New("event.trigger").With("event", "spawn"), engine.Invocation{Actor: steve, Namespace: "lobby"})
	require.True(t, res.OK(), res.String())
	assert.Equal(t, []string{"world", "actor"}, rec.list())

	rec.ids = nil
	res = e.Run(block.New("event.trigger").With("event", "spawn").With("scope", "arena"), engine.Invocation{})
	require.True(t, res.OK(), res.String())
	assert.Empty(t, rec.list())

	res = e.Run(block.New("event.handle").With("event", "spawn").With("filter", "actor").Body(), engine.Invocation{})
	assert.True(t, errs.Is(res.Err, errs.Parameter))

	res = e.Run(block.New("event.handle").With("event", "spawn").With("filter", "planet"), engine.Invocation{})
	assert.True(t, errs.Is(res.Err, errs.Parameter))
}

func TestDefineBlock(t *testing.T) {
	e, _, _, rec := prepare(t)

	res := e.Run(block.Chain(
		block.New("event.define").With("event", "score").With("fields", []interface{}{
			map[string]interface{}{"name": "points", "type": "number"},
			"player",
		}),
		block.New("event.handle").With("event", "score").Body(block.New("test.record").Named("score")),
	), engine.Invocation{})
	require.True(t, res.OK(), res.String())

	res = e.Run(block.New("event.trigger").With("event", "score").With("payload", map[string]interface{}{
		"points": 3,
	}), engine.Invocation{})
	assert.True(t, errs.Is(res.Err, errs.Validation))
	assert.Empty(t, rec.list())

	res = e.Run(block.New("event.trigger").With("event", "score").With("payload", map[string]interface{}{
		"points": "3", "player": "steve",
	}), engine.Invocation{})
	require.True(t, res.OK(), res.String())
	assert.Equal(t, []string{"score"}, rec.list())
}

func TestAsyncTriggerBlock(t *testing.T) {
	e, d, vars, rec := prepare(t)
	_, err := d.RegisterHandler(handler("later", 0, block.New("test.record").Named("later")))
	require.NoError(t, err)

	res := e.Run(block.New("event.trigger").With("event", "later").With("async", true).With("var", "global.task"), engine.Invocation{})
	require.True(t, res.OK(), res.String())
	assert.Equal(t, res.Value, global(t, vars, "task"))
	assert.Eventually(t, func() bool { return len(rec.list()) == 1 }, time.Second, time.Millisecond)

	res = e.Run(block.New("event.trigger").With("payload", map[string]interface{}{}), engine.Invocation{})
	assert.True(t, errs.Is(res.Err, errs.Parameter))

	res = e.Run(block.New("event.trigger").With("event", "later").With("payload", 3), engine.Invocation{})
	assert.True(t, errs.Is(res.Err, errs.Parameter))
}

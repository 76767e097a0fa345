package blocks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaoapp/blocks/actor"
	"github.com/yaoapp/blocks/block"
	"github.com/yaoapp/blocks/config"
	"github.com/yaoapp/blocks/errs"
	"github.com/yaoapp/blocks/function"
	"github.com/yaoapp/blocks/loader"
	"github.com/yaoapp/blocks/store"
	"github.com/yaoapp/blocks/value"
	"github.com/yaoapp/blocks/variable"
)

const lobbyYAML = `
name: lobby
namespace: lobby
roots:
  - kind: event.handle
    params:
      event: join
      priority: 10
    body:
      - kind: message.send
        params:
          text: "Welcome {{ name }}"
        then:
          - kind: variable.add
            params:
              name: global.visits
  - kind: function.define
    params:
      name: echo
      params: [text]
    body:
      - kind: function.return
        params:
          value: "{{ text }}"
`

const brokenYAML = `
name: broken
roots:
  - kind: event.handle
    params:
      event: leave
    body:
      - kind: message.send
        params:
          text: bye
  - kind: nothing.here
`

func prepare(t *testing.T) *Runtime {
	cfg := config.Default()
	cfg.Stores = map[string]config.Store{
		"global":     {Driver: "lru", Option: store.Option{"size": 64}},
		"persistent": {Driver: "buntdb", Cache: 16},
	}

	r, err := New(cfg)
	require.NoError(t, err)
	r.Start()
	t.Cleanup(func() { r.Close() })
	return r
}

func global(t *testing.T, r *Runtime, name string) value.Value {
	v, _, err := r.Vars().Get(variable.Key{Scope: variable.Global, Name: name})
	require.NoError(t, err)
	return v
}

func load(t *testing.T, r *Runtime, name string, content string) *block.Script {
	script, err := loader.Parse(name, []byte(content))
	require.NoError(t, err)
	require.NoError(t, r.Load(script))
	return script
}

func TestOpenStores(t *testing.T) {
	cfg := config.Default()
	cfg.Stores = map[string]config.Store{
		"Server":     {Driver: "buntdb", Cache: 8},
		"persistent": {Driver: "lru"},
	}

	option, err := OpenStores(cfg)
	require.NoError(t, err)
	assert.Nil(t, option.Player)
	assert.Nil(t, option.Global)
	require.NotNil(t, option.Server)
	require.NotNil(t, option.Persistent)

	vars := variable.New(option)
	defer vars.Close()
	key := variable.Key{Scope: variable.Server, Name: "round"}
	require.NoError(t, vars.Set(key, value.NewNumber(3)))
	v, ok, err := vars.Get(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, value.NewNumber(3), v)

	cfg.Stores = map[string]config.Store{"server": {Driver: "unknown"}}
	_, err = OpenStores(cfg)
	assert.Error(t, err)
}

func TestNewInvalid(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Policy = "retry"
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestLoadAndTrigger(t *testing.T) {
	r := prepare(t)
	load(t, r, "lobby.yml", lobbyYAML)

	scripts := r.Scripts()
	require.Len(t, scripts, 1)
	assert.Equal(t, "lobby", scripts[0].ID)
	assert.Equal(t, 2, scripts[0].Roots)
	assert.Len(t, r.Events().Handlers("join"), 1)

	ann := actor.NewBasic("ann", "Ann")
	require.NoError(t, r.Join(ann))

	outcomes, err := r.Trigger(context.Background(), "join", map[string]value.Value{"name": value.NewText("Ann")}, ann, "lobby")
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.True(t, outcomes[0].Result.OK())
	assert.Equal(t, []string{"Welcome Ann"}, ann.Messages())
	assert.Equal(t, value.NewNumber(1), global(t, r, "visits"))
}

func TestTriggerAsync(t *testing.T) {
	r := prepare(t)
	load(t, r, "lobby.yml", lobbyYAML)

	ann := actor.NewBasic("ann", "Ann")
	require.NoError(t, r.Join(ann))

	h, err := r.TriggerAsync("join", map[string]value.Value{"name": value.NewText("Ann")}, ann, "lobby")
	require.NoError(t, err)
	assert.NotEmpty(t, h.ID)

	assert.Eventually(t, func() bool {
		return len(ann.Messages()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestCall(t *testing.T) {
	r := prepare(t)
	load(t, r, "lobby.yml", lobbyYAML)

	res := r.Call(context.Background(), "echo", nil, "lobby", function.Arguments{
		Positional: []value.Value{value.NewText("hi")},
	})
	require.True(t, res.IsTerminated(), res.Message)
	assert.Equal(t, value.NewText("hi"), res.Value)

	res = r.Call(context.Background(), "echo", nil, "arena", function.Arguments{})
	assert.Equal(t, errs.UnknownKind, res.Code())
}

func TestLoadFailingRoot(t *testing.T) {
	r := prepare(t)

	script, err := loader.Parse("broken.yml", []byte(brokenYAML))
	require.NoError(t, err)

	err = r.Load(script)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.UnknownKind))
	assert.Empty(t, r.Scripts())
	assert.Empty(t, r.Events().Handlers("leave"))
}

func TestReload(t *testing.T) {
	r := prepare(t)
	load(t, r, "lobby.yml", lobbyYAML)
	load(t, r, "lobby.yml", lobbyYAML)

	assert.Len(t, r.Scripts(), 1)
	assert.Len(t, r.Events().Handlers("join"), 1)
	assert.Len(t, r.Functions().List(), 1)
}

func TestUnload(t *testing.T) {
	r := prepare(t)
	load(t, r, "lobby.yml", lobbyYAML)

	assert.True(t, r.Unload("lobby"))
	assert.False(t, r.Unload("lobby"))
	assert.Empty(t, r.Scripts())
	assert.Empty(t, r.Events().Handlers("join"))
	assert.Empty(t, r.Functions().List())
}

func TestLeave(t *testing.T) {
	r := prepare(t)
	ann := actor.NewBasic("ann", "Ann")
	require.NoError(t, r.Join(ann))

	start := block.Chain(
		block.New("variable.set").With("name", "player.score").With("value", 7),
		block.New("function.define").With("name", "mine").With("scope", "player").
			Body(block.New("function.return").With("value", 1)),
		block.New("event.handle").With("event", "ping").With("filter", "actor"),
		block.New("async.delay").With("delay", 60000).Body(block.New("message.send").With("text", "late")),
	)

	res := r.Execute(start, ann)
	require.True(t, res.OK(), res.Message)

	key := variable.Key{Scope: variable.Player, Owner: "ann", Name: "score"}
	_, ok, err := r.Vars().Get(key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, r.Tasks().Count("ann"))
	assert.Len(t, r.Functions().List(), 1)
	assert.Len(t, r.Events().Handlers("ping"), 1)

	assert.True(t, r.Leave("ann"))
	_, ok, err = r.Vars().Get(key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, r.Tasks().Count("ann"))
	assert.Empty(t, r.Functions().List())
	assert.Empty(t, r.Events().Handlers("ping"))
	assert.Empty(t, ann.Messages())
}

func TestLoadDirAndWatch(t *testing.T) {
	r := prepare(t)
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "world"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "world", "lobby.yml"), []byte(lobbyYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte(brokenYAML), 0644))

	loaded, err := r.LoadDir(dir)
	assert.Error(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "lobby", loaded[0].ID)

	interrupt := make(chan uint8, 1)
	go r.Watch(dir, interrupt)
	defer func() { interrupt <- 1 }()
	time.Sleep(200 * time.Millisecond)

	file := filepath.Join(dir, "counter.yml")
	require.NoError(t, os.WriteFile(file, []byte("name: counter\nroots:\n  - kind: variable.add\n    params:\n      name: global.loads\n"), 0644))
	assert.Eventually(t, func() bool {
		_, has := r.Script("counter")
		return has
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(file))
	assert.Eventually(t, func() bool {
		_, has := r.Script("counter")
		return !has
	}, 2*time.Second, 20*time.Millisecond)
}

func TestNewSkipsBadScripts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lobby.yml"), []byte(lobbyYAML), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yml"), []byte(brokenYAML), 0644))

	cfg := config.Default()
	cfg.Stores = nil
	cfg.Scripts = dir
	r, err := New(cfg)
	require.NoError(t, err)
	defer r.Close()

	scripts := r.Scripts()
	require.Len(t, scripts, 1)
	assert.Equal(t, "lobby", scripts[0].ID)
	assert.Len(t, r.Events().Handlers("join"), 1)
}

func TestClose(t *testing.T) {
	cfg := config.Default()
	cfg.Stores = nil
	r, err := New(cfg)
	require.NoError(t, err)

	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.Error(t, r.Load(&block.Script{ID: "late"}))
}

package loader

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaoapp/blocks/block"
)

const welcomeYAML = `
name: welcome
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
`

const counterJSONC = `{
  // counts to three
  "roots": [
    {
      "kind": "control.repeat",
      "params": {"count": 3},
      "body": [{"kind": "variable.add", "params": {"name": "global.count"}}]
    }
  ]
}`

const greetTOML = `
name = "greet"

[[roots]]
kind = "control.if"
params = { left = "?:global.mode", op = "==", right = "day" }

[[roots.body]]
kind = "message.send"
params = { text = "Good day" }

[[roots.else]]
kind = "message.send"
params = { text = "Good night" }
`

func write(t *testing.T, dir, name, content string) string {
	file := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0755))
	require.NoError(t, os.WriteFile(file, []byte(content), 0644))
	return file
}

func TestParse(t *testing.T) {
	script, err := Parse("welcome.yml", []byte(welcomeYAML))
	require.NoError(t, err)
	assert.Equal(t, "welcome", script.ID)
	assert.Equal(t, "lobby", script.Namespace)
	require.Len(t, script.Roots, 1)

	handle := script.Roots[0]
	assert.Equal(t, "event.handle", handle.Kind)
	require.Len(t, handle.Children, 1)
	send := handle.Children[0]
	assert.Equal(t, block.Template, send.Params["text"].Kind)
	require.NotNil(t, send.Next)
	assert.Equal(t, "variable.add", send.Next.Kind)
	assert.Equal(t, 3, script.Count())

	script, err = Parse("counter.jsonc", []byte(counterJSONC))
	require.NoError(t, err)
	assert.Equal(t, "counter", script.ID)
	assert.Equal(t, "counter.jsonc", script.File)

	script, err = Parse("greet.toml", []byte(greetTOML))
	require.NoError(t, err)
	cond := script.Roots[0]
	assert.Equal(t, block.Reference, cond.Params["left"].Kind)
	then, alt := block.Split(cond.Children)
	require.Len(t, then, 1)
	require.Len(t, alt, 1)
	assert.Equal(t, "Good night", alt[0].Params["text"].Value.String())
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("bad.yml", []byte("roots: [\n"))
	assert.Error(t, err)

	_, err = Parse("nokind.json", []byte(`{"roots": [{"params": {}}]}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "kind is required")
}

func TestID(t *testing.T) {
	assert.Equal(t, "welcome", ID("welcome.yml"))
	assert.Equal(t, "quests/intro", ID("quests/intro.blk.yml"))
	assert.Equal(t, "intro", ID("/intro.json"))
	assert.Equal(t, "noext", ID("noext"))
}

func TestLoadFileAndDir(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "counter.jsonc", counterJSONC)
	write(t, dir, "quests/intro.yml", "roots:\n  - kind: message.send\n    params:\n      text: hi\n")
	write(t, dir, "notes.txt", "ignored")
	write(t, dir, ".hidden/skip.json", counterJSONC)
	broken := write(t, dir, "zz_broken.json", `{"roots": [{"params": {}}]}`)

	script, err := LoadFile(filepath.Join(dir, "counter.jsonc"))
	require.NoError(t, err)
	assert.Equal(t, "counter", script.ID)
	assert.Equal(t, filepath.Join(dir, "counter.jsonc"), script.File)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	scripts, err := LoadDir(dir)
	require.Error(t, err)
	require.Len(t, scripts, 2)
	assert.Equal(t, "counter", scripts[0].ID)
	assert.Equal(t, "quests/intro", scripts[1].ID)

	require.NoError(t, os.Remove(broken))
	scripts, err = LoadDir(dir)
	require.NoError(t, err)
	assert.Len(t, scripts, 2)

	files, err := Files(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.json", counterJSONC)

	var mutex sync.Mutex
	seen := map[string][]string{}
	interrupt := make(chan uint8, 1)
	done := make(chan error, 1)

	go func() {
		done <- Watch(dir, func(event string, file string) {
			mutex.Lock()
			seen[filepath.Base(file)] = append(seen[filepath.Base(file)], event)
			mutex.Unlock()
		}, interrupt)
	}()

	has := func(name, event string) bool {
		mutex.Lock()
		defer mutex.Unlock()
		for _, e := range seen[name] {
			if e == event {
				return true
			}
		}
		return false
	}

	// give the watcher time to register the directories
	time.Sleep(200 * time.Millisecond)

	write(t, dir, "b.yml", welcomeYAML)
	assert.Eventually(t, func() bool { return has("b.yml", Create) }, 2*time.Second, 10*time.Millisecond)

	write(t, dir, "a.json", counterJSONC)
	assert.Eventually(t, func() bool { return has("a.json", Write) }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(dir, "a.json")))
	assert.Eventually(t, func() bool { return has("a.json", Remove) }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	time.Sleep(200 * time.Millisecond)
	write(t, dir, "sub/c.yaml", welcomeYAML)
	assert.Eventually(t, func() bool { return has("c.yaml", Create) }, 2*time.Second, 10*time.Millisecond)

	write(t, dir, "note.txt", "skip")
	time.Sleep(100 * time.Millisecond)
	assert.False(t, has("note.txt", Create))

	interrupt <- 9
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not exit")
	}
}
